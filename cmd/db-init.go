/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"

	"entgo.io/ent/dialect/sql/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocengage/internal/infrastructure/database"
	"github.com/eslsoft/vocengage/internal/infrastructure/database/migrate"
	"github.com/eslsoft/vocengage/internal/infrastructure/server"
)

const (
	dbInitTablesKey     = "db_init.tables"
	dbInitDropColumnKey = "db_init.drop_columns"
)

// dbInitCmd creates or upgrades the engagement tables.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create or upgrade the database schema",
	Long:  "Create or upgrade the engagement tables. go-sqlite3 requires a CGO_ENABLED=1 build.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}

		tables, err := migrate.TablesByName(tablesFromConfig(dbInitTablesKey))
		if err != nil {
			return err
		}

		drv, cleanup, err := database.NewDriver(cfg, logger)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer cleanup()

		var opts []schema.MigrateOption
		if viper.GetBool(dbInitDropColumnKey) {
			opts = append(opts, schema.WithDropColumn(true))
		}
		if err := migrate.Create(cmd.Context(), drv, tables, opts...); err != nil {
			return err
		}
		logger.WithField("tables", len(tables)).Info("database migration complete")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().StringSlice("tables", nil, "tables to migrate (default: all)")
	dbInitCmd.Flags().Bool("drop-columns", false, "drop columns no longer present in the schema")
	bindFlagToViper(dbInitTablesKey, dbInitCmd.Flags().Lookup("tables"))
	bindFlagToViper(dbInitDropColumnKey, dbInitCmd.Flags().Lookup("drop-columns"))
}
