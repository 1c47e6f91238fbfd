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
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocengage/internal/app"
	"github.com/eslsoft/vocengage/internal/infrastructure/seed"
)

const (
	seedInputKey     = "seed.input"
	seedSheetKey     = "seed.sheet"
	seedBatchKey     = "seed.batch_size"
	seedRecomputeKey = "seed.recompute"
)

// seedCmd imports completed sessions from a workbook.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import completed sessions from an xlsx workbook and recompute stats",
	RunE: func(cmd *cobra.Command, args []string) error {
		input := viper.GetString(seedInputKey)
		if input == "" {
			return fmt.Errorf("--input is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		engine, cleanup, err := app.InitializeEngine(cfg)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		f, err := os.Open(input)
		if err != nil {
			return fmt.Errorf("open %s: %w", input, err)
		}
		defer f.Close()

		ctx := cmd.Context()
		importer := seed.NewImporter(engine.Tx, engine.Sessions, engine.Logger)
		result, err := importer.Import(ctx, f, seed.Config{
			SheetName: viper.GetString(seedSheetKey),
			BatchSize: viper.GetInt(seedBatchKey),
		})
		if err != nil {
			return err
		}
		for _, msg := range result.Errors {
			engine.Logger.Warn(msg)
		}
		if !viper.GetBool(seedRecomputeKey) || result.Created == 0 {
			return nil
		}

		summary, err := engine.Engagement.RecomputeAll(ctx)
		if err != nil {
			return err
		}
		engine.Logger.WithFields(logrus.Fields{
			"users":   summary.Users,
			"updated": summary.Updated,
			"failed":  summary.Failed,
		}).Info("stats recomputed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().String("input", "", "xlsx workbook with one completed session per row")
	seedCmd.Flags().String("sheet", "", "sheet name (default: active sheet)")
	seedCmd.Flags().Int("batch", 500, "sessions written per transaction")
	seedCmd.Flags().Bool("recompute", true, "recompute stats for every user after the import")
	bindFlagToViper(seedInputKey, seedCmd.Flags().Lookup("input"))
	bindFlagToViper(seedSheetKey, seedCmd.Flags().Lookup("sheet"))
	bindFlagToViper(seedBatchKey, seedCmd.Flags().Lookup("batch"))
	bindFlagToViper(seedRecomputeKey, seedCmd.Flags().Lookup("recompute"))
}
