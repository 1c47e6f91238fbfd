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
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eslsoft/vocengage/internal/app"
)

const recomputeUserKey = "recompute.user"

// recomputeCmd rebuilds engagement stats from session history.
var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Rebuild engagement stats from completed sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		engine, cleanup, err := app.InitializeEngine(cfg)
		if err != nil {
			return fmt.Errorf("initialize: %w", err)
		}
		defer cleanup()

		ctx := cmd.Context()
		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")

		if userID := viper.GetInt64(recomputeUserKey); userID > 0 {
			stats, err := engine.Engagement.RecomputeAllFromHistory(ctx, userID)
			if err != nil {
				return err
			}
			return out.Encode(stats)
		}

		summary, err := engine.Engagement.RecomputeAll(ctx)
		if err != nil {
			return err
		}
		if err := out.Encode(summary); err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d users failed to recompute", summary.Failed, summary.Users)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recomputeCmd)
	recomputeCmd.Flags().Int64("user", 0, "recompute a single user (default: every user)")
	bindFlagToViper(recomputeUserKey, recomputeCmd.Flags().Lookup("user"))
}
