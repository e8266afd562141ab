package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/averden/mediapull/internal/output"
	"github.com/averden/mediapull/internal/scheduler"
	"github.com/averden/mediapull/internal/utils"
)

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [FILE]",
		Short: "Download every asset listed in a YAML batch file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, err := loadBatchManifest(args[0])
			if err != nil {
				return err
			}
			opts := globalOptions()
			if manifest.Folder != "" {
				opts.Folder = manifest.Folder
			}
			if manifest.Prefix != "" {
				opts.Prefix = manifest.Prefix
			}
			if manifest.Chunked != nil {
				opts.Chunked = *manifest.Chunked
			}

			jobs := make([]scheduler.Job, 0, len(manifest.Assets))
			for _, asset := range manifest.Assets {
				jobs = append(jobs, scheduler.NewJob(asset, opts))
			}
			output.PrintInfo(fmt.Sprintf("Queued %d assets with %d workers", len(jobs), workers))

			results := scheduler.Run(cmd.Context(), newEngine(), jobs, workers, utils.GetLogger("batch"))
			failed := 0
			for _, res := range results {
				if res.Failed() {
					failed++
					if res.Err != nil {
						output.PrintError(fmt.Sprintf("%s: %v", res.Asset, res.Err))
					} else {
						output.PrintError(fmt.Sprintf("%s: %s", res.Asset, res.Result.Description))
					}
					continue
				}
				fmt.Println(output.RenderResult(res.Result))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d downloads failed", failed, len(results))
			}
			output.PrintSuccess(fmt.Sprintf("All %d downloads completed", len(results)))
			return nil
		},
	}
}
