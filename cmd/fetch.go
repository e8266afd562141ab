package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/averden/mediapull/internal/output"
)

func newFetchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fetch [MANIFEST]",
		Short: "Download a single asset described by a YAML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asset, err := loadAssetManifest(args[0])
			if err != nil {
				return err
			}
			result, err := newEngine().Download(cmd.Context(), asset, globalOptions())
			if err != nil {
				output.PrintError("Download failed: " + err.Error())
				return err
			}
			fmt.Println(output.RenderResult(result))
			return nil
		},
	}
}
