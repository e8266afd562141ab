package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/averden/mediapull/internal/output"
	"github.com/averden/mediapull/internal/resolver"
	"github.com/averden/mediapull/internal/utils"
)

func newS3Cmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "s3 [S3-URL]",
		Short: "Resolve an s3://bucket/key object and download it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := resolver.NewS3Resolver(cmd.Context(), profile, utils.GetLogger("resolver"))
			if err != nil {
				return err
			}
			asset, err := res.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			output.PrintInfo(fmt.Sprintf("Resolved %s (%s)", asset.Name, utils.FormatBytes(uint64(asset.Filesize))))

			result, err := newEngine().Download(cmd.Context(), asset, globalOptions())
			if err != nil {
				output.PrintError("Download failed: " + err.Error())
				return err
			}
			fmt.Println(output.RenderResult(result))
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", "", "AWS profile to use (empty for default)")
	return cmd
}
