package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/filestore/display"
	"github.com/teranos/filestore/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show filestore version information",
		Long:  `Display version, build time, commit hash, and platform information for the filestore binary.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			if display.ShouldOutputJSON(cmd) {
				return display.WriteJSON(out, info)
			}
			fmt.Fprintln(out, info.String())
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
			return nil
		},
	}
}
