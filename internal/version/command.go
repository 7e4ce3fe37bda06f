package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCommand adds a `version` subcommand to root that prints the build
// metadata.
func AttachCommand(root *cobra.Command) {
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	})
}
