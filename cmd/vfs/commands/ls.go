package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultfs/pkg/core"
)

var lsCmd = &cobra.Command{
	Use:   "ls [path]",
	Short: "List the tree at a path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		st, err := VFS.Engine.OpenAtPath(cmd.Context(), rootArg(), path)
		if err != nil {
			return fmt.Errorf("ls failed: %w", err)
		}
		if st.Kind != core.TypeTree {
			return fmt.Errorf("'%s' is not a directory (type: %s)", path, st.Kind)
		}

		return VFS.Exporter.PrintObject(cmd.Context(), st.Hash, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}
