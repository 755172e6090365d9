package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultfs/pkg/core"
	"vaultfs/pkg/types"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export <dir>",
	Short: "Restore a tree to a local directory",
	Long: `Write the tree at --root (optionally narrowed with --path) out to the
local filesystem: text objects as files, bytes verbatim, symlinks recreated.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := VFS.Engine.OpenAtPath(ctx, rootArg(), exportPath)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		if st.Kind != core.TypeTree {
			return fmt.Errorf("'%s' is not a directory (type: %s)", exportPath, st.Kind)
		}

		count := 0
		err = VFS.Exporter.RestoreTree(ctx, st.Hash, args[0], func(path string, hash types.Hash, kind core.ObjectType) {
			count++
		})
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("✅ Restored %d files to %s\n", count, args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportPath, "path", "", "subtree to export instead of the whole root")
	rootCmd.AddCommand(exportCmd)
}
