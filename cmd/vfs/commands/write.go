package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vaultfs/pkg/vfs"
)

var (
	writeFromHash string
	writeFromFile string
)

var writeCmd = &cobra.Command{
	Use:   "write <path> [content]",
	Short: "Write a text leaf (or an existing object) at a path",
	Long: `Create a new snapshot with the given content stored at the path.
Intermediate directories are created as needed. Working refs (work/...)
are advanced to the new root automatically; other roots just print it.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		ctx := cmd.Context()

		var leaf vfs.Leaf
		switch {
		case writeFromHash != "":
			full, err := VFS.Store.ExpandHash(ctx, writeFromHash)
			if err != nil {
				return fmt.Errorf("invalid hash '%s': %w", writeFromHash, err)
			}
			leaf = vfs.HashLeaf(full)
		case writeFromFile != "":
			data, err := os.ReadFile(writeFromFile)
			if err != nil {
				return err
			}
			leaf = vfs.TextLeaf(string(data))
		case len(args) == 2:
			leaf = vfs.TextLeaf(args[1])
		default:
			return fmt.Errorf("provide inline content, --from-file or --from-hash")
		}

		newRoot, err := VFS.Engine.WriteAtPath(ctx, rootArg(), path, leaf)
		if err != nil {
			return fmt.Errorf("write failed: %w", err)
		}

		fmt.Printf("✅ %s written\n", path)
		fmt.Printf("root: %s\n", newRoot)
		return nil
	},
}

func init() {
	writeCmd.Flags().StringVar(&writeFromHash, "from-hash", "", "link an existing object by hash (prefix allowed) instead of new content")
	writeCmd.Flags().StringVar(&writeFromFile, "from-file", "", "read content from a local file")
	rootCmd.AddCommand(writeCmd)
}
