package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Import a local directory as a new snapshot",
	Long: `Ingest the directory's contents into the object store and make the
resulting tree the new root. Entries matching .vfsignore (plus built-in
rules like .vfs and .git) are skipped. Files in the same directory are
ingested in parallel.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		ing, err := VFS.NewIngester(args[0])
		if err != nil {
			return err
		}

		root, stats, err := ing.ImportDir(ctx, args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		// 工作引用推进到导入的树；其他 root 只打印
		if name, auto := VFS.Refs.IsAutoUpdating(rootArg()); auto {
			if err := VFS.Refs.SetRef(ctx, name, root); err != nil {
				return fmt.Errorf("failed to advance %s: %w", name, err)
			}
		}

		fmt.Printf("✅ Imported %d files, %d dirs, %d symlinks (%d skipped, %d bytes)\n",
			stats.Files, stats.Dirs, stats.Symlinks, stats.Skipped, stats.Bytes)
		fmt.Printf("root: %s\n", root)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
