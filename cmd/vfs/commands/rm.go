package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <path>",
	Short: "Delete the entry at a path",
	Long: `Create a new snapshot without the entry at the given path.
Deleting a missing path is a no-op: nothing changes and no new root is made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newRoot, err := VFS.Engine.DeleteAtPath(cmd.Context(), rootArg(), args[0])
		if err != nil {
			return fmt.Errorf("rm failed: %w", err)
		}
		if newRoot == "" {
			fmt.Printf("⚠️  %s does not exist, nothing to do\n", args[0])
			return nil
		}

		fmt.Printf("✅ %s removed\n", args[0])
		fmt.Printf("root: %s\n", newRoot)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
