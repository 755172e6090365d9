package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <path> <start> <end> [replacement]",
	Short: "Splice lines [start, end) of a text object",
	Long: `Replace lines [start, end) of the text at the path with the replacement.
An empty replacement deletes the range; start == end inserts before start.
Line numbers are zero-based.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("bad start line '%s'", args[1])
		}
		end, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("bad end line '%s'", args[2])
		}
		replacement := ""
		if len(args) == 4 {
			replacement = args[3]
		}

		newRoot, err := VFS.Engine.EditRange(cmd.Context(), rootArg(), args[0], start, end, replacement)
		if err != nil {
			return fmt.Errorf("edit failed: %w", err)
		}

		fmt.Printf("✅ %s edited\n", args[0])
		fmt.Printf("root: %s\n", newRoot)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
}
