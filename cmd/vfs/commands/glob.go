package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var globCmd = &cobra.Command{
	Use:   "glob <pattern>",
	Short: "List files matching a glob pattern",
	Long: `Match every non-directory path in the tree against the pattern.
'*' matches within one segment, '**' across segments, '?' one character,
and '{a,b}' expands to alternatives. Results are path-sorted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := VFS.Searcher.Glob(cmd.Context(), rootArg(), args[0])
		if err != nil {
			return fmt.Errorf("glob failed: %w", err)
		}
		for _, p := range paths {
			fmt.Println(p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(globCmd)
}
