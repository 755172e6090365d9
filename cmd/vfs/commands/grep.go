package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultfs/pkg/search"
)

var (
	grepFilter  string
	grepMax     int
	grepContext int
)

var grepCmd = &cobra.Command{
	Use:   "grep <regex>",
	Short: "Search text objects line by line with a regular expression",
	Long: `Walk the tree and test every line of every text object against the
regex. Traversal stops once --max results have been collected, so results
follow tree order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hits, err := VFS.Searcher.Grep(cmd.Context(), rootArg(), args[0], search.GrepOptions{
			GlobFilter:   grepFilter,
			MaxResults:   grepMax,
			ContextLines: grepContext,
		})
		if err != nil {
			return fmt.Errorf("grep failed: %w", err)
		}

		for _, h := range hits {
			fmt.Printf("%s:%d: %s\n", h.Path, h.LineIndex, h.Content)
			if grepContext > 0 {
				for _, line := range h.Context {
					fmt.Printf("    | %s\n", line)
				}
			}
		}
		if len(hits) == grepMax || (grepMax <= 0 && len(hits) == search.DefaultMaxResults) {
			fmt.Println("⚠️  result limit reached, output may be truncated")
		}
		return nil
	},
}

func init() {
	grepCmd.Flags().StringVar(&grepFilter, "filter", "", "only grep files whose path matches this glob")
	grepCmd.Flags().IntVar(&grepMax, "max", 0, "maximum number of results (default 100)")
	grepCmd.Flags().IntVar(&grepContext, "context", 0, "lines of context around each match")
	rootCmd.AddCommand(grepCmd)
}
