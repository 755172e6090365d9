package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultfs/pkg/types"
)

var logLimit int

var logCmd = &cobra.Command{
	Use:   "log [ref]",
	Short: "Show the ref change history (reflog)",
	Long: `Display recorded ref changes, newest first. Without an argument all
refs are shown. Requires the meta database; ref changes made while it was
unavailable are not recorded.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if VFS.Meta == nil {
			return fmt.Errorf("meta database unavailable, no history recorded")
		}

		var name types.RefName
		if len(args) == 1 {
			name = types.RefName(args[0])
		}

		logs, err := VFS.Meta.History(cmd.Context(), name, logLimit)
		if err != nil {
			return fmt.Errorf("log failed: %w", err)
		}
		if len(logs) == 0 {
			fmt.Println("No ref changes yet.")
			return nil
		}

		const (
			colorYellow = "\033[33m"
			colorReset  = "\033[0m"
		)
		for _, entry := range logs {
			newHash := shortHash(entry.NewHash)
			if entry.NewHash == "" {
				newHash = "(deleted)"
			}
			fmt.Printf("%s%s%s\n", colorYellow, entry.RefName, colorReset)
			fmt.Printf("  %s -> %s\n", shortHash(entry.OldHash), newHash)
			fmt.Printf("  %s\n\n", entry.CreatedAt.Format("Mon Jan 2 15:04:05 2006"))
		}
		return nil
	},
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	if h == "" {
		return "(none)"
	}
	return h
}

func init() {
	logCmd.Flags().IntVar(&logLimit, "limit", 0, "maximum entries to show (default 50)")
	rootCmd.AddCommand(logCmd)
}
