package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	catRaw    bool
	catStart  int
	catEnd    int
	catByHash bool
)

var catCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Show the object at a path (or by hash with --hash)",
	Long: `Print the object at the given path under --root. Text objects print
their content, trees print an aligned listing, symlinks print their target.
With --hash the argument is an object hash (prefix allowed) instead of a path.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if catByHash {
			full, err := VFS.Store.ExpandHash(ctx, args[0])
			if err != nil {
				return fmt.Errorf("invalid hash '%s': %w", args[0], err)
			}
			if catRaw {
				return VFS.Exporter.WriteRaw(ctx, full, os.Stdout)
			}
			return VFS.Exporter.PrintObject(ctx, full, os.Stdout)
		}

		if catStart != 0 || catEnd != -1 {
			res, err := VFS.Engine.ReadAtPath(ctx, rootArg(), args[0], catStart, catEnd)
			if err != nil {
				return fmt.Errorf("cat failed: %w", err)
			}
			if len(res.Lines) > 0 {
				fmt.Println(strings.Join(res.Lines, "\n"))
			}
			return nil
		}

		st, err := VFS.Engine.OpenAtPath(ctx, rootArg(), args[0])
		if err != nil {
			return fmt.Errorf("cat failed: %w", err)
		}
		if catRaw {
			return VFS.Exporter.WriteRaw(ctx, st.Hash, os.Stdout)
		}
		return VFS.Exporter.PrintObject(ctx, st.Hash, os.Stdout)
	},
}

func init() {
	catCmd.Flags().BoolVar(&catRaw, "raw", false, "write raw content (text/bytes only), suitable for redirection")
	catCmd.Flags().BoolVar(&catByHash, "hash", false, "treat the argument as an object hash instead of a path")
	catCmd.Flags().IntVar(&catStart, "start", 0, "first line to print (text objects)")
	catCmd.Flags().IntVar(&catEnd, "end", -1, "line after the last one to print, -1 = to end")
	rootCmd.AddCommand(catCmd)
}
