package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"vaultfs/pkg/types"
)

var refsCmd = &cobra.Command{
	Use:   "refs",
	Short: "Manage named refs",
}

var refsListCmd = &cobra.Command{
	Use:   "list [prefix]",
	Short: "List refs, most recently updated first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}

		infos, err := VFS.Refs.ListRefs(cmd.Context(), prefix)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println("no refs")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintf(tw, "NAME\tHASH\tUPDATED\n")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Hash[:8], info.UpdatedAt.Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var refsSetCmd = &cobra.Command{
	Use:   "set <name> <hash>",
	Short: "Point a ref at an object hash",
	Long: `Set the ref to the given hash (prefix allowed). The hash must name
an object already in the store; pointing a ref at a missing object fails.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		full, err := VFS.Store.ExpandHash(ctx, args[1])
		if err != nil {
			return fmt.Errorf("invalid hash '%s': %w", args[1], err)
		}
		if err := VFS.Refs.SetRef(ctx, types.RefName(args[0]), full); err != nil {
			return fmt.Errorf("set failed: %w", err)
		}
		fmt.Printf("✅ %s -> %s\n", args[0], full)
		return nil
	},
}

var refsRmCmd = &cobra.Command{
	Use:   "rm <name>",
	Short: "Delete a ref",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := VFS.Refs.DeleteRef(cmd.Context(), types.RefName(args[0]))
		if err != nil {
			return fmt.Errorf("rm failed: %w", err)
		}
		if !removed {
			fmt.Printf("⚠️  ref %s does not exist\n", args[0])
			return nil
		}
		fmt.Printf("✅ ref %s deleted\n", args[0])
		return nil
	},
}

func init() {
	refsCmd.AddCommand(refsListCmd, refsSetCmd, refsRmCmd)
	rootCmd.AddCommand(refsCmd)
}
