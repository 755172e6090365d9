package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a VaultFS database",
	Long:  `Create an empty VaultFS database (.vfs) in the current directory, or reinitialize an existing one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}

		dbPath := filepath.Join(wd, ".vfs")
		if _, err := os.Stat(dbPath); err == nil {
			fmt.Printf("⚠️  VaultFS database already exists in %s\n", dbPath)
			return nil
		}

		for _, sub := range []string{"obj", "refs"} {
			if err := os.MkdirAll(filepath.Join(dbPath, sub), 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		fmt.Printf("✅ Initialized empty VaultFS database in %s\n", dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
