package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"vaultfs/pkg/app"
	"vaultfs/pkg/config"
	"vaultfs/pkg/types"
)

var (
	cfgFile string
	rootRef string

	// 全局应用实例，供子命令使用
	VFS *app.App
)

var rootCmd = &cobra.Command{
	Use:   "vfs",
	Short: "VaultFS: content-addressable virtual filesystem",
	// PersistentPreRunE 在所有子命令执行前运行
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init 命令就是去创建环境的，跳过依赖检查
		if cmd.Name() == "init" {
			return nil
		}

		var err error
		VFS, err = app.New(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to initialize vaultfs: %w\n(Did you run 'vfs init'?)", err)
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if VFS != nil {
			return VFS.Close()
		}
		return nil
	},
}

// Execute 是入口
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.vfs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootRef, "root", "work/main", "root to operate on: a ref name or a literal hash")

	rootCmd.PersistentFlags().String("db-path", "", "database root directory (obj/, refs/, meta.db)")
	if err := viper.BindPFlag("db.path", rootCmd.PersistentFlags().Lookup("db-path")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
	rootCmd.PersistentFlags().String("storage-type", "", "object backend: disk or s3")
	if err := viper.BindPFlag("storage.type", rootCmd.PersistentFlags().Lookup("storage-type")); err != nil {
		fmt.Println("Failed to bind flag:", err)
		os.Exit(1)
	}
}

// rootArg 返回本次操作的根 (统一从 --root 取)
func rootArg() types.Root {
	return types.Root(rootRef)
}

// initConfig 读取配置文件和环境变量
func initConfig() {
	if err := config.Load(cfgFile); err != nil {
		fmt.Println("Config error:", err)
		os.Exit(1)
	}
}
