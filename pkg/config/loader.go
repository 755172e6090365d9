package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Load 初始化 Viper 配置
// cfgFile: 可选，用户显式指定的配置文件路径
func Load(cfgFile string) error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		// 搜索顺序：当前目录 → ./.vfs → ~/.vfs
		viper.AddConfigPath(".")
		viper.AddConfigPath(".vfs")
		viper.AddConfigPath(filepath.Join(home, ".vfs"))

		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// 环境变量：VFS_DB_PATH、VFS_STORAGE_TYPE 等
	viper.SetEnvPrefix("VFS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// 没找到配置文件不算错 (可能全靠默认值和环境变量)；格式错才是错
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("fatal error config file: %w", err)
		}
	}

	return nil
}

func setDefaults() {
	wd, _ := os.Getwd()
	dbRoot := filepath.Join(wd, ".vfs")

	// 对象库
	viper.SetDefault("db.path", dbRoot)
	viper.SetDefault("storage.type", "disk")

	// S3 / MinIO 后端
	viper.SetDefault("storage.s3.endpoint", "http://localhost:9000")
	viper.SetDefault("storage.s3.region", "us-east-1")
	viper.SetDefault("storage.s3.bucket", "vaultfs")

	// Redis 读穿缓存 (空地址 = 不启用)
	viper.SetDefault("cache.redis.addr", "")
	viper.SetDefault("cache.redis.ttl", "1h")

	// 引用变更日志
	viper.SetDefault("meta.driver", "sqlite")
	viper.SetDefault("meta.dsn", filepath.Join(dbRoot, "meta.db"))
}
