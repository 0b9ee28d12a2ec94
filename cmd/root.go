package cmd

import (
	"fmt"
	"os"

	"TempoFM/config"
	"TempoFM/logger"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tempofm",
	Short: "TempoFM 是内容寻址的音乐导入与播放列表目录同步工具",
	Long: `TempoFM 扫描本地音乐文件，通过声学指纹去重，将新文件转码上传到
对象存储，并幂等地维护播放列表与样式目录文档。`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads configuration and initializes the logger once per
// process.
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	return cfg
}
