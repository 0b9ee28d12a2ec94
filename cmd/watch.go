package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TempoFM/core/ingest"
	"TempoFM/db"
	"TempoFM/logger"

	"github.com/spf13/cobra"
)

var (
	watchStyle       string
	watchPlaylist    string
	watchSkipNoTempo bool
	watchTempDir     string
)

var watchCmd = &cobra.Command{
	Use:   "watch <目录>",
	Short: "监听目录并自动导入新增的音乐文件",
	Long: `持续监听目录，新文件落盘稳定后按与 ingest 相同的规则处理：
去重、转码、上传并更新播放列表文档。按 Ctrl+C 退出并打印处理报告。`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		watchDir := args[0]

		if _, err := os.Stat(watchDir); err != nil {
			logger.Fatal("监听目录不存在", logger.String("dir", watchDir))
		}
		if watchStyle == "" || watchPlaylist == "" {
			logger.Fatal("必须指定 --style 和 --playlist")
		}

		engine, _, err := buildEngine(cfg, watchStyle, watchPlaylist, watchSkipNoTempo, watchTempDir)
		if err != nil {
			logger.Fatal("初始化失败", logger.ErrorField(err))
		}
		defer db.CloseRedis()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report := ingest.NewReport(watchStyle, watchPlaylist)
		watchErr := engine.Watch(ctx, watchDir, report)
		report.Finish()
		fmt.Println(report.Summary())

		saveRunHistory(cfg, report)

		if watchErr != nil {
			logger.Error("监听异常退出", logger.ErrorField(watchErr))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchStyle, "style", "s", "", "音乐风格")
	watchCmd.Flags().StringVarP(&watchPlaylist, "playlist", "p", "", "播放列表名称")
	watchCmd.Flags().BoolVar(&watchSkipNoTempo, "skip-no-tempo", false, "跳过没有BPM标签的文件")
	watchCmd.Flags().StringVar(&watchTempDir, "temp-dir", "", "转码临时目录")

	watchCmd.Example = `  # 监听下载目录，自动导入 kizomba 新歌
  tempofm watch ~/Downloads/kizomba -s kizomba -p kizomba_nights`
}
