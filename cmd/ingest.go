package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TempoFM/db"
	"TempoFM/logger"

	"github.com/spf13/cobra"
)

var (
	ingestStyle       string
	ingestPlaylist    string
	ingestSkipNoTempo bool
	ingestTempDir     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <目录>",
	Short: "批量导入目录中的音乐文件",
	Long: `递归扫描目录中的音乐文件，解析声学指纹并与远程存储去重：
已存在的资源直接链接进播放列表，新资源转码上传后再写入目录文档。
处理结束后重新计算所有播放列表的速度范围并更新样式文档。`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		inputDir := args[0]

		if _, err := os.Stat(inputDir); err != nil {
			logger.Fatal("输入目录不存在", logger.String("dir", inputDir))
		}
		if ingestStyle == "" || ingestPlaylist == "" {
			logger.Fatal("必须指定 --style 和 --playlist")
		}

		engine, _, err := buildEngine(cfg, ingestStyle, ingestPlaylist, ingestSkipNoTempo, ingestTempDir)
		if err != nil {
			logger.Fatal("初始化失败", logger.ErrorField(err))
		}
		defer db.CloseRedis()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		report, runErr := engine.Run(ctx, inputDir)
		fmt.Println(report.Summary())

		saveRunHistory(cfg, report)

		if runErr != nil {
			logger.Error("批量导入未正常完成", logger.ErrorField(runErr))
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVarP(&ingestStyle, "style", "s", "", "音乐风格 (例如 bachata, salsa, west_coast_swing)")
	ingestCmd.Flags().StringVarP(&ingestPlaylist, "playlist", "p", "", "播放列表名称")
	ingestCmd.Flags().BoolVar(&ingestSkipNoTempo, "skip-no-tempo", false, "跳过没有BPM标签的文件，而不是尝试测速")
	ingestCmd.Flags().StringVar(&ingestTempDir, "temp-dir", "", "转码临时目录")

	ingestCmd.Example = `  # 导入一批 bachata 歌曲
  tempofm ingest ./music/bachata -s bachata -p bachata_classics

  # 跳过没有速度标签的文件
  tempofm ingest ./music/salsa -s salsa -p salsa_party --skip-no-tempo`
}
