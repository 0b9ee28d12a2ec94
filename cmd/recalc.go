package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"TempoFM/logger"
	"TempoFM/repository"
	"TempoFM/storage"

	"github.com/spf13/cobra"
)

var (
	recalcLocalOnly bool
	recalcSync      bool
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "重新计算所有播放列表的速度范围",
	Long: `遍历本地播放列表文档，重新计算每个文档的 minTempo/maxTempo，
只有边界发生变化的文档才会被重写和上传。空文档或没有有效速度的
文档记录为错误，不影响其他文档的处理。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		var remote repository.RemoteCatalog
		if !recalcLocalOnly {
			if err := storage.InitMinio(cfg); err != nil {
				logger.Fatal("MinIO 初始化失败", logger.ErrorField(err))
			}
			remote = storage.NewStore(storage.GetMinioClient(), cfg)
		}

		catalog := repository.NewFileCatalogRepository(cfg.PlaylistsDir, cfg.StylesDir, remote)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if recalcSync && remote != nil {
			if err := catalog.SyncFromRemote(ctx); err != nil {
				logger.Fatal("同步远程目录文档失败", logger.ErrorField(err))
			}
		}

		summary, err := catalog.RecalculateAll(ctx)
		if err != nil {
			logger.Fatal("重新计算失败", logger.ErrorField(err))
		}

		fmt.Printf("已更新: %d  未变化: %d\n", summary.Updated, summary.Unchanged)
		for _, msg := range summary.Errors {
			fmt.Printf("错误: %s\n", msg)
		}
		if len(summary.Errors) > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(recalcCmd)

	recalcCmd.Flags().BoolVar(&recalcLocalOnly, "local", false, "只处理本地文档，不上传")
	recalcCmd.Flags().BoolVar(&recalcSync, "sync", false, "先从远程拉取最新的目录文档")

	recalcCmd.Example = `  # 从远程拉取文档后重算并回传
  tempofm recalc --sync

  # 只修正本地文档
  tempofm recalc --local`
}
