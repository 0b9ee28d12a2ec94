package cmd

import (
	"context"
	"fmt"
	"time"

	"TempoFM/db"
	"TempoFM/logger"
	"TempoFM/repository"

	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "查看最近的导入运行记录",
	Long:  `从运行历史数据库读取最近的导入记录，显示每次运行的风格、播放列表和处理计数。`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		if cfg.DBHost == "" {
			logger.Fatal("未配置运行历史数据库 (DB_HOST)")
		}
		if err := db.ConnectGormDB(cfg); err != nil {
			logger.Fatal("连接运行历史数据库失败", logger.ErrorField(err))
		}
		defer db.CloseGormDB()

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		repo := repository.NewGormRunRepository(db.GormDB)
		runs, err := repo.RecentRuns(ctx, runsLimit)
		if err != nil {
			logger.Fatal("读取运行记录失败", logger.ErrorField(err))
		}

		if len(runs) == 0 {
			fmt.Println("没有运行记录。")
			return
		}

		for _, run := range runs {
			fmt.Printf("%s  %s/%s  导入:%d 复用:%d 跳过:%d 错误:%d  %s\n",
				run.StartedAt.Format("2006-01-02 15:04:05"),
				run.Style, run.Playlist,
				run.Ingested, run.Reused, run.Skipped, run.Errored,
				run.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)

	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 10, "显示的记录数量")
}
