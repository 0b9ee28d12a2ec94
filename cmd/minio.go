package cmd

import (
	"context"
	"fmt"
	"log"

	"TempoFM/config"
	"TempoFM/storage"

	"github.com/spf13/cobra"
)

var minioPrefix string

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "MinIO存储桶检查",
	Long:  `查看MinIO存储桶中的音频和目录文档，列出对象并显示统计信息。`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("开始连接MinIO服务器...")

		// 加载配置
		cfg := config.Load()
		fmt.Printf("MinIO配置: %s, Bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		// 初始化MinIO客户端
		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("无法连接到MinIO: %v", err)
		}
		fmt.Println("MinIO连接成功！")

		store := storage.NewStore(storage.GetMinioClient(), cfg)

		fmt.Printf("\n列出存储桶中的文件 (前缀: %s)...\n", minioPrefix)
		if err := store.PrintBucketStats(context.Background(), minioPrefix); err != nil {
			log.Fatalf("获取存储桶统计信息失败: %v", err)
		}

		fmt.Println("\nMinIO操作完成！")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)

	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "按前缀过滤文件")

	minioCmd.Example = `  # 列出所有文件
  tempofm minio

  # 只看音频对象
  tempofm minio -p "public/audio/"

  # 只看播放列表文档
  tempofm minio -p "public/playlists/"`
}
