package storage

import (
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"TempoFM/config"
	"TempoFM/logger"

	"github.com/minio/minio-go/v7"
)

// Category names one of the remote areas the tool publishes into.
type Category string

const (
	CategoryAudio     Category = "audio"
	CategoryPlaylists Category = "playlists"
	CategoryStyles    Category = "styles"
)

// Store wraps the MinIO client with the catalog bucket layout: every
// category maps to a configured object prefix, audio objects are
// content-addressed and never overwritten, documents always are.
type Store struct {
	client  *minio.Client
	bucket  string
	baseURL string
	prefix  map[Category]string
}

// NewStore 创建一个绑定到配置前缀的远程存储
func NewStore(client *minio.Client, cfg *config.Config) *Store {
	return &Store{
		client:  client,
		bucket:  cfg.MinioBucket,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		prefix: map[Category]string{
			CategoryAudio:     strings.Trim(cfg.AudioPrefix, "/"),
			CategoryPlaylists: strings.Trim(cfg.PlaylistsPrefix, "/"),
			CategoryStyles:    strings.Trim(cfg.StylesPrefix, "/"),
		},
	}
}

func (s *Store) objectName(category Category, name string) string {
	return s.prefix[category] + "/" + name
}

// ObjectURL returns the public URL a published object is served under.
func (s *Store) ObjectURL(category Category, name string) string {
	return s.baseURL + "/" + s.objectName(category, name)
}

// ListExisting returns the bare object names (no prefix) present under the
// category. A prefix with no objects yields an empty list, not an error.
func (s *Store) ListExisting(ctx context.Context, category Category) ([]string, error) {
	prefix := s.prefix[category] + "/"
	names := make([]string, 0)

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("列出 %s 对象失败: %w", category, object.Err)
		}
		names = append(names, strings.TrimPrefix(object.Key, prefix))
	}

	return names, nil
}

// Exists reports whether the named object is already present.
func (s *Store) Exists(ctx context.Context, category Category, name string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.objectName(category, name), minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return false, nil
		}
		return false, fmt.Errorf("检查对象 %s 失败: %w", name, err)
	}
	return true, nil
}

// Publish uploads a local file under the category. Audio objects are
// content-addressed, so an existing object is left untouched and the upload
// is skipped; playlist and style documents are overwritten in place.
func (s *Store) Publish(ctx context.Context, localPath, remoteName string, category Category) error {
	if category == CategoryAudio {
		exists, err := s.Exists(ctx, category, remoteName)
		if err != nil {
			return err
		}
		if exists {
			logger.Info("音频对象已存在，跳过上传", logger.String("object", remoteName))
			return nil
		}
	}

	contentType := mime.TypeByExtension(filepath.Ext(remoteName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := s.client.FPutObject(ctx, s.bucket, s.objectName(category, remoteName), localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("上传 %s 到 %s 失败: %w", localPath, category, err)
	}

	logger.Debug("上传完成",
		logger.String("object", s.objectName(category, remoteName)),
		logger.String("category", string(category)))
	return nil
}

// Fetch downloads an object's content.
func (s *Store) Fetch(ctx context.Context, category Category, name string) ([]byte, error) {
	object, err := s.client.GetObject(ctx, s.bucket, s.objectName(category, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 失败: %w", name, err)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("读取对象 %s 内容失败: %w", name, err)
	}
	return data, nil
}

// PrintBucketStats 打印存储桶统计信息（调试用）
func (s *Store) PrintBucketStats(ctx context.Context, prefix string) error {
	var totalSize int64
	var objectCount int64

	objectCh := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for object := range objectCh {
		if object.Err != nil {
			return fmt.Errorf("列出对象时出错: %w", object.Err)
		}
		totalSize += object.Size
		objectCount++
		fmt.Printf("%-70s %10.2f KB  %s\n",
			object.Key,
			float64(object.Size)/1024,
			object.LastModified.Format("2006-01-02 15:04:05"))
	}

	fmt.Printf("\n存储桶: %s  前缀: %s\n", s.bucket, path.Clean("/"+prefix))
	fmt.Printf("对象数量: %d  总大小: %.2f MB\n", objectCount, float64(totalSize)/1024/1024)
	return nil
}
