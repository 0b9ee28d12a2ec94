package model

import "time"

// IngestRun 表示一次批量导入的历史记录
type IngestRun struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	Style         string    `json:"style" gorm:"size:128"`
	Playlist      string    `json:"playlist" gorm:"size:128"`
	Ingested      int       `json:"ingested"`
	Reused        int       `json:"reused"`
	Skipped       int       `json:"skipped"`
	TempoMeasured int       `json:"tempoMeasured"`
	Errored       int       `json:"errored"`
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
}

// IngestEvent 表示运行中单个文件的处理结果
type IngestEvent struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	RunID     string    `json:"runId" gorm:"index;size:36"`
	AssetPath string    `json:"assetPath" gorm:"size:1024"`
	Kind      string    `json:"kind" gorm:"size:32"` // ingested, reused, skipped, error, tempo
	Detail    string    `json:"detail" gorm:"size:2048"`
	CreatedAt time.Time `json:"createdAt"`
}
