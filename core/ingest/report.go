package ingest

import (
	"fmt"
	"strings"
	"time"

	"TempoFM/model"

	"github.com/google/uuid"
)

// SkipEntry records one skipped asset and why.
type SkipEntry struct {
	Path   string
	Reason SkipReason
}

// TempoEntry records one tempo measurement performed during the run.
type TempoEntry struct {
	Path string
	BPM  int
}

// ErrorEntry records one contained per-asset error.
type ErrorEntry struct {
	Path   string
	Detail string
}

// Report accumulates per-run outcomes for observability.
type Report struct {
	RunID      string
	Style      string
	Playlist   string
	StartedAt  time.Time
	FinishedAt time.Time

	Ingested      []string
	Reused        []string
	Skipped       []SkipEntry
	TempoMeasured []TempoEntry
	Errors        []ErrorEntry
}

// NewReport 创建运行报告
func NewReport(style, playlist string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Style:     style,
		Playlist:  playlist,
		StartedAt: time.Now(),
	}
}

func (r *Report) AddIngested(path string) {
	r.Ingested = append(r.Ingested, path)
}

func (r *Report) AddReused(path string) {
	r.Reused = append(r.Reused, path)
}

// AddSkipped records a skip; the underlying error, when present, also gets
// an error line so the end-of-run report explains every rejection.
func (r *Report) AddSkipped(path string, reason SkipReason, err error) {
	r.Skipped = append(r.Skipped, SkipEntry{Path: path, Reason: reason})
	if err != nil {
		r.Errors = append(r.Errors, ErrorEntry{Path: path, Detail: err.Error()})
	}
}

func (r *Report) AddTempoMeasured(path string, bpm int) {
	r.TempoMeasured = append(r.TempoMeasured, TempoEntry{Path: path, BPM: bpm})
}

func (r *Report) AddError(path string, err error) {
	r.Errors = append(r.Errors, ErrorEntry{Path: path, Detail: err.Error()})
}

func (r *Report) Finish() {
	r.FinishedAt = time.Now()
}

// Summary renders the end-of-run report.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n导入结果汇总\n")
	fmt.Fprintf(&b, "===========================\n\n")
	fmt.Fprintf(&b, "成功导入: %d\n", len(r.Ingested))
	fmt.Fprintf(&b, "复用已有资源: %d\n", len(r.Reused))
	fmt.Fprintf(&b, "跳过文件: %d\n", len(r.Skipped))
	fmt.Fprintf(&b, "测速文件: %d\n", len(r.TempoMeasured))
	fmt.Fprintf(&b, "错误数量: %d\n", len(r.Errors))
	fmt.Fprintf(&b, "\nStyle: %s\nPlaylist: %s\n", r.Style, r.Playlist)

	if len(r.TempoMeasured) > 0 {
		fmt.Fprintf(&b, "\n测速结果:\n")
		for _, t := range r.TempoMeasured {
			fmt.Fprintf(&b, "  ♪ %s: %d BPM\n", t.Path, t.BPM)
		}
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "\n跳过明细:\n")
		for _, s := range r.Skipped {
			fmt.Fprintf(&b, "  - %s (%s)\n", s.Path, s.Reason)
		}
	}

	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n错误明细:\n")
		for _, e := range r.Errors {
			if e.Path == "" {
				fmt.Fprintf(&b, "  ✗ %s\n", e.Detail)
				continue
			}
			fmt.Fprintf(&b, "  ✗ %s: %s\n", e.Path, e.Detail)
		}
	}

	return b.String()
}

// Rows converts the report into run-history records for persistence.
func (r *Report) Rows() (model.IngestRun, []model.IngestEvent) {
	run := model.IngestRun{
		ID:            r.RunID,
		Style:         r.Style,
		Playlist:      r.Playlist,
		Ingested:      len(r.Ingested),
		Reused:        len(r.Reused),
		Skipped:       len(r.Skipped),
		TempoMeasured: len(r.TempoMeasured),
		Errored:       len(r.Errors),
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}

	var events []model.IngestEvent
	for _, p := range r.Ingested {
		events = append(events, model.IngestEvent{RunID: r.RunID, AssetPath: p, Kind: "ingested"})
	}
	for _, p := range r.Reused {
		events = append(events, model.IngestEvent{RunID: r.RunID, AssetPath: p, Kind: "reused"})
	}
	for _, s := range r.Skipped {
		events = append(events, model.IngestEvent{RunID: r.RunID, AssetPath: s.Path, Kind: "skipped", Detail: string(s.Reason)})
	}
	for _, t := range r.TempoMeasured {
		events = append(events, model.IngestEvent{RunID: r.RunID, AssetPath: t.Path, Kind: "tempo", Detail: fmt.Sprintf("%d BPM", t.BPM)})
	}
	for _, e := range r.Errors {
		events = append(events, model.IngestEvent{RunID: r.RunID, AssetPath: e.Path, Kind: "error", Detail: e.Detail})
	}

	return run, events
}
