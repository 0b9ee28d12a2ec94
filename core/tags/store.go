package tags

import (
	"fmt"
	"os"
	"strconv"

	"TempoFM/logger"
	"TempoFM/model"

	"github.com/dhowden/tag"
	"go.senan.xyz/taglib"
)

// Store reads and writes asset-embedded metadata. Reads go through TagLib,
// which normalizes ID3/MP4/Vorbis key differences for us; embedded cover
// art is read with dhowden/tag because TagLib's map API does not expose
// picture frames.
type Store struct{}

// NewStore 创建标签存储
func NewStore() *Store {
	return &Store{}
}

// ReadMetadata extracts the metadata subset the ingest pipeline cares
// about. Absent fields stay at their zero values (Duration: -1).
func (s *Store) ReadMetadata(path string) (model.AssetMetadata, error) {
	meta := model.AssetMetadata{Duration: -1}

	raw, err := taglib.ReadTags(path)
	if err != nil {
		return meta, fmt.Errorf("读取标签失败 %s: %w", path, err)
	}

	meta.Title = first(raw[taglib.Title])
	meta.Artist = first(raw[taglib.Artist])
	meta.Album = first(raw[taglib.Album])
	meta.Genre = first(raw[taglib.Genre])
	meta.Fingerprint = first(raw[taglib.AcoustIDFingerprint])

	if bpm := first(raw[taglib.BPM]); bpm != "" {
		if v, err := strconv.ParseFloat(bpm, 64); err == nil && v > 0 {
			meta.Tempo = int(v)
		}
	}

	props, err := taglib.ReadProperties(path)
	if err != nil {
		logger.Warn("读取音频属性失败", logger.String("path", path), logger.ErrorField(err))
	} else {
		meta.Duration = int(props.Length.Seconds())
	}

	meta.Cover = readCover(path)

	return meta, nil
}

// WriteFingerprint persists an acoustic fingerprint onto the source file so
// repeated runs over the same file never recompute it.
func (s *Store) WriteFingerprint(path, token string) error {
	err := taglib.WriteTags(path, map[string][]string{
		taglib.AcoustIDFingerprint: {token},
	}, 0)
	if err != nil {
		return fmt.Errorf("写入指纹标签失败 %s: %w", path, err)
	}
	return nil
}

// WriteTempo persists a measured tempo onto the source file.
func (s *Store) WriteTempo(path string, bpm int) error {
	err := taglib.WriteTags(path, map[string][]string{
		taglib.BPM: {strconv.Itoa(bpm)},
	}, 0)
	if err != nil {
		return fmt.Errorf("写入BPM标签失败 %s: %w", path, err)
	}
	return nil
}

// readCover returns embedded cover art bytes, nil when there is none.
// Missing or unreadable art is never an error for ingest.
func readCover(path string) []byte {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return nil
	}
	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		return pic.Data
	}
	return nil
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
