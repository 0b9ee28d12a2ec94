package model

import (
	"fmt"
	"strings"
)

// Song is one entry in a playlist document. The ID is the content digest of
// the underlying audio asset, so a song is unique within a playlist
// regardless of source file name or container format.
type Song struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album"`
	Tempo    int    `json:"tempo"`
	Duration int    `json:"duration"` // seconds
	Audio    string `json:"audio"`    // public URL of the published audio object
	Cover    string `json:"cover,omitempty"`
}

// PlaylistDoc is a standalone playlist document. Songs keep insertion order.
// MinTempo/MaxTempo are derived from the song set and must be recomputed on
// every mutation.
type PlaylistDoc struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Style    string `json:"style"`
	Songs    []Song `json:"songs"`
	MinTempo int    `json:"minTempo,omitempty"`
	MaxTempo int    `json:"maxTempo,omitempty"`
}

// HasSong reports whether a song with the given id is already present.
func (p *PlaylistDoc) HasSong(id string) bool {
	for _, s := range p.Songs {
		if s.ID == id {
			return true
		}
	}
	return false
}

// TempoRange computes the min/max tempo over all songs with a positive
// tempo. It fails for an empty playlist and for playlists where no song
// carries a usable tempo, because no range is defined in either case.
func (p *PlaylistDoc) TempoRange() (int, int, error) {
	if len(p.Songs) == 0 {
		return 0, 0, fmt.Errorf("playlist %s has no songs", p.ID)
	}
	minTempo, maxTempo := 0, 0
	for _, s := range p.Songs {
		if s.Tempo <= 0 {
			continue
		}
		if minTempo == 0 || s.Tempo < minTempo {
			minTempo = s.Tempo
		}
		if s.Tempo > maxTempo {
			maxTempo = s.Tempo
		}
	}
	if minTempo == 0 {
		return 0, 0, fmt.Errorf("playlist %s has no songs with a valid tempo", p.ID)
	}
	return minTempo, maxTempo, nil
}

// Summary derives the style-document entry for this playlist.
func (p *PlaylistDoc) Summary() PlaylistSummary {
	return PlaylistSummary{
		ID:          p.ID,
		Name:        p.Name,
		MinTempo:    p.MinTempo,
		MaxTempo:    p.MaxTempo,
		Description: fmt.Sprintf("Auto-generated playlist for %s", p.Name),
	}
}

// PlaylistSummary is the derived copy of a playlist kept in a style
// document. It can lag behind the playlist until explicitly upserted.
type PlaylistSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MinTempo    int    `json:"minTempo"`
	MaxTempo    int    `json:"maxTempo"`
	Description string `json:"description"`
}

// StyleDoc groups playlist summaries under one style (bachata, salsa, ...).
type StyleDoc struct {
	Style     string            `json:"style"`
	Playlists []PlaylistSummary `json:"playlists"`
}

// Upsert replaces the summary with the same playlist id in place, or
// appends it. Ordering of other entries is preserved.
func (s *StyleDoc) Upsert(summary PlaylistSummary) {
	for i, p := range s.Playlists {
		if p.ID == summary.ID {
			s.Playlists[i] = summary
			return
		}
	}
	s.Playlists = append(s.Playlists, summary)
}

// UpsertResult reports what a catalog upsert did.
type UpsertResult int

const (
	UpsertInserted UpsertResult = iota
	UpsertAlreadyPresent
)

// RecalcSummary is the result of a tempo-range recalculation pass.
type RecalcSummary struct {
	Updated   int
	Unchanged int
	Errors    []string
}

// DisplayName turns an identifier like "west_coast_swing" into
// "West Coast Swing" for document display fields.
func DisplayName(id string) string {
	words := strings.Split(strings.ReplaceAll(id, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
