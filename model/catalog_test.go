package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTempoRange(t *testing.T) {
	tests := []struct {
		name    string
		songs   []Song
		wantMin int
		wantMax int
		wantErr bool
	}{
		{
			name:    "single song",
			songs:   []Song{{ID: "a", Tempo: 120}},
			wantMin: 120,
			wantMax: 120,
		},
		{
			name: "mixed tempos",
			songs: []Song{
				{ID: "a", Tempo: 128},
				{ID: "b", Tempo: 96},
				{ID: "c", Tempo: 140},
			},
			wantMin: 96,
			wantMax: 140,
		},
		{
			name: "zero tempo songs ignored",
			songs: []Song{
				{ID: "a", Tempo: 0},
				{ID: "b", Tempo: 110},
				{ID: "c", Tempo: -1},
			},
			wantMin: 110,
			wantMax: 110,
		},
		{
			name:    "empty playlist",
			songs:   nil,
			wantErr: true,
		},
		{
			name: "no valid tempo",
			songs: []Song{
				{ID: "a", Tempo: 0},
				{ID: "b", Tempo: 0},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &PlaylistDoc{ID: "p", Songs: tt.songs}
			minTempo, maxTempo, err := doc.TempoRange()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, minTempo)
			assert.Equal(t, tt.wantMax, maxTempo)
		})
	}
}

func TestHasSong(t *testing.T) {
	doc := &PlaylistDoc{Songs: []Song{{ID: "abc"}, {ID: "def"}}}

	assert.True(t, doc.HasSong("abc"))
	assert.True(t, doc.HasSong("def"))
	assert.False(t, doc.HasSong("xyz"))
}

func TestStyleDocUpsert(t *testing.T) {
	doc := &StyleDoc{
		Style: "Bachata",
		Playlists: []PlaylistSummary{
			{ID: "first", MinTempo: 90, MaxTempo: 110},
			{ID: "second", MinTempo: 100, MaxTempo: 130},
			{ID: "third", MinTempo: 80, MaxTempo: 95},
		},
	}

	// 替换已有条目时保持原有顺序
	doc.Upsert(PlaylistSummary{ID: "second", MinTempo: 100, MaxTempo: 145})

	require.Len(t, doc.Playlists, 3)
	assert.Equal(t, "first", doc.Playlists[0].ID)
	assert.Equal(t, "second", doc.Playlists[1].ID)
	assert.Equal(t, 145, doc.Playlists[1].MaxTempo)
	assert.Equal(t, "third", doc.Playlists[2].ID)

	// 新条目追加到末尾
	doc.Upsert(PlaylistSummary{ID: "fourth", MinTempo: 70, MaxTempo: 85})

	require.Len(t, doc.Playlists, 4)
	assert.Equal(t, "fourth", doc.Playlists[3].ID)
}

func TestPlaylistSummary(t *testing.T) {
	doc := &PlaylistDoc{
		ID:       "bachata_classics",
		Name:     "Bachata Classics",
		MinTempo: 100,
		MaxTempo: 132,
	}

	s := doc.Summary()
	assert.Equal(t, "bachata_classics", s.ID)
	assert.Equal(t, "Bachata Classics", s.Name)
	assert.Equal(t, 100, s.MinTempo)
	assert.Equal(t, 132, s.MaxTempo)
	assert.Equal(t, "Auto-generated playlist for Bachata Classics", s.Description)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "West Coast Swing", DisplayName("west_coast_swing"))
	assert.Equal(t, "Bachata", DisplayName("bachata"))
	assert.Equal(t, "Salsa Party", DisplayName("salsa party"))
	assert.Equal(t, "", DisplayName(""))
}

func TestMissingFields(t *testing.T) {
	meta := &AssetMetadata{Title: "Song", Duration: -1}

	assert.Equal(t, []string{"artist", "album"}, meta.MissingCoreFields())
	assert.Equal(t, []string{"artist", "album", "tempo", "duration"}, meta.MissingPublishFields())

	complete := &AssetMetadata{Title: "t", Artist: "a", Album: "b", Tempo: 120, Duration: 200}
	assert.Empty(t, complete.MissingCoreFields())
	assert.Empty(t, complete.MissingPublishFields())
}
