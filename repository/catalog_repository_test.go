package repository

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"TempoFM/model"
	"TempoFM/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote is an in-memory RemoteCatalog.
type fakeRemote struct {
	objects   map[string][]byte // key: category/name
	published []string
	failList  bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{objects: make(map[string][]byte)}
}

func (f *fakeRemote) key(category storage.Category, name string) string {
	return string(category) + "/" + name
}

func (f *fakeRemote) ListExisting(ctx context.Context, category storage.Category) ([]string, error) {
	if f.failList {
		return nil, errors.New("listing unavailable")
	}
	var names []string
	prefix := string(category) + "/"
	for k := range f.objects {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			names = append(names, k[len(prefix):])
		}
	}
	return names, nil
}

func (f *fakeRemote) Fetch(ctx context.Context, category storage.Category, name string) ([]byte, error) {
	data, ok := f.objects[f.key(category, name)]
	if !ok {
		return nil, errors.New("no such object")
	}
	return data, nil
}

func (f *fakeRemote) Publish(ctx context.Context, localPath, remoteName string, category storage.Category) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return err
	}
	f.objects[f.key(category, remoteName)] = data
	f.published = append(f.published, f.key(category, remoteName))
	return nil
}

func newTestRepo(t *testing.T) (CatalogRepository, string, string) {
	t.Helper()
	base := t.TempDir()
	playlistsDir := filepath.Join(base, "playlists")
	stylesDir := filepath.Join(base, "styles")
	return NewFileCatalogRepository(playlistsDir, stylesDir, nil), playlistsDir, stylesDir
}

func TestUpsertSongCreatesPlaylist(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	res, err := repo.UpsertSong(ctx, "bachata_classics", "bachata", model.Song{
		ID: "d1", Title: "Song", Artist: "Artist", Album: "Album", Tempo: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, model.UpsertInserted, res)

	doc, err := repo.LoadPlaylist("bachata_classics")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "Bachata Classics", doc.Name)
	assert.Equal(t, "Bachata", doc.Style)
	require.Len(t, doc.Songs, 1)
	assert.Equal(t, 120, doc.MinTempo)
	assert.Equal(t, 120, doc.MaxTempo)
}

func TestUpsertSongIsIdempotent(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()
	song := model.Song{ID: "d1", Title: "Song", Tempo: 110}

	res, err := repo.UpsertSong(ctx, "salsa_party", "salsa", song)
	require.NoError(t, err)
	assert.Equal(t, model.UpsertInserted, res)

	// 相同的歌曲再次插入不改变文档
	before, err := repo.LoadPlaylist("salsa_party")
	require.NoError(t, err)

	res, err = repo.UpsertSong(ctx, "salsa_party", "salsa", song)
	require.NoError(t, err)
	assert.Equal(t, model.UpsertAlreadyPresent, res)

	after, err := repo.LoadPlaylist("salsa_party")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	require.Len(t, after.Songs, 1)
}

func TestUpsertSongUpdatesTempoBounds(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertSong(ctx, "p", "kizomba", model.Song{ID: "a", Tempo: 100})
	require.NoError(t, err)
	_, err = repo.UpsertSong(ctx, "p", "kizomba", model.Song{ID: "b", Tempo: 140})
	require.NoError(t, err)
	_, err = repo.UpsertSong(ctx, "p", "kizomba", model.Song{ID: "c", Tempo: 80})
	require.NoError(t, err)

	doc, err := repo.LoadPlaylist("p")
	require.NoError(t, err)
	assert.Equal(t, 80, doc.MinTempo)
	assert.Equal(t, 140, doc.MaxTempo)

	// 插入顺序保持不变
	assert.Equal(t, "a", doc.Songs[0].ID)
	assert.Equal(t, "b", doc.Songs[1].ID)
	assert.Equal(t, "c", doc.Songs[2].ID)
}

func TestUpsertSongRefreshesStyleDocument(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertSong(ctx, "first", "bachata", model.Song{ID: "a", Tempo: 100})
	require.NoError(t, err)
	_, err = repo.UpsertSong(ctx, "second", "bachata", model.Song{ID: "b", Tempo: 120})
	require.NoError(t, err)

	style, err := repo.LoadStyle("bachata")
	require.NoError(t, err)
	require.NotNil(t, style)
	assert.Equal(t, "Bachata", style.Style)
	require.Len(t, style.Playlists, 2)
	assert.Equal(t, "first", style.Playlists[0].ID)
	assert.Equal(t, "second", style.Playlists[1].ID)

	// 再次写入 first 替换原条目而不是追加
	_, err = repo.UpsertSong(ctx, "first", "bachata", model.Song{ID: "c", Tempo: 150})
	require.NoError(t, err)

	style, err = repo.LoadStyle("bachata")
	require.NoError(t, err)
	require.Len(t, style.Playlists, 2)
	assert.Equal(t, "first", style.Playlists[0].ID)
	assert.Equal(t, 150, style.Playlists[0].MaxTempo)
}

func TestRecalculateAll(t *testing.T) {
	repo, playlistsDir, _ := newTestRepo(t)
	ctx := context.Background()

	// 一个边界过期的文档和一个边界正确的文档
	stale := &model.PlaylistDoc{
		ID: "stale", Name: "Stale",
		Songs:    []model.Song{{ID: "a", Tempo: 90}, {ID: "b", Tempo: 130}},
		MinTempo: 100, MaxTempo: 100,
	}
	fresh := &model.PlaylistDoc{
		ID: "fresh", Name: "Fresh",
		Songs:    []model.Song{{ID: "c", Tempo: 110}},
		MinTempo: 110, MaxTempo: 110,
	}
	empty := &model.PlaylistDoc{ID: "empty", Name: "Empty", Songs: []model.Song{}}

	for _, doc := range []*model.PlaylistDoc{stale, fresh, empty} {
		writeDoc(t, playlistsDir, doc.ID, doc)
	}

	summary, err := repo.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Unchanged)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "empty")

	doc, err := repo.LoadPlaylist("stale")
	require.NoError(t, err)
	assert.Equal(t, 90, doc.MinTempo)
	assert.Equal(t, 130, doc.MaxTempo)

	// 第二次运行没有任何写入
	summary, err = repo.RecalculateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 2, summary.Unchanged)
}

func TestRecalculateAllMissingDirectory(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	summary, err := repo.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Updated)
	assert.Equal(t, 0, summary.Unchanged)
	assert.Empty(t, summary.Errors)
}

func TestRecalculateAllCorruptDocument(t *testing.T) {
	repo, playlistsDir, _ := newTestRepo(t)

	require.NoError(t, os.MkdirAll(playlistsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(playlistsDir, "broken.json"), []byte("{not json"), 0644))
	writeDoc(t, playlistsDir, "ok", &model.PlaylistDoc{
		ID: "ok", Songs: []model.Song{{ID: "a", Tempo: 100}}, MinTempo: 100, MaxTempo: 100,
	})

	summary, err := repo.RecalculateAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Unchanged)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0], "broken")
}

func TestSyncStyleSummary(t *testing.T) {
	repo, _, _ := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertSong(ctx, "p", "salsa", model.Song{ID: "a", Tempo: 95})
	require.NoError(t, err)

	require.NoError(t, repo.SyncStyleSummary(ctx, "salsa", "p"))

	style, err := repo.LoadStyle("salsa")
	require.NoError(t, err)
	require.Len(t, style.Playlists, 1)
	assert.Equal(t, 95, style.Playlists[0].MinTempo)

	// 不存在的播放列表是错误
	assert.Error(t, repo.SyncStyleSummary(ctx, "salsa", "missing"))
}

func TestSyncFromRemote(t *testing.T) {
	base := t.TempDir()
	playlistsDir := filepath.Join(base, "playlists")
	stylesDir := filepath.Join(base, "styles")

	remote := newFakeRemote()
	playlistJSON, _ := json.Marshal(&model.PlaylistDoc{ID: "remote_list", Songs: []model.Song{{ID: "a", Tempo: 100}}})
	remote.objects[remote.key(storage.CategoryPlaylists, "remote_list.json")] = playlistJSON
	styleJSON, _ := json.Marshal(&model.StyleDoc{Style: "Bachata"})
	remote.objects[remote.key(storage.CategoryStyles, "bachata.json")] = styleJSON
	// 非JSON对象被忽略
	remote.objects[remote.key(storage.CategoryPlaylists, "readme.txt")] = []byte("skip me")

	repo := NewFileCatalogRepository(playlistsDir, stylesDir, remote)
	require.NoError(t, repo.SyncFromRemote(context.Background()))

	doc, err := repo.LoadPlaylist("remote_list")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "remote_list", doc.ID)

	style, err := repo.LoadStyle("bachata")
	require.NoError(t, err)
	require.NotNil(t, style)

	_, err = os.Stat(filepath.Join(playlistsDir, "readme.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestSyncFromRemoteListFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.failList = true
	base := t.TempDir()
	repo := NewFileCatalogRepository(filepath.Join(base, "p"), filepath.Join(base, "s"), remote)

	assert.Error(t, repo.SyncFromRemote(context.Background()))
}

func TestUpsertSongPublishesDocuments(t *testing.T) {
	base := t.TempDir()
	remote := newFakeRemote()
	repo := NewFileCatalogRepository(filepath.Join(base, "p"), filepath.Join(base, "s"), remote)

	_, err := repo.UpsertSong(context.Background(), "list", "bachata", model.Song{ID: "a", Tempo: 100})
	require.NoError(t, err)

	// 播放列表与样式文档都被上传
	assert.Contains(t, remote.objects, remote.key(storage.CategoryPlaylists, "list.json"))
	assert.Contains(t, remote.objects, remote.key(storage.CategoryStyles, "bachata.json"))
}

func TestLoadPlaylistMissing(t *testing.T) {
	repo, _, _ := newTestRepo(t)

	doc, err := repo.LoadPlaylist("nope")
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func writeDoc(t *testing.T, dir, id string, doc *model.PlaylistDoc) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	data, err := json.MarshalIndent(doc, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), data, 0644))
}
