package catalog

import (
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/logger"
)

// writeID3 writes a file holding only an ID3v2.3 tag with title and artist frames.
func writeID3(t *testing.T, path, title, artist string) {
	t.Helper()

	frame := func(id, text string) []byte {
		body := append([]byte{0x00}, text...) // ISO-8859-1
		out := append([]byte(id), 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint32(out[4:8], uint32(len(body)))
		return append(out, body...)
	}
	frames := append(frame("TIT2", title), frame("TPE1", artist)...)

	size := len(frames)
	header := []byte{'I', 'D', '3', 3, 0, 0,
		byte(size >> 21 & 0x7f), byte(size >> 14 & 0x7f), byte(size >> 7 & 0x7f), byte(size & 0x7f)}

	require.NoError(t, os.WriteFile(path, append(header, frames...), 0o600))
}

func writeCatalog(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "tracks.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestJSONCatalog_File(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "audio"), 0o755))
	writeID3(t, filepath.Join(dir, "audio", "tagged.mp3"), "Tagged Song", "Tagged Artist")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "audio", "plain.wav"), []byte("RIFF"), 0o600))

	path := writeCatalog(t, dir, `[
		{"id": 1, "artist": "Known", "song": "Listed", "source": "audio/listed.mp3", "duration": 61.5},
		{"id": "two", "source": "audio/tagged.mp3"},
		{"source": "audio/plain.wav"},
		{"id": 4, "artist": "Nobody", "song": "Nowhere", "source": ""},
		{"id": 5, "source": "https://cdn.example.com/music/Remote%20Song.mp3"}
	]`)

	cat := New(logger.NewTestLogger(), path, WithWorkers(2))
	tracks, err := cat.Tracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 4, "entry without source is skipped")

	assert.Equal(t, "1", tracks[0].ID)
	assert.Equal(t, "Known", tracks[0].Artist)
	assert.Equal(t, filepath.Join(dir, "audio", "listed.mp3"), tracks[0].Source)
	assert.Equal(t, 61500*time.Millisecond, tracks[0].Duration)

	assert.Equal(t, "two", tracks[1].ID)
	assert.Equal(t, "Tagged Song", tracks[1].Song)
	assert.Equal(t, "Tagged Artist", tracks[1].Artist)

	assert.NotEmpty(t, tracks[2].ID, "missing id is generated")
	assert.Equal(t, "plain", tracks[2].Song)
	assert.Equal(t, UnknownArtist, tracks[2].Artist)

	assert.Equal(t, "https://cdn.example.com/music/Remote%20Song.mp3", tracks[3].Source)
	assert.Equal(t, "Remote Song", tracks[3].Song)
}

func TestJSONCatalog_Cached(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, `[{"id": 1, "artist": "A", "song": "S", "source": "a.mp3"}]`)
	cat := New(logger.NewTestLogger(), path)

	first, err := cat.Tracks(context.Background())
	require.NoError(t, err)

	writeCatalog(t, dir, `[]`)
	second, err := cat.Tracks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	cat.Invalidate()
	third, err := cat.Tracks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestJSONCatalog_MissingFile(t *testing.T) {
	cat := New(logger.NewTestLogger(), filepath.Join(t.TempDir(), "nope.json"))

	_, err := cat.Tracks(context.Background())
	var catErr *domain.CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "read", catErr.Op)
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestJSONCatalog_BadJSON(t *testing.T) {
	path := writeCatalog(t, t.TempDir(), `{"not": "an array"}`)
	_, err := New(logger.NewTestLogger(), path).Tracks(context.Background())

	var catErr *domain.CatalogError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, "decode", catErr.Op)
}

func TestJSONCatalog_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data/tracks.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id": 7, "artist": "A", "song": "S", "source": "../audio/s.mp3"}]`))
	}))
	defer srv.Close()

	cat := New(logger.NewTestLogger(), srv.URL+"/data/tracks.json", WithHTTPClient(srv.Client()))
	tracks, err := cat.Tracks(context.Background())
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, srv.URL+"/audio/s.mp3", tracks[0].Source)

	missing := New(logger.NewTestLogger(), srv.URL+"/other.json", WithHTTPClient(srv.Client()))
	_, err = missing.Tracks(context.Background())
	assert.ErrorIs(t, err, domain.ErrCatalogUnavailable)
}

func TestJSONCatalog_Canceled(t *testing.T) {
	dir := t.TempDir()
	path := writeCatalog(t, dir, `[{"id": 1, "source": "a.mp3"}]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(logger.NewTestLogger(), path).Tracks(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
