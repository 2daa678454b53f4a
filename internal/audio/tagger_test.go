package audio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koriwi/rocksonic/internal/model"
)

func writeFakeMP3(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".part-003 Song.mp3")
	// An MPEG frame header followed by padding is enough for id3v2.
	data := append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 1024)...)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestTagger_Apply(t *testing.T) {
	path := writeFakeMP3(t)
	track := model.Track{ID: "1", Title: "Song", Artist: "A/C", Album: "Hits", Number: model.TrackNumber(3)}

	require.NoError(t, NewTagger(nil).Apply(path, track))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Equal(t, byte(3), tag.Version())
	assert.Equal(t, "Song", tag.Title())
	assert.Equal(t, "A/C", tag.Artist())
	assert.Equal(t, "Hits", tag.Album())
	assert.Equal(t, "3", tag.GetTextFrame("TRCK").Text)
}

func TestTagger_Apply_KeepsAudio(t *testing.T) {
	path := writeFakeMP3(t)
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, NewTagger(nil).Apply(path, model.Track{ID: "1", Title: "Song"}))

	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after[len(after)-len(before):], "audio payload must follow the tag unchanged")
}

func TestTagger_Apply_EmptyFrames(t *testing.T) {
	path := writeFakeMP3(t)
	track := model.Track{ID: "1", Title: "Song", Artist: "Someone", Number: model.TrackNumber(1)}
	require.NoError(t, NewTagger(nil).Apply(path, track))

	cfg := DefaultTagConfig()
	cfg.Artist = TagEmpty
	cfg.TrackNumber = TagEmpty
	require.NoError(t, NewTagger(cfg).Apply(path, track))

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	require.NoError(t, err)
	defer tag.Close()

	assert.Empty(t, tag.Artist())
	assert.Empty(t, tag.GetFrames("TRCK"))
	assert.Equal(t, "Song", tag.Title())
}

func TestTagger_Apply_MissingFile(t *testing.T) {
	err := NewTagger(nil).Apply(filepath.Join(t.TempDir(), "missing.mp3"), model.Track{ID: "1"})
	assert.Error(t, err)
}
