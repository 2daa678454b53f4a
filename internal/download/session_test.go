package download_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/koriwi/rocksonic/internal/download"
	"github.com/koriwi/rocksonic/internal/media"
	"github.com/koriwi/rocksonic/internal/model"
	"github.com/koriwi/rocksonic/internal/pipeline/mocks"
	"github.com/koriwi/rocksonic/internal/subsonic"
)

type fakeRemote struct {
	name      string
	tracks    []model.Track
	covers    map[string]string
	failOn    string
	listErr   error
	mu        sync.Mutex
	downloads int
}

func (r *fakeRemote) Favorites(context.Context) ([]model.Track, error) {
	return r.tracks, r.listErr
}

func (r *fakeRemote) Playlist(_ context.Context, id string) (string, []model.Track, error) {
	if r.listErr != nil {
		return "", nil, r.listErr
	}
	return r.name, r.tracks, nil
}

func (r *fakeRemote) Download(_ context.Context, id string, _ uint) (io.ReadCloser, error) {
	r.mu.Lock()
	r.downloads++
	r.mu.Unlock()
	if id == r.failOn {
		return nil, errors.New("connection reset")
	}
	return io.NopCloser(strings.NewReader("audio-" + id)), nil
}

func (r *fakeRemote) CoverArt(_ context.Context, id string, _ int) (io.ReadCloser, error) {
	if c, ok := r.covers[id]; ok {
		return io.NopCloser(strings.NewReader(c)), nil
	}
	return nil, &subsonic.Error{Code: subsonic.CodeNotFound, Message: "Cover art not found"}
}

func testTracks() []model.Track {
	return []model.Track{
		{ID: "1", Title: "One", Artist: "Band", Album: "First", Number: model.TrackNumber(1), Suffix: "flac", Duration: 100},
		{ID: "2", Title: "Two", Artist: "Band", Album: "Second", Number: model.TrackNumber(2), Suffix: "ogg", Duration: 200},
		{ID: "3", Title: "Three", Artist: "Other", Album: "Third", Suffix: "flac"},
	}
}

func TestSession_Run_PassthroughWithoutCovers(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	remote := &fakeRemote{tracks: testTracks(), failOn: "2"}

	var lines []string
	var mu sync.Mutex
	session := download.NewSession(remote, mocks.NewMockMedia(ctrl), mocks.NewMockResizer(ctrl), nil, download.Options{
		Root:           root,
		Workers:        2,
		CreatePlaylist: true,
		PlaylistFormat: model.PlaylistFormatM3U,
	}, func(e download.ProgressEvent) {
		if e.Outcome != nil {
			mu.Lock()
			lines = append(lines, e.Message)
			mu.Unlock()
		}
	}, nil)

	result, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, model.FavoritesLibrary, result.Library)
	assert.Len(t, lines, 3)
	assert.Equal(t, 1, result.Summary.Failed)
	assert.Equal(t, 2, result.Summary.Downloaded)

	lib := filepath.Join(root, model.FavoritesLibrary)
	for _, dir := range []string{
		filepath.Join(root, model.AudioCacheDir),
		filepath.Join(root, model.CoverCacheDir),
		filepath.Join(lib, "Band", "First"),
		filepath.Join(lib, "Band", "Second"),
		filepath.Join(lib, "Other", "Third"),
	} {
		assert.DirExists(t, dir)
	}

	data, err := os.ReadFile(filepath.Join(lib, "Band", "First", "001 One.flac"))
	require.NoError(t, err)
	assert.Equal(t, "audio-1", string(data))
	assert.NoFileExists(t, filepath.Join(lib, "Band", "Second", "002 Two.ogg"))

	require.Equal(t, filepath.Join(lib, "favorites.m3u"), result.PlaylistPath)
	playlist, err := os.ReadFile(result.PlaylistPath)
	require.NoError(t, err)
	assert.Equal(t, "Band/First/001 One.flac\nOther/Third/Three.flac\n", string(playlist))

	completed, total := session.GetProgress()
	assert.Equal(t, 3, completed)
	assert.Equal(t, 3, total)
}

func TestSession_Run_DuplicateEntries(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	tracks := testTracks()
	remote := &fakeRemote{name: "Loop", tracks: append(tracks, tracks[0], tracks[2])}

	var verbose []string
	session := download.NewSession(remote, mocks.NewMockMedia(ctrl), mocks.NewMockResizer(ctrl), nil, download.Options{
		Root:     root,
		Playlist: "pl-1",
		Workers:  5,
	}, func(e download.ProgressEvent) {
		if e.Level == download.LevelVerbose && strings.HasPrefix(e.Message, "Skipping duplicate") {
			verbose = append(verbose, e.Message)
		}
	}, nil)

	result, err := session.Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Outcomes, 3)
	assert.Zero(t, result.Summary.Failed)
	assert.Equal(t, 3, remote.downloads)
	assert.Equal(t, []string{"Skipping duplicate entry One", "Skipping duplicate entry Three"}, verbose)
	assert.FileExists(t, filepath.Join(root, "Loop", "Band", "First", "001 One.flac"))
}

func TestSession_Run_SecondRunDoesNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	remote := &fakeRemote{tracks: testTracks()}

	opts := download.Options{Root: root, Flat: true}
	session := download.NewSession(remote, mocks.NewMockMedia(ctrl), mocks.NewMockResizer(ctrl), nil, opts, nil, nil)

	first, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "favorites_flat", first.Library)
	assert.Equal(t, 3, first.Summary.Downloaded)

	second, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, second.Summary.Skipped)
	assert.Equal(t, 3, remote.downloads)
	assert.FileExists(t, filepath.Join(root, "favorites_flat", "Band First 001 One.flac"))
}

func TestSession_Run_PlaylistTranscodedWithCover(t *testing.T) {
	ctrl := gomock.NewController(t)
	root := t.TempDir()
	track := model.Track{ID: "9", Title: "Tune", Artist: "X", Album: "Y", Suffix: "flac", CoverArt: "al-9"}
	remote := &fakeRemote{name: "Road Trip", tracks: []model.Track{track}, covers: map[string]string{"al-9": "jpeg"}}

	m := mocks.NewMockMedia(ctrl)
	m.EXPECT().Run(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, op media.Operation) error {
		assert.Equal(t, media.OpMux, op.Kind)
		return os.WriteFile(op.Output, []byte("muxed"), 0644)
	})
	resizer := mocks.NewMockResizer(ctrl)
	resizer.EXPECT().ResizeFile(gomock.Any(), gomock.Any(), gomock.Any(), 300).
		DoAndReturn(func(_ context.Context, _, dst string, _ int) error {
			return os.WriteFile(dst, []byte("small"), 0644)
		})
	tagger := mocks.NewMockTagger(ctrl)
	tagger.EXPECT().Apply(gomock.Any(), track).Return(nil)

	session := download.NewSession(remote, m, resizer, tagger, download.Options{
		Root:       root,
		Playlist:   "pl-1",
		Mode:       model.Transcode(128),
		CoverWidth: 300,
	}, nil, nil)

	result, err := session.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Road Trip_mp3", result.Library)
	assert.Equal(t, model.Actions{model.Downloaded, model.CoverDownloaded, model.CoverConverted, model.CoverEmbedded, model.Converted}, result.Outcomes[0].Actions)
	assert.FileExists(t, filepath.Join(root, "Road Trip_mp3", "X", "Y", "Tune.mp3"))
	assert.Empty(t, result.PlaylistPath)
}

func TestSession_Run_ListingFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := &fakeRemote{listErr: &subsonic.Error{Code: subsonic.CodeNotFound, Message: "Playlist not found"}}

	session := download.NewSession(remote, mocks.NewMockMedia(ctrl), mocks.NewMockResizer(ctrl), nil, download.Options{
		Root:     t.TempDir(),
		Playlist: "missing",
	}, nil, nil)

	_, err := session.Run(context.Background())
	require.Error(t, err)
	assert.True(t, subsonic.IsNotFound(err))
	assert.Contains(t, err.Error(), "fetch playlist missing")
}
