package download

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/koriwi/rocksonic/internal/audio"
	ioutils "github.com/koriwi/rocksonic/internal/io"
	"github.com/koriwi/rocksonic/internal/model"
	"github.com/koriwi/rocksonic/internal/pipeline"
)

// Library lists the tracks of a session.
type Library interface {
	Favorites(ctx context.Context) ([]model.Track, error)
	Playlist(ctx context.Context, id string) (string, []model.Track, error)
}

// Remote is the server as seen by a session. *subsonic.Client implements it.
type Remote interface {
	Library
	pipeline.Source
}

// Options are the settings of one sync run.
type Options struct {
	// Root is the output directory.
	Root string

	// Playlist is a playlist id or model.FavoritesLibrary.
	Playlist string

	Flat       bool
	Mode       model.OutputMode
	Cover      model.CoverStrategy
	CoverWidth int

	// CoverSize is the size requested from the server. Zero means CoverWidth.
	CoverSize int

	// Workers is the pool width.
	Workers int

	// AlbumCover copies cover.jpeg into nested album directories.
	AlbumCover bool

	// CreatePlaylist writes a playlist file into the library directory.
	CreatePlaylist bool
	PlaylistFormat model.PlaylistFormat
	M3UExtended    bool
}

// Result is what a session produced.
type Result struct {
	Library      string
	Layout       model.Layout
	Outcomes     []model.Outcome
	Summary      Summary
	PlaylistPath string
}

// Session is one complete sync run against a library. A Session may be
// run repeatedly; each Run builds its own pool.
//
// Example:
//
//	session := download.NewSession(client, ffmpeg, ioutils.NewImageService(), tagger, opts,
//	    func(e download.ProgressEvent) { fmt.Println(e.Message) }, logger)
//	result, err := session.Run(ctx)
type Session struct {
	remote     Remote
	media      pipeline.Media
	resizer    pipeline.Resizer
	tagger     pipeline.Tagger
	opts       Options
	onProgress func(ProgressEvent)
	logger     *log.Logger

	manager atomic.Pointer[Manager]
}

// NewSession creates a Session. tagger, onProgress and logger may be nil.
func NewSession(remote Remote, m pipeline.Media, resizer pipeline.Resizer, tagger pipeline.Tagger, opts Options, onProgress func(ProgressEvent), logger *log.Logger) *Session {
	if opts.Playlist == "" {
		opts.Playlist = model.FavoritesLibrary
	}
	if opts.CoverWidth <= 0 {
		opts.CoverWidth = 500
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Session{
		remote:     remote,
		media:      m,
		resizer:    resizer,
		tagger:     tagger,
		opts:       opts,
		onProgress: onProgress,
		logger:     logger,
	}
}

// Run resolves the tracks, prepares the directory tree and processes every
// track. The returned error is only set for failures that prevent the batch
// from starting; per-track errors are in Result.Outcomes.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	name, tracks, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}

	layout := model.Layout{
		Root:       s.opts.Root,
		Library:    model.LibraryName(name, s.opts.Flat, s.opts.Mode),
		Flat:       s.opts.Flat,
		Mode:       s.opts.Mode,
		CoverWidth: s.opts.CoverWidth,
	}
	s.progress(ProgressEvent{Message: fmt.Sprintf("Syncing %d tracks into %s", len(tracks), layout.LibraryDir()), Level: LevelInfo})

	if err := s.prepare(layout, tracks); err != nil {
		return nil, err
	}

	p := pipeline.New(s.remote, s.media, s.resizer, s.tagger, pipeline.Options{
		Layout:     layout,
		Cover:      s.opts.Cover,
		CoverSize:  s.opts.CoverSize,
		AlbumCover: s.opts.AlbumCover,
	}, s.logger.With("component", "pipeline"))

	manager := NewManager(p, NewPool(s.opts.Workers), s.onProgress, s.logger)
	s.manager.Store(manager)
	outcomes := manager.Run(ctx, tracks)

	result := &Result{
		Library:  layout.Library,
		Layout:   layout,
		Outcomes: outcomes,
		Summary:  Summarize(outcomes),
	}

	if s.opts.CreatePlaylist {
		path, err := s.writePlaylist(layout, name, outcomes)
		if err != nil {
			s.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else {
			result.PlaylistPath = path
			s.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist %s", filepath.Base(path)), Level: LevelSuccess})
		}
	}

	return result, nil
}

// GetProgress returns the number of completed and total tracks.
func (s *Session) GetProgress() (completed, total int) {
	m := s.manager.Load()
	if m == nil {
		return 0, 0
	}
	return m.GetProgress()
}

func (s *Session) resolve(ctx context.Context) (string, []model.Track, error) {
	if strings.EqualFold(s.opts.Playlist, model.FavoritesLibrary) {
		s.progress(ProgressEvent{Message: "Fetching favorites", Level: LevelVerbose})
		tracks, err := s.remote.Favorites(ctx)
		if err != nil {
			return "", nil, fmt.Errorf("fetch favorites: %w", err)
		}
		return model.FavoritesLibrary, s.dedupe(tracks), nil
	}

	s.progress(ProgressEvent{Message: fmt.Sprintf("Fetching playlist %s", s.opts.Playlist), Level: LevelVerbose})
	name, tracks, err := s.remote.Playlist(ctx, s.opts.Playlist)
	if err != nil {
		return "", nil, fmt.Errorf("fetch playlist %s: %w", s.opts.Playlist, err)
	}
	if strings.TrimSpace(name) == "" {
		name = s.opts.Playlist
	}
	return name, s.dedupe(tracks), nil
}

// dedupe keeps the first occurrence of every track id. A playlist may list a
// song more than once, but each id maps to one set of artifacts.
func (s *Session) dedupe(tracks []model.Track) []model.Track {
	seen := make(map[string]bool, len(tracks))
	unique := tracks[:0:0]
	for _, t := range tracks {
		if seen[t.ID] {
			s.progress(ProgressEvent{Message: fmt.Sprintf("Skipping duplicate entry %s", t.DisplayTitle()), Level: LevelVerbose})
			continue
		}
		seen[t.ID] = true
		unique = append(unique, t)
	}
	return unique
}

// prepare creates the cache directories, the library directory and, for
// nested layouts, every artist/album directory.
func (s *Session) prepare(layout model.Layout, tracks []model.Track) error {
	dirs := []string{layout.AudioCacheDir(), layout.CoverCacheDir(), layout.LibraryDir()}
	if !layout.Flat {
		seen := make(map[string]bool)
		for _, t := range tracks {
			dir := layout.AlbumDir(t)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}

	for _, dir := range dirs {
		if err := ioutils.EnsureDir(dir); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// writePlaylist lists the successful tracks in remote order.
func (s *Session) writePlaylist(layout model.Layout, name string, outcomes []model.Outcome) (string, error) {
	entries := make([]audio.Entry, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Failed() {
			continue
		}
		entries = append(entries, audio.NewEntry(o.Track, layout.RelativePath(o.Track)))
	}

	content := audio.NewPlaylistCreator(s.opts.PlaylistFormat, s.opts.M3UExtended).CreatePlaylist(name, entries)
	path := layout.PlaylistPath(s.opts.PlaylistFormat)
	err := ioutils.WriteAtomic(path, func(tmp string) error {
		return os.WriteFile(tmp, []byte(content), 0644)
	})
	return path, err
}

func (s *Session) progress(event ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(event)
	}
}
