package model

import (
	"fmt"
	"path/filepath"
	"strconv"

	ioutils "github.com/koriwi/rocksonic/internal/io"
)

const (
	// AudioCacheDir holds raw audio keyed by track id and bitrate.
	AudioCacheDir = ".mp3"

	// CoverCacheDir holds raw and resized covers keyed by track id.
	CoverCacheDir = ".cover"

	// AlbumCoverName is the folder cover copied into nested album directories.
	AlbumCoverName = "cover.jpeg"

	// FavoritesLibrary is the library name of the starred songs.
	FavoritesLibrary = "favorites"

	// UnknownArtist replaces an empty artist in output paths.
	UnknownArtist = "Unknown Artist"

	// UnknownAlbum replaces an empty album in output paths.
	UnknownAlbum = "Unknown Album"
)

// LibraryName derives the library directory name from the playlist name
// (or FavoritesLibrary) and the session flags.
//
//	LibraryName("favorites", true, Transcode(128)) // "favorites_flat_mp3"
//	LibraryName("Road: Trip", false, Passthrough()) // "Road Trip"
func LibraryName(source string, flat bool, mode OutputMode) string {
	name := ioutils.SanitizeFileName(source)
	if name == "" {
		name = FavoritesLibrary
	}
	if flat {
		name += "_flat"
	}
	if mode.Transcoding() {
		name += "_mp3"
	}
	return name
}

// Layout derives every artifact path of a session.
//
// All paths are pure functions of the track and the layout fields, so the
// file system can act as the record of finished work.
type Layout struct {
	// Root is the output directory.
	Root string

	// Library is the library directory name, see LibraryName.
	Library string

	// Flat puts all tracks directly into the library directory.
	Flat bool

	// Mode decides the raw audio key and the output suffix.
	Mode OutputMode

	// CoverWidth is the width of resized covers in pixels.
	CoverWidth int
}

// AudioCacheDir returns the raw audio cache directory.
func (l Layout) AudioCacheDir() string {
	return filepath.Join(l.Root, AudioCacheDir)
}

// CoverCacheDir returns the cover cache directory.
func (l Layout) CoverCacheDir() string {
	return filepath.Join(l.Root, CoverCacheDir)
}

// LibraryDir returns the directory holding the final files.
func (l Layout) LibraryDir() string {
	return filepath.Join(l.Root, l.Library)
}

// RawAudioPath returns <root>/.mp3/<id>.<suffix>, or <id>_<bitrate>.mp3 when
// transcoding.
func (l Layout) RawAudioPath(t Track) string {
	name := cacheKey(t)
	if l.Mode.Transcoding() {
		name += "_" + strconv.FormatUint(uint64(l.Mode.Bitrate), 10)
	}
	return filepath.Join(l.AudioCacheDir(), name+"."+l.Mode.Suffix(t.Suffix))
}

// RawCoverPath returns <root>/.cover/<id>.orig.
func (l Layout) RawCoverPath(t Track) string {
	return filepath.Join(l.CoverCacheDir(), cacheKey(t)+".orig")
}

// ResizedCoverPath returns <root>/.cover/<id>_<width>.jpeg.
func (l Layout) ResizedCoverPath(t Track) string {
	return filepath.Join(l.CoverCacheDir(), fmt.Sprintf("%s_%d.jpeg", cacheKey(t), l.CoverWidth))
}

// AlbumDir returns the directory the final file lives in: the library
// directory when flat, <library>/<artist>/<album> otherwise.
func (l Layout) AlbumDir(t Track) string {
	if l.Flat {
		return l.LibraryDir()
	}
	return filepath.Join(l.LibraryDir(), artistDir(t), albumDir(t))
}

// AlbumCoverPath returns the folder cover path, or "" for flat layouts.
func (l Layout) AlbumCoverPath(t Track) string {
	if l.Flat {
		return ""
	}
	return filepath.Join(l.AlbumDir(t), AlbumCoverName)
}

// FinalPath returns the output file of t.
//
// Nested: <library>/san(artist)/san(album)/san("NNN Title.suffix")
// Flat:   <library>/san("artist album NNN Title.suffix")
func (l Layout) FinalPath(t Track) string {
	return filepath.Join(l.AlbumDir(t), l.FileName(t))
}

// FileName returns the sanitized base name of the final file.
func (l Layout) FileName(t Track) string {
	name := t.DisplayTitle() + "." + l.Mode.Suffix(t.Suffix)
	if t.Number != nil {
		name = fmt.Sprintf("%03d %s", *t.Number, name)
	}
	if l.Flat {
		name = artistOf(t) + " " + albumOf(t) + " " + name
	}
	return ioutils.SanitizeFileName(name)
}

// RelativePath returns FinalPath relative to the library directory, for
// playlist entries.
func (l Layout) RelativePath(t Track) string {
	if l.Flat {
		return l.FileName(t)
	}
	return filepath.Join(artistDir(t), albumDir(t), l.FileName(t))
}

func cacheKey(t Track) string {
	if key := ioutils.SanitizeFileName(t.ID); key != "" {
		return key
	}
	return "_"
}

// artistDir is the sanitized artist segment of nested paths. A name that
// sanitizes to nothing ("...", "???") would collapse the path one level up.
func artistDir(t Track) string {
	if name := ioutils.SanitizeFileName(artistOf(t)); name != "" {
		return name
	}
	return UnknownArtist
}

func albumDir(t Track) string {
	if name := ioutils.SanitizeFileName(albumOf(t)); name != "" {
		return name
	}
	return UnknownAlbum
}

func artistOf(t Track) string {
	if t.Artist == "" {
		return UnknownArtist
	}
	return t.Artist
}

func albumOf(t Track) string {
	if t.Album == "" {
		return UnknownAlbum
	}
	return t.Album
}
