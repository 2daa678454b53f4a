package audio

import (
	"fmt"
	"os"
	"strconv"

	"github.com/bogem/id3v2"

	"github.com/koriwi/rocksonic/internal/model"
)

// TagEditAction defines how to handle individual ID3 tags.
type TagEditAction int

const (
	// TagEmpty removes the frame.
	TagEmpty TagEditAction = iota

	// TagModify writes the value reported by the server.
	TagModify

	// TagDoNotModify leaves whatever ffmpeg copied from the source.
	TagDoNotModify
)

// TagConfig selects what happens to each ID3 frame of an MP3 output.
//
// Example:
//
//	cfg := &TagConfig{
//	    Artist:      TagModify,
//	    AlbumArtist: TagDoNotModify, // keep the source value
//	    Comments:    TagEmpty,
//	}
type TagConfig struct {
	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// TrackNumber controls the TRCK (Track number) frame.
	TrackNumber TagEditAction

	// TrackTitle controls the TIT2 (Title) frame.
	TrackTitle TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig writes every frame from server metadata and keeps
// comments from the source.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		Artist:      TagModify,
		AlbumArtist: TagDoNotModify,
		Album:       TagModify,
		TrackNumber: TagModify,
		TrackTitle:  TagModify,
		Comments:    TagDoNotModify,
	}
}

// Tagger writes ID3 tags to MP3 files produced by ffmpeg.
//
// The attached picture written by the mux step is left untouched.
//
// Example:
//
//	tagger := NewTagger(DefaultTagConfig())
//	if err := tagger.Apply(tmpPath, track); err != nil {
//	    return err
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// Apply writes the track metadata into the MP3 file at path.
//
// Files without an ID3 tag get a fresh ID3v2.3 tag, matching what ffmpeg
// writes with -id3v2_version 3.
func (t *Tagger) Apply(path string, track model.Track) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("open tags: %w", err)
	}
	defer tag.Close()

	if tag.Version() < 4 || tag.Count() == 0 {
		tag.SetVersion(3)
		tag.SetDefaultEncoding(id3v2.EncodingUTF16)
	}

	t.updateStringTags(tag, track)

	if err := tag.Save(); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	return nil
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, track model.Track) {
	enc := tag.DefaultEncoding()

	switch t.config.Artist {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Lead artist/Lead performer/Soloist/Performing group"))
	case TagModify:
		if track.Artist != "" {
			tag.SetArtist(track.Artist)
		}
	}

	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		if track.Artist != "" {
			tag.AddTextFrame("TPE2", enc, track.Artist)
		}
	}

	switch t.config.Album {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Album/Movie/Show title"))
	case TagModify:
		if track.Album != "" {
			tag.SetAlbum(track.Album)
		}
	}

	switch t.config.TrackNumber {
	case TagEmpty:
		tag.DeleteFrames("TRCK")
	case TagModify:
		if track.Number != nil {
			tag.AddTextFrame("TRCK", enc, strconv.FormatUint(uint64(*track.Number), 10))
		}
	}

	switch t.config.TrackTitle {
	case TagEmpty:
		tag.DeleteFrames(tag.CommonID("Title/Songname/Content description"))
	case TagModify:
		tag.SetTitle(track.DisplayTitle())
	}

	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}
}
