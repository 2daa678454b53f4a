package model

import "fmt"

// Track is one song of the remote library as reported by the server.
//
// Tracks are fetched once per session and never modified afterwards. The
// zero value of every optional field means "unknown":
//
//	track := model.Track{
//	    ID:     "tr-1",
//	    Title:  "Song",
//	    Artist: "A/C",
//	    Album:  "Hits",
//	    Number: model.TrackNumber(3),
//	    Suffix: "flac",
//	}
type Track struct {
	// ID is the opaque server-side identifier, unique within one library.
	ID string

	// Title is the song title.
	Title string

	// Artist is the track artist.
	Artist string

	// Album is the album title.
	Album string

	// Number is the position on the album. Nil when the server has none.
	Number *uint

	// Suffix is the source format extension without the dot ("flac", "opus").
	Suffix string

	// Size is the size of the source file in bytes.
	Size int64

	// CoverArt is the server cover-art identifier. Empty means the track id
	// is used instead.
	CoverArt string

	// Duration is the length in seconds, 0 when unknown.
	Duration int
}

// TrackNumber returns a pointer to n, for building Tracks in literals.
func TrackNumber(n uint) *uint {
	return &n
}

// CoverID returns the identifier used to request the cover art.
func (t Track) CoverID() string {
	if t.CoverArt != "" {
		return t.CoverArt
	}
	return t.ID
}

// DisplayTitle returns the title, or the id when the server sent none.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.ID
}

// String implements fmt.Stringer as "<title> (<id>)".
func (t Track) String() string {
	return fmt.Sprintf("%s (%s)", t.DisplayTitle(), t.ID)
}
