package model

import "strings"

// Action records a processing step that actually ran for a track.
type Action int

const (
	// Downloaded means the raw audio was fetched from the server.
	Downloaded Action = iota

	// CoverDownloaded means the cover was fetched from the server.
	CoverDownloaded

	// CoverExtracted means the cover was demuxed from the raw audio.
	CoverExtracted

	// CoverConverted means the raw cover was resized and recompressed.
	CoverConverted

	// CoverEmbedded means the cover was muxed into the final file.
	CoverEmbedded

	// Converted means the audio was transcoded to MP3.
	Converted
)

var actionNames = map[Action]string{
	Downloaded:      "downloaded",
	CoverDownloaded: "cover downloaded",
	CoverExtracted:  "cover extracted",
	CoverConverted:  "cover converted",
	CoverEmbedded:   "cover embedded",
	Converted:       "converted",
}

// String returns the human readable name used in report lines.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Actions is the ordered list of steps taken for one track, in execution
// order.
type Actions []Action

// NothingToDo is how an empty Actions list is reported.
const NothingToDo = "nothing to do"

// String joins the action names with ", " or returns NothingToDo.
func (as Actions) String() string {
	if len(as) == 0 {
		return NothingToDo
	}
	names := make([]string, len(as))
	for i, a := range as {
		names[i] = a.String()
	}
	return strings.Join(names, ", ")
}

// Contains reports whether a is in the list.
func (as Actions) Contains(a Action) bool {
	for _, x := range as {
		if x == a {
			return true
		}
	}
	return false
}
