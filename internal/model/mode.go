package model

import (
	"fmt"
	"strings"
)

// CoverStrategy selects where covers come from. It is decided once per
// session.
type CoverStrategy int

const (
	// CoverRemote asks the server for a scaled cover.
	CoverRemote CoverStrategy = iota

	// CoverEmbeddedExtraction extracts the picture stream from the downloaded audio.
	CoverEmbeddedExtraction
)

// String returns the configuration name of the strategy.
func (c CoverStrategy) String() string {
	switch c {
	case CoverEmbeddedExtraction:
		return "embedded"
	default:
		return "remote"
	}
}

// ParseCoverStrategy parses "remote" or "embedded" (case-insensitive).
// An empty string yields CoverRemote.
func ParseCoverStrategy(s string) (CoverStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "remote":
		return CoverRemote, nil
	case "embedded":
		return CoverEmbeddedExtraction, nil
	default:
		return CoverRemote, fmt.Errorf("unknown cover strategy %q (want remote or embedded)", s)
	}
}

// TranscodeSuffix is the suffix of every transcoded output.
const TranscodeSuffix = "mp3"

// OutputMode selects between keeping the source format and transcoding to
// MP3. A zero Bitrate means passthrough.
type OutputMode struct {
	// Bitrate is the MP3 bitrate in kbps.
	Bitrate uint
}

// Passthrough keeps the source format.
func Passthrough() OutputMode {
	return OutputMode{}
}

// Transcode converts to MP3 at bitrate kbps.
func Transcode(bitrate uint) OutputMode {
	return OutputMode{Bitrate: bitrate}
}

// Transcoding reports whether outputs are converted to MP3.
func (m OutputMode) Transcoding() bool {
	return m.Bitrate > 0
}

// Suffix returns the effective output suffix for a source suffix.
func (m OutputMode) Suffix(source string) string {
	if m.Transcoding() {
		return TranscodeSuffix
	}
	if source == "" {
		return TranscodeSuffix
	}
	return strings.ToLower(source)
}

func (m OutputMode) String() string {
	if m.Transcoding() {
		return fmt.Sprintf("mp3 %dk", m.Bitrate)
	}
	return "original"
}
