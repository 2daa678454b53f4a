package audio

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/koriwi/rocksonic/internal/model"
)

// Entry is one line of a playlist.
type Entry struct {
	// Path is relative to the playlist file and uses forward slashes.
	Path     string
	Title    string
	Artist   string
	Album    string
	Duration int // seconds
}

// NewEntry builds an Entry for track stored at path relative to the
// playlist directory.
func NewEntry(track model.Track, path string) Entry {
	return Entry{
		Path:     filepath.ToSlash(path),
		Title:    track.DisplayTitle(),
		Artist:   track.Artist,
		Album:    track.Album,
		Duration: track.Duration,
	}
}

// PlaylistCreator generates playlist files in various formats.
//
// Example:
//
//	creator := NewPlaylistCreator(model.PlaylistFormatM3U, true)
//	content := creator.CreatePlaylist("favorites", entries)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Artist - Song Title
//	// Artist/Album/003 Song Title.flac
type PlaylistCreator struct {
	format   model.PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// extended only affects M3U output.
func NewPlaylistCreator(format model.PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist renders a playlist called name listing entries in order.
func (p *PlaylistCreator) CreatePlaylist(name string, entries []Entry) string {
	switch p.format {
	case model.PlaylistFormatPLS:
		return p.createPLS(entries)
	case model.PlaylistFormatWPL:
		return p.createSMIL("wpl", "1.0", name, entries, false)
	case model.PlaylistFormatZPL:
		return p.createSMIL("zpl", "2.0", name, entries, true)
	default:
		return p.createM3U(entries)
	}
}

// createM3U generates an M3U playlist.
func (p *PlaylistCreator) createM3U(entries []Entry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", durationOrUnknown(e.Duration), displayName(e))
		}
		sb.WriteString(e.Path + "\n")
	}

	return sb.String()
}

// createPLS generates an INI-style PLS playlist.
func (p *PlaylistCreator) createPLS(entries []Entry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.Path)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, displayName(e))
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, durationOrUnknown(e.Duration))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createSMIL generates the XML formats of Windows Media Player (wpl) and
// Zune (zpl). The zpl variant carries per-entry metadata.
func (p *PlaylistCreator) createSMIL(kind, version, name string, entries []Entry, detailed bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "<?%s version=\"%s\"?>\n", kind, version)
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	fmt.Fprintf(&sb, "    <title>%s</title>\n", escapeXML(name))
	if detailed {
		sb.WriteString("    <meta name=\"Generator\" content=\"rocksonic\"/>\n")
		fmt.Fprintf(&sb, "    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(entries))
	}
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, e := range entries {
		if !detailed {
			fmt.Fprintf(&sb, "      <media src=\"%s\"/>\n", escapeXML(e.Path))
			continue
		}
		fmt.Fprintf(&sb, "      <media src=\"%s\" albumTitle=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(e.Path),
			escapeXML(e.Album),
			escapeXML(e.Title),
			escapeXML(e.Artist),
			e.Duration*1000)
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

func displayName(e Entry) string {
	if e.Artist == "" {
		return e.Title
	}
	return e.Artist + " - " + e.Title
}

// durationOrUnknown maps an unknown duration to -1, the playlist convention.
func durationOrUnknown(seconds int) int {
	if seconds <= 0 {
		return -1
	}
	return seconds
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&apos;",
)

// escapeXML escapes special XML characters in a string.
func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}
