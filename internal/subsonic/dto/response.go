package dto

import (
	"encoding/xml"

	"github.com/koriwi/rocksonic/internal/model"
)

// StatusOK is the envelope status of a successful call.
const StatusOK = "ok"

// Response is the <subsonic-response> envelope. Only the payload elements
// rocksonic reads are declared.
type Response struct {
	XMLName   xml.Name   `xml:"subsonic-response"`
	Status    string     `xml:"status,attr"`
	Version   string     `xml:"version,attr"`
	Error     *Error     `xml:"error"`
	Starred2  *Starred2  `xml:"starred2"`
	Playlists *Playlists `xml:"playlists"`
	Playlist  *Playlist  `xml:"playlist"`
}

// Error is the <error code message/> block of a failed call.
type Error struct {
	Code    int    `xml:"code,attr"`
	Message string `xml:"message,attr"`
}

// Starred2 lists the starred items of getStarred2.
type Starred2 struct {
	Songs []Child `xml:"song"`
}

// Playlists lists the playlists visible to the user.
type Playlists struct {
	Playlists []PlaylistSummary `xml:"playlist"`
}

// PlaylistSummary is a playlist without its entries.
type PlaylistSummary struct {
	ID        string `xml:"id,attr"`
	Name      string `xml:"name,attr"`
	Owner     string `xml:"owner,attr"`
	Public    bool   `xml:"public,attr"`
	SongCount int    `xml:"songCount,attr"`
	Duration  int    `xml:"duration,attr"`
}

// Playlist is the result of getPlaylist.
type Playlist struct {
	PlaylistSummary
	Entries []Child `xml:"entry"`
}

// Child is a song entry ("child" in the protocol schema).
type Child struct {
	ID       string `xml:"id,attr"`
	Parent   string `xml:"parent,attr"`
	IsDir    bool   `xml:"isDir,attr"`
	IsVideo  bool   `xml:"isVideo,attr"`
	Title    string `xml:"title,attr"`
	Album    string `xml:"album,attr"`
	Artist   string `xml:"artist,attr"`
	Track    uint   `xml:"track,attr"`
	Suffix   string `xml:"suffix,attr"`
	Size     int64  `xml:"size,attr"`
	Duration int    `xml:"duration,attr"`
	CoverArt string `xml:"coverArt,attr"`
}

// ToTrack converts the entry to a model.Track. A track number of 0 means
// the server has none.
func (c Child) ToTrack() model.Track {
	t := model.Track{
		ID:       c.ID,
		Title:    c.Title,
		Artist:   c.Artist,
		Album:    c.Album,
		Suffix:   c.Suffix,
		Size:     c.Size,
		CoverArt: c.CoverArt,
		Duration: c.Duration,
	}
	if c.Track > 0 {
		t.Number = model.TrackNumber(c.Track)
	}
	return t
}

// Tracks converts the song entries, dropping directories and videos.
func Tracks(children []Child) []model.Track {
	tracks := make([]model.Track, 0, len(children))
	for _, c := range children {
		if c.IsDir || c.IsVideo {
			continue
		}
		tracks = append(tracks, c.ToTrack())
	}
	return tracks
}
