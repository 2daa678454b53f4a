// Package audio writes ID3 tags into MP3 outputs and renders library
// playlist files.
//
// # ID3 Tagging
//
// Tagger fills the title, artist, album and track number frames of files
// produced by ffmpeg:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.Apply(path, track)
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(model.PlaylistFormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("favorites", entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
