// Package model defines the core data structures of rocksonic.
//
// # Track
//
// Track is the read-only descriptor of one remote song. Outcome pairs a Track
// with the Actions the pipeline took for it, or with the error that stopped
// it.
//
// # Modes
//
// CoverStrategy and OutputMode are decided once per session and threaded
// through the pipeline unchanged:
//
//	strategy, _ := model.ParseCoverStrategy("embedded")
//	mode := model.Transcode(128) // forces the ".mp3" suffix
//
// # Layout
//
// Layout turns a Track into every path the pipeline touches. Existence of
// these paths is the only state rocksonic keeps:
//
//	layout := model.Layout{
//	    Root:       "/music",
//	    Library:    model.LibraryName("favorites", false, mode),
//	    Mode:       mode,
//	    CoverWidth: 500,
//	}
//	layout.RawAudioPath(track)     // /music/.mp3/<id>_128.mp3
//	layout.ResizedCoverPath(track) // /music/.cover/<id>_500.jpeg
//	layout.FinalPath(track)        // /music/favorites_mp3/<artist>/<album>/003 Song.mp3
package model
