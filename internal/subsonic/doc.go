// Package subsonic is a small client for the Subsonic REST protocol.
//
// Only the calls rocksonic needs are implemented: ping, getStarred2,
// getPlaylists, getPlaylist, getCoverArt, download and stream.
//
// # Errors
//
// A non-"ok" envelope becomes an *Error carrying the protocol code, the
// server message and the HTTP status. IsNotFound recognizes the "data not
// found" answers used for missing cover art:
//
//	rc, err := client.CoverArt(ctx, track.CoverID(), 500)
//	if subsonic.IsNotFound(err) {
//	    // the track has no cover
//	}
//
// # Retries
//
// Transport errors and 5xx answers are retried with capped exponential
// backoff, up to Options.MaxRetries times. Retries are invisible to callers.
package subsonic
