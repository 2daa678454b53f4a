// Package download schedules the per-track pipeline over a library.
//
// # Session
//
// A Session is one sync run: it resolves the tracks of the favorites or a
// playlist, prepares the output tree and hands every track to a Manager.
//
//	session := download.NewSession(client, ffmpeg, images, tagger, download.Options{
//	    Root:    "rocksonic_songs",
//	    Workers: 5,
//	}, func(event download.ProgressEvent) {
//	    fmt.Println(event.Message)
//	}, logger)
//
//	result, err := session.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Concurrency
//
// The Manager runs tracks on a Pool of fixed width. A failing track never
// stops the batch; every track produces exactly one report line.
//
// # Progress Tracking
//
// Report lines and status messages arrive as ProgressEvent values:
//
//	type ProgressEvent struct {
//	    Message string
//	    Level   ProgressLevel // Info, Verbose, Warning, Error, Success
//	    Outcome *model.Outcome
//	}
//
// Report lines read "n/total title actions" for successes and
// "n/total error" for failures, where n counts completions.
package download
