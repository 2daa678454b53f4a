// Package pipeline turns one remote track into one local file.
//
// The stages run in a fixed order:
//
//	download -> cover acquisition -> cover transform -> mux
//
// Each stage first checks whether its output already exists and does
// nothing if so. Outputs are written to a temporary sibling and renamed into
// place, so an interrupted run never leaves a partial file under a final
// name. The collaborators (server, ffmpeg, image resizer, tagger) are
// interfaces; see the mocks package for test doubles.
package pipeline
