// Package media drives ffmpeg and ffprobe.
//
// Work is described declaratively with Operation and executed by FFmpeg.Run;
// a non-zero exit becomes an *ExitError with the exit code and the trimmed
// output. Probe lists streams so callers can tell whether an audio file
// carries a cover picture.
package media
