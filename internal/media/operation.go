package media

import (
	"errors"
	"fmt"
	"strconv"
)

// OpKind is the kind of ffmpeg operation.
type OpKind int

const (
	// OpMux attaches a cover image to audio without re-encoding either.
	OpMux OpKind = iota

	// OpTranscode re-encodes audio to MP3.
	OpTranscode

	// OpExtractCover copies the first picture stream out of an audio file.
	OpExtractCover
)

func (k OpKind) String() string {
	switch k {
	case OpMux:
		return "mux"
	case OpTranscode:
		return "transcode"
	case OpExtractCover:
		return "extract cover"
	default:
		return "unknown"
	}
}

// Operation is a declarative ffmpeg invocation.
//
// Inputs are ordered: the audio file first, the cover second (OpMux only).
// Output is always overwritten.
type Operation struct {
	Kind    OpKind
	Inputs  []string
	Output  string
	Bitrate uint // kbps, OpTranscode only
}

// Mux builds an OpMux operation.
func Mux(audio, cover, output string) Operation {
	return Operation{Kind: OpMux, Inputs: []string{audio, cover}, Output: output}
}

// TranscodeMP3 builds an OpTranscode operation.
func TranscodeMP3(audio, output string, bitrate uint) Operation {
	return Operation{Kind: OpTranscode, Inputs: []string{audio}, Output: output, Bitrate: bitrate}
}

// ExtractCover builds an OpExtractCover operation.
func ExtractCover(audio, output string) Operation {
	return Operation{Kind: OpExtractCover, Inputs: []string{audio}, Output: output}
}

// Validate checks the operation is complete.
func (op Operation) Validate() error {
	want := 1
	if op.Kind == OpMux {
		want = 2
	}
	switch {
	case op.Kind < OpMux || op.Kind > OpExtractCover:
		return fmt.Errorf("unknown operation kind %d", op.Kind)
	case len(op.Inputs) != want:
		return fmt.Errorf("%s: want %d inputs, got %d", op.Kind, want, len(op.Inputs))
	case op.Output == "":
		return fmt.Errorf("%s: missing output", op.Kind)
	case op.Kind == OpTranscode && op.Bitrate == 0:
		return errors.New("transcode: missing bitrate")
	}
	for _, in := range op.Inputs {
		if in == "" {
			return fmt.Errorf("%s: empty input path", op.Kind)
		}
	}
	return nil
}

var coverMetadata = []string{
	"-metadata:s:v:0", "comment=Cover (front)",
	"-metadata:s:v:0", "title=Album cover",
	"-disposition:v:0", "attached_pic",
}

// Args renders the ffmpeg argument list, without the binary name.
func (op Operation) Args() []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-nostdin"}
	for _, in := range op.Inputs {
		args = append(args, "-i", in)
	}

	switch op.Kind {
	case OpMux:
		args = append(args, "-map", "0:a", "-map", "1:0", "-c:a", "copy", "-c:v", "copy")
		args = append(args, coverMetadata...)
		args = append(args, "-id3v2_version", "3")
	case OpTranscode:
		args = append(args,
			"-map", "0:a",
			"-c:a", "libmp3lame",
			"-b:a", strconv.FormatUint(uint64(op.Bitrate), 10)+"k",
			"-id3v2_version", "3",
		)
	case OpExtractCover:
		args = append(args, "-map", "0:v:0", "-c:v", "copy", "-frames:v", "1", "-update", "1", "-f", "image2")
	}

	return append(args, "-y", op.Output)
}
