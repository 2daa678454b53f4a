package media

import (
	"context"
	"errors"
	"os"

	"github.com/dhowden/tag"
)

// TagProber probes by reading the file's tags instead of running ffprobe.
// It only distinguishes "audio" from "audio with picture", which is all the
// cover stage needs.
type TagProber struct{}

// Probe reports one audio stream, plus a video stream when the tags carry a
// picture. Files without recognizable tags have no cover.
func (TagProber) Probe(ctx context.Context, path string) (ProbeResult, error) {
	if err := ctx.Err(); err != nil {
		return ProbeResult{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return ProbeResult{}, err
	}
	defer f.Close()

	result := ProbeResult{Streams: []Stream{{Index: 0, CodecType: "audio"}}}

	m, err := tag.ReadFrom(f)
	if errors.Is(err, tag.ErrNoTagsFound) {
		return result, nil
	}
	if err != nil {
		return ProbeResult{}, err
	}

	if pic := m.Picture(); pic != nil && len(pic.Data) > 0 {
		result.Streams = append(result.Streams, Stream{
			Index:       1,
			CodecName:   pic.Ext,
			CodecType:   "video",
			Disposition: Disposition{AttachedPic: 1},
		})
	}
	return result, nil
}
