package media

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Prober inspects the streams of a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (ProbeResult, error)
}

// ProbeResult is the stream list of a media file.
type ProbeResult struct {
	Streams []Stream `json:"streams"`
}

// Stream describes one stream of a container.
type Stream struct {
	Index       int         `json:"index"`
	CodecName   string      `json:"codec_name"`
	CodecType   string      `json:"codec_type"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Disposition Disposition `json:"disposition"`
}

// Disposition carries the stream flags rocksonic cares about.
type Disposition struct {
	AttachedPic int `json:"attached_pic"`
}

// HasCover reports whether the file carries a picture stream.
func (r ProbeResult) HasCover() bool {
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "video") {
			return true
		}
	}
	return false
}

func parseProbe(output []byte) (ProbeResult, error) {
	var result ProbeResult
	if err := json.Unmarshal(output, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}
