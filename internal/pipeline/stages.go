package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	ioutils "github.com/koriwi/rocksonic/internal/io"
	"github.com/koriwi/rocksonic/internal/media"
	"github.com/koriwi/rocksonic/internal/model"
	"github.com/koriwi/rocksonic/internal/subsonic"
)

// acquire downloads the raw audio into the cache.
func (p *Pipeline) acquire(ctx context.Context, it *item) error {
	path := p.opts.Layout.RawAudioPath(it.track)
	done, err := ioutils.Exists(path)
	if err != nil || done {
		return err
	}

	body, err := p.source.Download(ctx, it.track.ID, p.opts.Layout.Mode.Bitrate)
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := ioutils.WriteStream(path, body); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	it.record(model.Downloaded)
	return nil
}

// acquireCover fills the raw cover cache using the session strategy. A track
// without a cover is not an error; it just skips the cover stages.
func (p *Pipeline) acquireCover(ctx context.Context, it *item) error {
	path := p.opts.Layout.RawCoverPath(it.track)
	done, err := ioutils.Exists(path)
	if err != nil {
		return err
	}
	if done {
		it.hasCover = true
		return nil
	}

	if p.opts.Cover == model.CoverEmbeddedExtraction {
		return p.extractCover(ctx, it, path)
	}
	return p.fetchCover(ctx, it, path)
}

func (p *Pipeline) extractCover(ctx context.Context, it *item, path string) error {
	audio := p.opts.Layout.RawAudioPath(it.track)

	probe, err := p.media.Probe(ctx, audio)
	if err != nil {
		return err
	}
	if !probe.HasCover() {
		return nil
	}

	err = ioutils.WriteAtomic(path, func(tmp string) error {
		return p.media.Run(ctx, media.ExtractCover(audio, tmp))
	})
	if err != nil {
		return err
	}
	it.hasCover = true
	it.record(model.CoverExtracted)
	return nil
}

func (p *Pipeline) fetchCover(ctx context.Context, it *item, path string) error {
	body, err := p.source.CoverArt(ctx, it.track.CoverID(), p.opts.CoverSize)
	if subsonic.IsNotFound(err) {
		p.logger.Debug("no remote cover", "id", it.track.ID)
		return nil
	}
	if err != nil {
		return err
	}
	defer body.Close()

	if _, err := ioutils.WriteStream(path, body); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	it.hasCover = true
	it.record(model.CoverDownloaded)
	return nil
}

// transformCover resizes the raw cover and, when enabled, places it in the
// album directory.
func (p *Pipeline) transformCover(ctx context.Context, it *item) error {
	if !it.hasCover {
		return nil
	}

	layout := p.opts.Layout
	resized := layout.ResizedCoverPath(it.track)
	done, err := ioutils.Exists(resized)
	if err != nil {
		return err
	}
	if !done {
		if err := p.resizer.ResizeFile(ctx, layout.RawCoverPath(it.track), resized, layout.CoverWidth); err != nil {
			return err
		}
		it.record(model.CoverConverted)
	}

	if !p.opts.AlbumCover || layout.Flat {
		return nil
	}
	folderCover := layout.AlbumCoverPath(it.track)
	done, err = ioutils.Exists(folderCover)
	if err != nil || done {
		return err
	}
	if err := ioutils.EnsureDir(filepath.Dir(folderCover)); err != nil {
		return err
	}
	return ioutils.CopyFile(ctx, resized, folderCover)
}

// mux produces the final file: cover attached, plain link of the raw audio,
// or MP3 transcode.
func (p *Pipeline) mux(ctx context.Context, it *item) error {
	layout := p.opts.Layout
	final := layout.FinalPath(it.track)
	done, err := ioutils.Exists(final)
	if err != nil || done {
		return err
	}
	if err := ioutils.EnsureDir(filepath.Dir(final)); err != nil {
		return err
	}

	audio := layout.RawAudioPath(it.track)
	transcoding := layout.Mode.Transcoding()

	switch {
	case it.hasCover:
		cover := layout.ResizedCoverPath(it.track)
		if err := p.produce(ctx, it.track, final, media.Mux(audio, cover, "")); err != nil {
			return err
		}
		it.record(model.CoverEmbedded)
		if transcoding {
			it.record(model.Converted)
		}
	case !transcoding:
		return ioutils.LinkOrCopy(ctx, audio, final)
	default:
		if err := p.produce(ctx, it.track, final, media.TranscodeMP3(audio, "", layout.Mode.Bitrate)); err != nil {
			return err
		}
		it.record(model.Converted)
	}
	return nil
}

// produce runs op into a temporary sibling of final, tags MP3 results and
// renames the file into place.
func (p *Pipeline) produce(ctx context.Context, track model.Track, final string, op media.Operation) error {
	return ioutils.WriteAtomic(final, func(tmp string) error {
		op.Output = tmp
		if err := p.media.Run(ctx, op); err != nil {
			return err
		}
		if p.tagger == nil || p.opts.Layout.Mode.Suffix(track.Suffix) != model.TranscodeSuffix {
			return nil
		}
		if err := p.tagger.Apply(tmp, track); err != nil {
			return fmt.Errorf("tag: %w", err)
		}
		return nil
	})
}
