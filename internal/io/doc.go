// Package ioutils provides file system and image processing utilities.
//
// This package contains functions for:
//   - Existence checks (the sync idempotency ledger)
//   - Atomic writes through temporary sibling files
//   - Linking and copying files
//   - Filename sanitization for cross-platform compatibility
//   - Directory creation
//   - Cover image resizing and JPEG recompression
//
// # Idempotency
//
// rocksonic keeps no database. Whether an artifact exists on disk is the only
// record of work already done, so every artifact is created atomically:
//
//	err := ioutils.WriteAtomic(path, func(tmp string) error {
//	    return produce(tmp)
//	})
//
// # Filename Sanitization
//
// Use SanitizeFileName to remove invalid characters from filenames:
//
//	safe := ioutils.SanitizeFileName("Song: Part 1/2") // Returns "Song Part 12"
//
// # Image Processing
//
// The ImageService handles cover art manipulation:
//
//	svc := ioutils.NewImageService()
//	err := svc.ResizeFile(ctx, "/music/.cover/id.orig", "/music/.cover/id_500.jpeg", 500)
package ioutils
