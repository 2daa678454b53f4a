package model

import (
	"path/filepath"
	"testing"
)

func testLayout(flat bool, mode OutputMode) Layout {
	return Layout{
		Root:       "/music",
		Library:    LibraryName(FavoritesLibrary, flat, mode),
		Flat:       flat,
		Mode:       mode,
		CoverWidth: 500,
	}
}

func TestLayout_FinalPath(t *testing.T) {
	track := Track{ID: "tr-1", Title: "Song", Artist: "A/C", Album: "Hits", Number: TrackNumber(3), Suffix: "flac"}

	tests := []struct {
		name string
		flat bool
		mode OutputMode
		want string
	}{
		{"nested", false, Passthrough(), "/music/favorites/AC/Hits/003 Song.flac"},
		{"flat", true, Passthrough(), "/music/favorites_flat/AC Hits 003 Song.flac"},
		{"nested mp3", false, Transcode(128), "/music/favorites_mp3/AC/Hits/003 Song.mp3"},
		{"flat mp3", true, Transcode(128), "/music/favorites_flat_mp3/AC Hits 003 Song.mp3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := testLayout(tt.flat, tt.mode).FinalPath(track)
			if got != filepath.FromSlash(tt.want) {
				t.Errorf("FinalPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayout_TranscodeForcesSuffix(t *testing.T) {
	track := Track{ID: "o1", Title: "Tune", Artist: "X", Album: "Y", Suffix: "opus"}
	l := testLayout(false, Transcode(128))

	if got := filepath.Ext(l.FinalPath(track)); got != ".mp3" {
		t.Errorf("final suffix = %q, want .mp3", got)
	}
	if got := filepath.Base(l.RawAudioPath(track)); got != "o1_128.mp3" {
		t.Errorf("raw audio = %q, want o1_128.mp3", got)
	}
}

func TestLayout_CachePaths(t *testing.T) {
	track := Track{ID: "ab/c", Suffix: "FLAC"}
	l := testLayout(false, Passthrough())

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"raw audio", l.RawAudioPath(track), "/music/.mp3/abc.flac"},
		{"raw cover", l.RawCoverPath(track), "/music/.cover/abc.orig"},
		{"resized cover", l.ResizedCoverPath(track), "/music/.cover/abc_500.jpeg"},
	}
	for _, tt := range tests {
		if tt.got != filepath.FromSlash(tt.want) {
			t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestLayout_MissingMetadata(t *testing.T) {
	track := Track{ID: "id9", Suffix: "mp3"}
	l := testLayout(false, Passthrough())

	want := filepath.FromSlash("/music/favorites/Unknown Artist/Unknown Album/id9.mp3")
	if got := l.FinalPath(track); got != want {
		t.Errorf("FinalPath() = %q, want %q", got, want)
	}
}

func TestLayout_NamesSanitizedToNothing(t *testing.T) {
	track := Track{ID: "7", Title: "Song", Artist: "...", Album: "???", Suffix: "flac", Number: TrackNumber(2)}
	l := testLayout(false, Passthrough())

	want := filepath.FromSlash("/music/favorites/Unknown Artist/Unknown Album/002 Song.flac")
	if got := l.FinalPath(track); got != want {
		t.Errorf("FinalPath() = %q, want %q", got, want)
	}
	wantRel := filepath.FromSlash("Unknown Artist/Unknown Album/002 Song.flac")
	if got := l.RelativePath(track); got != wantRel {
		t.Errorf("RelativePath() = %q, want %q", got, wantRel)
	}
}

func TestLayout_AlbumCoverPath(t *testing.T) {
	track := Track{ID: "1", Artist: "Art", Album: "Alb"}

	if got := testLayout(true, Passthrough()).AlbumCoverPath(track); got != "" {
		t.Errorf("flat AlbumCoverPath() = %q, want empty", got)
	}
	want := filepath.FromSlash("/music/favorites/Art/Alb/cover.jpeg")
	if got := testLayout(false, Passthrough()).AlbumCoverPath(track); got != want {
		t.Errorf("AlbumCoverPath() = %q, want %q", got, want)
	}
}

func TestLibraryName(t *testing.T) {
	tests := []struct {
		source string
		flat   bool
		mode   OutputMode
		want   string
	}{
		{"favorites", false, Passthrough(), "favorites"},
		{"favorites", true, Transcode(128), "favorites_flat_mp3"},
		{"Road: Trip", false, Transcode(320), "Road Trip_mp3"},
		{"", false, Passthrough(), "favorites"},
	}
	for _, tt := range tests {
		if got := LibraryName(tt.source, tt.flat, tt.mode); got != tt.want {
			t.Errorf("LibraryName(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestActions_String(t *testing.T) {
	if got := Actions(nil).String(); got != "nothing to do" {
		t.Errorf("empty = %q", got)
	}
	got := Actions{Downloaded, CoverDownloaded, CoverConverted, CoverEmbedded}.String()
	want := "downloaded, cover downloaded, cover converted, cover embedded"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestOutcome_Classification(t *testing.T) {
	if !(Outcome{}).Skipped() {
		t.Error("empty outcome should be skipped")
	}
	if (Outcome{Actions: Actions{Converted}}).Skipped() {
		t.Error("outcome with actions is not skipped")
	}
	if !(Outcome{Err: errTest}).Failed() {
		t.Error("outcome with error should fail")
	}
}

func TestParseCoverStrategy(t *testing.T) {
	for in, want := range map[string]CoverStrategy{"": CoverRemote, "remote": CoverRemote, "Embedded": CoverEmbeddedExtraction} {
		got, err := ParseCoverStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseCoverStrategy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseCoverStrategy("both"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestPlaylistFormat(t *testing.T) {
	f, err := ParsePlaylistFormat(".PLS")
	if err != nil || f != PlaylistFormatPLS {
		t.Fatalf("ParsePlaylistFormat = %v, %v", f, err)
	}
	l := testLayout(false, Passthrough())
	want := filepath.FromSlash("/music/favorites/favorites.pls")
	if got := l.PlaylistPath(f); got != want {
		t.Errorf("PlaylistPath() = %q, want %q", got, want)
	}
}

type testError string

func (e testError) Error() string { return string(e) }

const errTest = testError("boom")
