package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koriwi/rocksonic/internal/config"
	"github.com/koriwi/rocksonic/internal/download"
	"github.com/koriwi/rocksonic/internal/subsonic"
)

const envelope = `<?xml version="1.0" encoding="UTF-8"?>
<subsonic-response xmlns="http://subsonic.org/restapi" status="ok" version="1.16.1">%s</subsonic-response>`

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.PasswordEnv, "")

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSyncFlags_ApplyOnlyChanged(t *testing.T) {
	var flags syncFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.register(fs)
	require.NoError(t, fs.Parse([]string{"--flat", "--mp3", "192", "--playlist", "pl-7"}))

	settings := config.DefaultSettings()
	settings.Library.CoverSize = 300
	settings.Library.Threads = 9
	flags.apply(fs, settings)

	assert.True(t, settings.Library.Flat)
	assert.Equal(t, uint(192), settings.Library.MP3Bitrate)
	assert.Equal(t, "pl-7", settings.Library.Playlist)
	assert.Equal(t, 300, settings.Library.CoverSize, "file values survive unset flags")
	assert.Equal(t, 9, settings.Library.Threads)
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rocksonic", "config.toml")

	out, err := runCommand(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote sample configuration")
	assert.FileExists(t, path)

	_, err = runCommand(t, "config", "init", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runCommand(t, "config", "init", "--config", path, "--overwrite")
	assert.NoError(t, err)
}

func TestConfigValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[library]\nthreads = 0\n"), 0644))

	_, err := runCommand(t, "config", "validate", "--config", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.host is required")
	assert.Contains(t, err.Error(), "library.threads must be positive")
}

func TestPlaylistsCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		switch filepath.Base(r.URL.Path) {
		case "ping":
			_, _ = io.WriteString(w, strings.Replace(envelope, "%s", "", 1))
		case "getPlaylists":
			_, _ = io.WriteString(w, strings.Replace(envelope, "%s", `<playlists><playlist id="pl-1" name="Road Trip" owner="alice" songCount="12" duration="2700"/></playlists>`, 1))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	out, err := runCommand(t, "playlists",
		"--config", filepath.Join(t.TempDir(), "none.toml"),
		"--host", srv.URL+"/rest", "-u", "alice", "-p", "sesame")
	require.NoError(t, err)

	for _, want := range []string{"favorites", "pl-1", "Road Trip", "alice", "12", "45m0s"} {
		assert.Contains(t, out, want)
	}
}

func TestSync_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/xml")
		_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<subsonic-response status="failed" version="1.16.1"><error code="40" message="Wrong username or password"/></subsonic-response>`)
	}))
	defer srv.Close()

	_, err := runCommand(t,
		"--config", filepath.Join(t.TempDir(), "none.toml"),
		"--host", srv.URL, "-u", "alice", "-p", "wrong",
		t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, subsonic.ErrConnection))
}

func TestSync_InvalidSettings(t *testing.T) {
	_, err := runCommand(t, "--config", filepath.Join(t.TempDir(), "none.toml"), "--cover", "sideways")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "library.cover")
}

func TestReportPrinter(t *testing.T) {
	var out bytes.Buffer
	p := newReportPrinter(&out, false, false)

	p.print(download.ProgressEvent{Message: "Fetching favorites", Level: download.LevelVerbose})
	p.print(download.ProgressEvent{Message: "1/2 Song downloaded", Level: download.LevelSuccess})
	p.print(download.ProgressEvent{Message: "2/2 Other (2): mux: exit 1", Level: download.LevelError})

	assert.Equal(t, "1/2 Song downloaded\n2/2 Other (2): mux: exit 1\n", out.String())
	assert.False(t, shouldColorize(&out))
}

func TestRenderSummary(t *testing.T) {
	table := renderSummary(&download.Result{
		Library:      "favorites_flat",
		Summary:      download.Summary{Total: 4, Downloaded: 3, Covers: 2, Embedded: 2, Skipped: 1},
		PlaylistPath: "songs/favorites_flat/favorites_flat.m3u",
	})

	for _, want := range []string{"favorites_flat", "Tracks", "Downloaded", "Up to date", "Failed", "favorites_flat.m3u"} {
		assert.Contains(t, table, want)
	}
}
