package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koriwi/rocksonic/internal/model"
)

func validSettings() *Settings {
	s := DefaultSettings()
	s.Server.Host = "https://music.example.com/rest"
	s.Server.Username = "me"
	s.Server.Password = "secret"
	return s
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv(PasswordEnv, "")

	got, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), got)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
host = "http://localhost:4533/rest"
username = "alice"

[library]
flat = true
mp3_bitrate = 192
`), 0644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4533/rest", got.Server.Host)
	assert.Equal(t, "alice", got.Server.Username)
	assert.True(t, got.Library.Flat)
	assert.Equal(t, uint(192), got.Library.MP3Bitrate)
	assert.Equal(t, 500, got.Library.CoverSize, "unset keys keep their defaults")
	assert.Equal(t, 60, got.Server.TimeoutSeconds)
}

func TestLoad_PasswordFromEnvironment(t *testing.T) {
	t.Setenv(PasswordEnv, "from-env")

	got, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Equal(t, "from-env", got.Server.Password)
}

func TestLoad_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[server\nhost = "), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestSave_RoundTrip(t *testing.T) {
	t.Setenv(PasswordEnv, "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	want := validSettings()
	want.Library.Cover = "embedded"

	require.NoError(t, want.Save(path))
	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSampleConfig_ParsesAndValidates(t *testing.T) {
	s := DefaultSettings()
	require.NoError(t, toml.Unmarshal([]byte(SampleConfig()), s))

	s.Server.Password = "secret"
	assert.NoError(t, s.Validate())
	assert.NoError(t, s.ValidateDaemon())
}

func TestCreateSample_DoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rocksonic", "config.toml")

	require.NoError(t, CreateSample(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, SampleConfig(), string(data))

	assert.Error(t, CreateSample(path))
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	s := DefaultSettings()
	s.Library.Threads = 0
	s.Library.Cover = "somewhere"
	s.Media.Probe = "guess"

	err := s.Validate()
	require.Error(t, err)
	for _, want := range []string{
		"server.host is required",
		"server.username is required",
		"server.password is required",
		"library.threads must be positive",
		"library.cover",
		"media.probe",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_Valid(t *testing.T) {
	assert.NoError(t, validSettings().Validate())
}

func TestDefaultPath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "rocksonic", "config.toml"), path)
}

func TestSessionOptions(t *testing.T) {
	s := validSettings()
	s.Library.MP3Bitrate = 128
	s.Library.Flat = true
	s.Library.Cover = "embedded"
	s.Library.PlaylistFormat = "pls"
	s.Library.Threads = 8

	opts := s.SessionOptions()
	assert.Equal(t, model.Transcode(128), opts.Mode)
	assert.True(t, opts.Flat)
	assert.Equal(t, model.CoverEmbeddedExtraction, opts.Cover)
	assert.Equal(t, model.PlaylistFormatPLS, opts.PlaylistFormat)
	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, 500, opts.CoverWidth)
	assert.Equal(t, model.FavoritesLibrary, opts.Playlist)
}

func TestClientOptions(t *testing.T) {
	s := validSettings()
	s.Server.TimeoutSeconds = 15
	s.Server.RequestsPerSecond = 4

	opts := s.ClientOptions(nil)
	assert.Equal(t, "https://music.example.com/rest", opts.Host)
	assert.Equal(t, 15*time.Second, opts.Timeout)
	assert.Equal(t, 10, opts.MaxRetries)
	assert.Equal(t, 4.0, opts.RequestsPerSecond)
}
