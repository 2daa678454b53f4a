package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/koriwi/rocksonic/internal/download"
	"github.com/koriwi/rocksonic/internal/model"
	"github.com/koriwi/rocksonic/internal/subsonic"
)

//go:embed sample_config.toml
var sampleConfig string

// PasswordEnv overrides server.password when set.
const PasswordEnv = "ROCKSONIC_PASSWORD"

// Server holds the Subsonic connection settings.
type Server struct {
	Host              string  `toml:"host"`
	Username          string  `toml:"username"`
	Password          string  `toml:"password"`
	LegacyAuth        bool    `toml:"legacy_auth"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxRetries        int     `toml:"max_retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Library holds what to sync and how to lay it out.
type Library struct {
	OutputDir      string `toml:"output_dir"`
	Playlist       string `toml:"playlist"` // playlist id or "favorites"
	Flat           bool   `toml:"flat"`
	MP3Bitrate     uint   `toml:"mp3_bitrate"` // 0 keeps the source format
	CoverSize      int    `toml:"cover_size"`
	Cover          string `toml:"cover"` // remote, embedded
	AlbumCover     bool   `toml:"album_cover"`
	Threads        int    `toml:"threads"`
	CreatePlaylist bool   `toml:"create_playlist"`
	PlaylistFormat string `toml:"playlist_format"` // m3u, pls, wpl, zpl
	M3UExtended    bool   `toml:"m3u_extended"`
	ModifyTags     bool   `toml:"modify_tags"`
}

// Media holds the external tool settings.
type Media struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
	Probe   string `toml:"probe"` // ffprobe, tags
}

// Daemon holds the removable-device watch settings.
type Daemon struct {
	WatchDir            string `toml:"watch_dir"`
	Marker              string `toml:"marker"`
	OutputSubdir        string `toml:"output_subdir"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	LockPath            string `toml:"lock_path"`
}

// Logging holds the logger settings.
type Logging struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Settings holds all configuration options.
type Settings struct {
	Server  Server  `toml:"server"`
	Library Library `toml:"library"`
	Media   Media   `toml:"media"`
	Daemon  Daemon  `toml:"daemon"`
	Logging Logging `toml:"logging"`
}

// Probe backends.
const (
	ProbeFFprobe = "ffprobe"
	ProbeTags    = "tags"
)

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		Server: Server{
			TimeoutSeconds: 60,
			MaxRetries:     10,
		},
		Library: Library{
			OutputDir:      "rocksonic_songs",
			Playlist:       model.FavoritesLibrary,
			CoverSize:      500,
			Cover:          model.CoverRemote.String(),
			Threads:        download.DefaultWorkers,
			PlaylistFormat: "m3u",
			M3UExtended:    true,
			ModifyTags:     true,
		},
		Media: Media{
			FFmpeg:  "ffmpeg",
			FFprobe: "ffprobe",
			Probe:   ProbeFFprobe,
		},
		Daemon: Daemon{
			WatchDir:            "/media",
			Marker:              ".rockbox",
			OutputSubdir:        "Music",
			PollIntervalSeconds: 5,
			LockPath:            filepath.Join(os.TempDir(), "rocksonic.lock"),
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/rocksonic/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if base, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "rocksonic", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "rocksonic", "config.toml"), nil
}

// Load reads settings from a TOML file on top of the defaults. A missing
// file yields the defaults. The result is not validated, so that flags can
// fill in what the file leaves out.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if password, ok := os.LookupEnv(PasswordEnv); ok && password != "" {
		settings.Server.Password = password
	}
	return settings, nil
}

// Save writes settings to a TOML file.
func (s *Settings) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(s)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// CreateSample writes the commented sample configuration to path. It
// refuses to overwrite an existing file.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("create config: %w", err)
	}
	if _, err := f.WriteString(sampleConfig); err != nil {
		f.Close()
		return fmt.Errorf("write config: %w", err)
	}
	return f.Close()
}

// Validate reports every problem of the settings at once.
func (s *Settings) Validate() error {
	var errs []error

	if strings.TrimSpace(s.Server.Host) == "" {
		errs = append(errs, errors.New("server.host is required"))
	}
	if strings.TrimSpace(s.Server.Username) == "" {
		errs = append(errs, errors.New("server.username is required"))
	}
	if s.Server.Password == "" {
		errs = append(errs, fmt.Errorf("server.password is required (or set %s)", PasswordEnv))
	}
	if s.Server.TimeoutSeconds <= 0 {
		errs = append(errs, errors.New("server.timeout_seconds must be positive"))
	}
	if s.Server.MaxRetries < 0 {
		errs = append(errs, errors.New("server.max_retries must not be negative"))
	}
	if s.Server.RequestsPerSecond < 0 {
		errs = append(errs, errors.New("server.requests_per_second must not be negative"))
	}

	if strings.TrimSpace(s.Library.OutputDir) == "" {
		errs = append(errs, errors.New("library.output_dir must be set"))
	}
	if s.Library.CoverSize <= 0 {
		errs = append(errs, errors.New("library.cover_size must be positive"))
	}
	if s.Library.Threads <= 0 {
		errs = append(errs, errors.New("library.threads must be positive"))
	}
	if _, err := model.ParseCoverStrategy(s.Library.Cover); err != nil {
		errs = append(errs, fmt.Errorf("library.cover: %w", err))
	}
	if _, err := model.ParsePlaylistFormat(s.Library.PlaylistFormat); err != nil {
		errs = append(errs, fmt.Errorf("library.playlist_format: %w", err))
	}

	switch s.Media.Probe {
	case ProbeFFprobe, ProbeTags:
	default:
		errs = append(errs, fmt.Errorf("media.probe must be %q or %q", ProbeFFprobe, ProbeTags))
	}

	if _, err := log.ParseLevel(s.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

// ValidateDaemon checks the settings only the daemon needs.
func (s *Settings) ValidateDaemon() error {
	var errs []error
	if strings.TrimSpace(s.Daemon.WatchDir) == "" {
		errs = append(errs, errors.New("daemon.watch_dir must be set"))
	}
	if strings.TrimSpace(s.Daemon.Marker) == "" {
		errs = append(errs, errors.New("daemon.marker must be set"))
	}
	if s.Daemon.PollIntervalSeconds <= 0 {
		errs = append(errs, errors.New("daemon.poll_interval_seconds must be positive"))
	}
	if strings.TrimSpace(s.Daemon.LockPath) == "" {
		errs = append(errs, errors.New("daemon.lock_path must be set"))
	}
	return errors.Join(errs...)
}

// SessionOptions converts the library settings for download.NewSession.
// Call Validate first; unparsable values fall back to defaults.
func (s *Settings) SessionOptions() download.Options {
	cover, err := model.ParseCoverStrategy(s.Library.Cover)
	if err != nil {
		cover = model.CoverRemote
	}
	format, err := model.ParsePlaylistFormat(s.Library.PlaylistFormat)
	if err != nil {
		format = model.PlaylistFormatM3U
	}

	mode := model.Passthrough()
	if s.Library.MP3Bitrate > 0 {
		mode = model.Transcode(s.Library.MP3Bitrate)
	}

	return download.Options{
		Root:           s.Library.OutputDir,
		Playlist:       s.Library.Playlist,
		Flat:           s.Library.Flat,
		Mode:           mode,
		Cover:          cover,
		CoverWidth:     s.Library.CoverSize,
		Workers:        s.Library.Threads,
		AlbumCover:     s.Library.AlbumCover,
		CreatePlaylist: s.Library.CreatePlaylist,
		PlaylistFormat: format,
		M3UExtended:    s.Library.M3UExtended,
	}
}

// ClientOptions converts the server settings for subsonic.Connect.
func (s *Settings) ClientOptions(logger *log.Logger) subsonic.Options {
	return subsonic.Options{
		Host:              s.Server.Host,
		Username:          s.Server.Username,
		Password:          s.Server.Password,
		LegacyAuth:        s.Server.LegacyAuth,
		Timeout:           time.Duration(s.Server.TimeoutSeconds) * time.Second,
		MaxRetries:        s.Server.MaxRetries,
		RequestsPerSecond: s.Server.RequestsPerSecond,
		Logger:            logger,
	}
}

// PollInterval returns the daemon poll interval.
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.Daemon.PollIntervalSeconds) * time.Second
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}
