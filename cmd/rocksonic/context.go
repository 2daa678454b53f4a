package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	"github.com/koriwi/rocksonic/internal/config"
	"github.com/koriwi/rocksonic/internal/logging"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	stderr       io.Writer

	settingsOnce sync.Once
	settings     *config.Settings
	settingsErr  error
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		stderr:       os.Stderr,
	}
}

// configPath returns --config or the default location.
func (c *commandContext) configPath() (string, error) {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path, nil
		}
	}
	return config.DefaultPath()
}

// ensureSettings loads the configuration file once. Flags are applied by
// the individual commands.
func (c *commandContext) ensureSettings() (*config.Settings, error) {
	c.settingsOnce.Do(func() {
		path, err := c.configPath()
		if err != nil {
			c.settingsErr = err
			return
		}
		settings, err := config.Load(path)
		if err != nil {
			c.settingsErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			settings.Logging.Level = *c.logLevelFlag
		}
		c.settings = settings
	})
	return c.settings, c.settingsErr
}

func (c *commandContext) logger(settings *config.Settings) (*log.Logger, error) {
	logger, err := logging.New(c.stderr, settings.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return logger, nil
}

// syncFlags are the command line overrides of the library settings.
type syncFlags struct {
	host           string
	username       string
	password       string
	legacyAuth     bool
	mp3            uint
	coverSize      int
	threads        int
	flat           bool
	playlist       string
	cover          string
	albumCover     bool
	createPlaylist bool
	playlistFormat string
	probe          string
}

func (f *syncFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.host, "host", "", "Subsonic REST base URL, e.g. https://music.example.com/rest")
	flags.StringVarP(&f.username, "username", "u", "", "Subsonic username")
	flags.StringVarP(&f.password, "password", "p", "", "Subsonic password (or set "+config.PasswordEnv+")")
	flags.BoolVar(&f.legacyAuth, "legacy-auth", false, "Send the hex-encoded password instead of a token")
	flags.UintVar(&f.mp3, "mp3", 0, "Transcode to MP3 at this bitrate in kbps (0 keeps the source format)")
	flags.IntVar(&f.coverSize, "coversize", 500, "Width of embedded covers in pixels")
	flags.IntVar(&f.threads, "threads", 5, "Number of tracks processed in parallel")
	flags.BoolVar(&f.flat, "flat", false, "Put all files directly into the library directory")
	flags.StringVar(&f.playlist, "playlist", "favorites", "Playlist id to sync, or favorites")
	flags.StringVar(&f.cover, "cover", "remote", "Cover source: remote or embedded")
	flags.BoolVar(&f.albumCover, "album-cover", false, "Also write cover.jpeg into each album directory")
	flags.BoolVar(&f.createPlaylist, "create-playlist", false, "Write a playlist file into the library directory")
	flags.StringVar(&f.playlistFormat, "playlist-format", "m3u", "Playlist file format: m3u, pls, wpl or zpl")
	flags.StringVar(&f.probe, "probe", "ffprobe", "Embedded cover detection: ffprobe or tags")
}

// apply copies the flags the user set onto settings.
func (f *syncFlags) apply(flags *pflag.FlagSet, s *config.Settings) {
	if flags.Changed("host") {
		s.Server.Host = f.host
	}
	if flags.Changed("username") {
		s.Server.Username = f.username
	}
	if flags.Changed("password") {
		s.Server.Password = f.password
	}
	if flags.Changed("legacy-auth") {
		s.Server.LegacyAuth = f.legacyAuth
	}
	if flags.Changed("mp3") {
		s.Library.MP3Bitrate = f.mp3
	}
	if flags.Changed("coversize") {
		s.Library.CoverSize = f.coverSize
	}
	if flags.Changed("threads") {
		s.Library.Threads = f.threads
	}
	if flags.Changed("flat") {
		s.Library.Flat = f.flat
	}
	if flags.Changed("playlist") {
		s.Library.Playlist = f.playlist
	}
	if flags.Changed("cover") {
		s.Library.Cover = f.cover
	}
	if flags.Changed("album-cover") {
		s.Library.AlbumCover = f.albumCover
	}
	if flags.Changed("create-playlist") {
		s.Library.CreatePlaylist = f.createPlaylist
	}
	if flags.Changed("playlist-format") {
		s.Library.PlaylistFormat = f.playlistFormat
	}
	if flags.Changed("probe") {
		s.Media.Probe = f.probe
	}
}
