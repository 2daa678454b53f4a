// Package config loads rocksonic settings from a TOML file.
//
// # Default Settings
//
// DefaultSettings mirrors the command line defaults: favorites, nested
// layout, source format, remote covers at 500 pixels and five workers.
//
// # Loading from File
//
//	path, _ := config.DefaultPath() // $XDG_CONFIG_HOME/rocksonic/config.toml
//	settings, err := config.Load(path)
//	if err != nil {
//	    // the file exists but cannot be parsed
//	}
//
// A missing file is not an error; Load returns the defaults. The
// ROCKSONIC_PASSWORD environment variable overrides server.password.
//
// # Conversion
//
// SessionOptions and ClientOptions turn the settings into the option
// structs of the download and subsonic packages. Validate them first.
package config
