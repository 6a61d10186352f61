// SPDX-License-Identifier: MPL-2.0

// Package config loads cabar settings using Viper with CUE as the file format.
//
// The file is looked up at the --config path, then in the platform
// configuration directory (cabar/config.cue under $XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support on macOS, %APPDATA% on Windows) and finally as
// cabar.config.cue in the working directory. Files are validated against the
// embedded #Config schema. The CABAR_PATH, CABAR_REQUIRE and CABAR_SELECT
// environment variables extend the list settings.
package config
