// Package config manages the lbcs client settings file.
//
// Settings live in config.yaml inside the platform configuration directory:
//   - Linux: $XDG_CONFIG_HOME/lbcs or $HOME/.config/lbcs
//   - macOS: $HOME/.config/lbcs
//   - Windows: %LOCALAPPDATA%\lbcs
//
// LBCS_CONFIG_DIR overrides the directory for all platforms. The saved
// walls and problems (see package storage) are kept in the same directory.
//
//	settings, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	color, err := settings.Color()
//
// Writes go through WriteFileAtomic: a temporary file renamed over the
// target, so a crash never leaves a half-written file.
package config
