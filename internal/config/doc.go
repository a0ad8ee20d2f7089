// Package config manages the YAML registry of known Lyngdorf devices.
//
// The registry stores user-named device entries (host, port, model) plus
// application preferences, so the CLI can address a processor by name
// instead of by IP address. The file lives in the platform config
// directory:
//   - Linux: $XDG_CONFIG_HOME/lyngdorfctl/config.yaml or $HOME/.config/lyngdorfctl/config.yaml
//   - macOS: $HOME/.config/lyngdorfctl/config.yaml
//   - Windows: %LOCALAPPDATA%\lyngdorfctl\config.yaml
//
// Saves are atomic (write to a temp file, then rename) and the global
// registry instance is initialized once per process.
package config
