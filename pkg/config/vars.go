package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gnfacet"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnfacet by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gnfacet by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnfacet/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(LocalShareDir(homeDir), "logs")
}

// LocalShareDir returns the directory for application data.
func LocalShareDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnfacet/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// FacetsFilePath returns the full path to the facets.yaml file that
// defines facet vocabularies per scope.
// Returns ~/.config/gnfacet/facets.yaml by default.
func FacetsFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "facets.yaml")
}

// SourceCachePath returns the path of the SQLite database caching raw
// responses from the external taxonomy source.
func SourceCachePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "source.db")
}
