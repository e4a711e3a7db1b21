// Package iofs prepares the application's directories and seed
// configuration files under the user's home directory.
package iofs

import (
	_ "embed"
	"os"

	"github.com/gnames/gnfacet/pkg/config"
)

//go:embed config.yaml
var ConfigYAML string

//go:embed facets.yaml
var FacetsYAML string

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	// Write embedded config.yaml to the config directory
	if err := os.WriteFile(configPath, []byte(ConfigYAML), 0644); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

func EnsureFacetsFile(homeDir string) error {
	facetsPath := config.FacetsFilePath(homeDir)

	// Check if facets file already exists
	if _, err := os.Stat(facetsPath); err == nil {
		return nil
	}

	// Write embedded facets.yaml to the config directory
	if err := os.WriteFile(facetsPath, []byte(FacetsYAML), 0644); err != nil {
		return CopyFileError(facetsPath, err)
	}

	return nil
}
