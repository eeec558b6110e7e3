package config

import (
	"os"
	"path/filepath"
)

// DefaultConfigFile is the project config file name.
const DefaultConfigFile = "modship.yaml"

// EnvConfig overrides the config file path.
const EnvConfig = "MODSHIP_CONFIG"

// Paths contains the filesystem locations of a project.
type Paths struct {
	// ProjectDir is the directory holding the config file.
	ProjectDir string

	// ConfigFile is the path to modship.yaml.
	ConfigFile string
}

// DefaultPaths returns the paths for a project in the working directory.
func DefaultPaths() (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	return &Paths{
		ProjectDir: wd,
		ConfigFile: filepath.Join(wd, DefaultConfigFile),
	}, nil
}

// PathsFor returns the paths for a config file; the project directory is
// the directory containing it.
func PathsFor(configFile string) (*Paths, error) {
	abs, err := filepath.Abs(configFile)
	if err != nil {
		return nil, err
	}
	return &Paths{
		ProjectDir: filepath.Dir(abs),
		ConfigFile: abs,
	}, nil
}

// GetConfigFile returns the config file path.
// If MODSHIP_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv(EnvConfig); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 {
		return path, nil
	}

	if path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// Handle ~username (not supported, return as-is)
	return path, nil
}
