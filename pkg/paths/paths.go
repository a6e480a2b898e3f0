// Package paths provides centralized path handling for gather.
// It resolves the config file and the log file under the XDG base
// directories, and expands ~ in user supplied directories.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/gather/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for gather
	EnvConfigDir = "GATHER_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for gather
	EnvStateDir = "GATHER_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// DirName is the directory name for gather-specific files
	DirName = "gather"

	// LogFileName is the name of the log file
	LogFileName = "gather.log"
)

// ConfigFileNames are the config files looked up in the config directory,
// in order.
var ConfigFileNames = []string{"config.toml", "config.yaml", "config.yml"}

// Paths resolves gather's own directories.
type Paths struct {
	configDir string
	stateDir  string
}

// New resolves the directories from the environment. XDG variables are
// re-read on every call.
func New() *Paths {
	xdg.Reload()
	p := &Paths{
		configDir: filepath.Join(xdg.ConfigHome, DirName),
		stateDir:  filepath.Join(xdg.StateHome, DirName),
	}
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	}
	if dir := os.Getenv(EnvStateDir); dir != "" {
		p.stateDir = ExpandHome(dir)
	}
	return p
}

// ConfigDir returns the config directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// StateDir returns the state directory
func (p *Paths) StateDir() string {
	return p.stateDir
}

// LogFilePath returns the path to the gather log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ConfigFile returns the first existing config file, or "" when there is none.
func (p *Paths) ConfigFile() string {
	for _, name := range ConfigFileNames {
		path := filepath.Join(p.configDir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is not expanded
	return path
}

// NormalizeDir expands ~ and makes dir absolute.
func NormalizeDir(dir string) (string, error) {
	if dir == "" {
		return "", errors.New(errors.ErrInvalidInput, "directory cannot be empty")
	}
	abs, err := filepath.Abs(ExpandHome(dir))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "cannot resolve directory %s", dir)
	}
	return abs, nil
}
