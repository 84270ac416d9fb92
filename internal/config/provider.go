package config

import "path/filepath"

// Dir is the name of the directory holding tasktree files.
const Dir = ".tasktree"

// ConfigFileName is the config file inside Dir.
const ConfigFileName = "config.yaml"

// Paths captures resolved locations for config and state.
type Paths struct {
	ConfigDir  string // path to .tasktree directory
	ConfigFile string // path to .tasktree/config.yaml
}

// StateFile returns the absolute path of the state document named by the
// state.file key. Relative names resolve against ConfigDir.
func (p Paths) StateFile(s Store) string {
	name := String(s, KeyStateFile)
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.ConfigDir, name)
}
