// Package configservice locates the .tasktree directory and opens its
// config store.
package configservice

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tasktree/internal/config"
	"tasktree/internal/config/yamlstore"
)

// ErrNotFound is returned when no .tasktree directory can be located.
var ErrNotFound = errors.New("no .tasktree directory found")

// ResolvePaths resolves config paths.
// Discovery order: explicit path > TASKTREE_DIR env var > walk up from CWD
// (stopping at the git root).
func ResolvePaths(explicit string) (config.Paths, error) {
	// 1. --path flag
	if explicit != "" {
		normalized, err := normalizeBasePath(explicit)
		if err != nil {
			return config.Paths{}, err
		}
		return ResolveFromBase(normalized)
	}

	// 2. TASKTREE_DIR env var
	if envDir := os.Getenv(config.EnvDir); envDir != "" {
		normalized, err := normalizeBasePath(envDir)
		if err != nil {
			return config.Paths{}, err
		}
		return ResolveFromBase(normalized)
	}

	// 3. Walk up from CWD, stopping at git root
	cwd, err := os.Getwd()
	if err != nil {
		return config.Paths{}, fmt.Errorf("cannot get current directory: %w", err)
	}

	configDir, found, err := findDirUpward(cwd)
	if err != nil {
		return config.Paths{}, err
	}
	if !found {
		return config.Paths{}, missingDirErr(cwd)
	}
	return buildPaths(configDir), nil
}

// DefaultPaths returns the paths a new repository would use when created
// under base (or the current directory when base is empty). Nothing is
// checked on disk.
func DefaultPaths(base string) (config.Paths, error) {
	if base == "" {
		if envDir := os.Getenv(config.EnvDir); envDir != "" {
			base = envDir
		} else {
			cwd, err := os.Getwd()
			if err != nil {
				return config.Paths{}, fmt.Errorf("cannot get current directory: %w", err)
			}
			base = cwd
		}
	}
	dir, err := normalizeBasePath(base)
	if err != nil {
		return config.Paths{}, err
	}
	return buildPaths(dir), nil
}

// ResolveFromBase resolves Paths from a known .tasktree directory path.
// Follows redirect files.
func ResolveFromBase(basePath string) (config.Paths, error) {
	redirected, err := ReadRedirect(basePath)
	if err != nil {
		return config.Paths{}, err
	}
	if redirected != "" {
		basePath = redirected
	}

	info, err := os.Stat(basePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.Paths{}, missingDirErr(basePath)
		}
		return config.Paths{}, fmt.Errorf("cannot access tasktree directory %s: %w", basePath, err)
	}
	if !info.IsDir() {
		return config.Paths{}, fmt.Errorf("tasktree path is not a directory: %s", basePath)
	}
	return buildPaths(basePath), nil
}

// OpenStore opens the config store for paths, with defaults for any
// missing keys and environment overrides applied in memory.
func OpenStore(paths config.Paths) (config.Store, error) {
	store, err := yamlstore.New(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	for k, v := range config.DefaultValues() {
		if _, ok := store.Get(k); !ok {
			store.SetInMemory(k, v)
		}
	}
	config.ApplyEnvOverrides(store)
	return store, nil
}

func buildPaths(configDir string) config.Paths {
	return config.Paths{
		ConfigDir:  configDir,
		ConfigFile: filepath.Join(configDir, config.ConfigFileName),
	}
}

// normalizeBasePath makes path absolute and points it at the .tasktree
// directory, appending the directory name when path is its parent.
func normalizeBasePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if filepath.Base(absPath) != config.Dir {
		absPath = filepath.Join(absPath, config.Dir)
	}
	return absPath, nil
}

// findDirUpward walks from start toward the filesystem root looking for a
// .tasktree directory. It stops at the git repository root (if inside a git
// repo) to avoid escaping the repo boundary.
func findDirUpward(start string) (string, bool, error) {
	gitRoot, _ := FindGitRoot(start)

	dir := start
	for {
		candidate := filepath.Join(dir, config.Dir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			redirected, rErr := ReadRedirect(candidate)
			if rErr != nil {
				return "", false, rErr
			}
			if redirected != "" {
				candidate = redirected
			}
			return candidate, true, nil
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("checking %s: %w", candidate, err)
		}

		// Stop at git root boundary
		if gitRoot != "" && dir == gitRoot {
			return "", false, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// FindGitRoot returns the git repository root for the given directory.
// Returns "" if not in a git repo. Uses file walk-up instead of subprocess for speed.
func FindGitRoot(startDir string) (string, error) {
	dir := startDir
	for {
		gitPath := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			// .git can be a directory (normal repo) or a file (worktree)
			if info.IsDir() || info.Mode().IsRegular() {
				return dir, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil // reached filesystem root
		}
		dir = parent
	}
}

// ReadRedirect reads a redirect file from a .tasktree directory.
// The redirect file contains a single line with an absolute or relative path
// to the actual .tasktree directory. Returns "" if no redirect file exists.
func ReadRedirect(dir string) (string, error) {
	redirectPath := filepath.Join(dir, "redirect")
	f, err := os.Open(redirectPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("reading redirect file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", nil // empty file
	}
	target := strings.TrimSpace(scanner.Text())
	if target == "" {
		return "", nil
	}

	// Resolve relative paths against the tasktree directory
	if !filepath.IsAbs(target) {
		target = filepath.Join(dir, target)
	}
	target = filepath.Clean(target)

	info, err := os.Stat(target)
	if err != nil {
		return "", fmt.Errorf("redirect target does not exist: %s", target)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("redirect target is not a directory: %s", target)
	}

	return target, nil
}

func missingDirErr(from string) error {
	return fmt.Errorf("%w from %s (run `tt init`)", ErrNotFound, from)
}
