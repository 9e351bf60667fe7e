// Package workspace lays out the directory tree holding corpora, ratio
// tables, cross-validation results and reports.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// EnvWorkspace overrides the platform default root.
const EnvWorkspace = "BOXPRINT_WORKSPACE"

// Workspace subdirectories.
const (
	Corpora = "corpora"
	Ratios  = "ratios"
	Results = "results"
	Reports = "reports"
	Logs    = "logs"
)

var defaultSubdirs = []string{
	Corpora,
	Ratios,
	Results,
	Reports,
	Logs,
}

var (
	userHomeDir = os.UserHomeDir
	getGOOS     = func() string { return runtime.GOOS }
)

// Prepare ensures the workspace root and required subdirectories exist.
// It returns the absolute path to the workspace root that was prepared.
func Prepare(root string) (string, error) {
	if root == "" {
		var err error
		root, err = defaultRoot()
		if err != nil {
			return "", err
		}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve workspace path: %w", err)
	}

	if err := os.MkdirAll(absRoot, 0o750); err != nil {
		return "", fmt.Errorf("create workspace root: %w", err)
	}

	for _, sub := range defaultSubdirs {
		subPath := filepath.Join(absRoot, sub)
		if err := os.MkdirAll(subPath, 0o750); err != nil {
			return "", fmt.Errorf("create workspace subdir %q: %w", sub, err)
		}
	}

	return absRoot, nil
}

// Path joins root, one of the workspace subdirectories and name.
func Path(root, sub string, name ...string) string {
	return filepath.Join(append([]string{root, sub}, name...)...)
}

// CorpusPath returns the default location of a named corpus.
func CorpusPath(root, name string) string {
	return Path(root, Corpora, name+".json")
}

// RatioDir returns the directory holding the ratio tables of a corpus.
func RatioDir(root, corpus string) string {
	return Path(root, Ratios, corpus)
}

// ResultPath returns the location of a cross-validation result.
func ResultPath(root, id string) string {
	return Path(root, Results, id+".json")
}

type ctxKey string

const workspaceRootKey ctxKey = "workspace.root"

// WithContext stores the prepared workspace root on the provided context.
func WithContext(ctx context.Context, root string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, workspaceRootKey, root)
}

// FromContext extracts the workspace root from context.
func FromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	val := ctx.Value(workspaceRootKey)
	if root, ok := val.(string); ok && root != "" {
		return root, true
	}
	return "", false
}

func defaultRoot() (string, error) {
	if dir := os.Getenv(EnvWorkspace); dir != "" {
		return dir, nil
	}

	switch getGOOS() {
	case "darwin":
		home, err := userHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, "Library", "Application Support", "Boxprint"), nil
	case "windows":
		if appData := os.Getenv("AppData"); appData != "" {
			return filepath.Join(appData, "Boxprint"), nil
		}
		home, err := userHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		return filepath.Join(home, "AppData", "Roaming", "Boxprint"), nil
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "boxprint"), nil
		}
		home, err := userHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if home == "" {
			return "", errors.New("cannot determine workspace directory")
		}
		return filepath.Join(home, ".local", "share", "boxprint"), nil
	}
}

// Subdirectories returns the list of default workspace subdirectories.
func Subdirectories() []string {
	subs := make([]string, len(defaultSubdirs))
	copy(subs, defaultSubdirs)
	return subs
}
