// Package artifact persists pipeline products (corpora, ratio tables, fold
// results) as versioned JSON envelopes.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/gofrs/flock"
)

// SchemaVersion is stamped on every envelope written by this build.
const SchemaVersion = "1.0.0"

// compatible accepts any envelope of the same major schema.
const compatible = "^1.0.0"

// Artifact kinds.
const (
	KindCorpus     = "corpus"
	KindRatioTable = "ratio-table"
	KindResult     = "fold-result"
)

var (
	// ErrKindMismatch is returned when a file holds a different artifact kind.
	ErrKindMismatch = errors.New("artifact kind mismatch")
	// ErrIncompatibleSchema is returned for envelopes written by an incompatible schema.
	ErrIncompatibleSchema = errors.New("incompatible artifact schema")
)

// Envelope wraps a payload with its kind and schema version.
type Envelope struct {
	Kind          string          `json:"kind"`
	SchemaVersion string          `json:"schema_version"`
	CreatedAt     time.Time       `json:"created_at"`
	Payload       json.RawMessage `json:"payload"`
}

// Write marshals v into an envelope and atomically replaces path.
func Write(path, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	data, err := json.Marshal(Envelope{
		Kind:          kind,
		SchemaVersion: SchemaVersion,
		CreatedAt:     time.Now().UTC(),
		Payload:       payload,
	})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer func() { _ = lock.Unlock() }()

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}

// Read loads an envelope of the expected kind from path into v. It waits for
// a concurrent Write only when a lock file already exists, and never creates
// one, so artifacts stay readable from read-only directories.
func Read(path, kind string, v any) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := os.Stat(path + ".lock"); err == nil {
		lock := flock.New(path + ".lock")
		if err := lock.RLock(); err == nil {
			defer func() { _ = lock.Unlock() }()
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if env.Kind != kind {
		return fmt.Errorf("%w: %s holds %q, want %q", ErrKindMismatch, path, env.Kind, kind)
	}
	if err := CheckSchema(env.SchemaVersion); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("decode %s payload: %w", kind, err)
	}
	return nil
}

// CheckSchema verifies that version can be read by this build.
func CheckSchema(version string) error {
	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q: %v", ErrIncompatibleSchema, version, err)
	}
	c, err := semver.NewConstraint(compatible)
	if err != nil {
		return fmt.Errorf("parse schema constraint: %w", err)
	}
	if !c.Check(v) {
		return fmt.Errorf("%w: %s does not satisfy %s", ErrIncompatibleSchema, version, compatible)
	}
	return nil
}
