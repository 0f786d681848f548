package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bluehealth/cooccur/internal/model"
)

// Ext is the file extension of a counts artifact.
const Ext = ".json"

// Artifact errors.
var (
	// ErrArtifactNotFound is returned when no artifact exists for a name.
	ErrArtifactNotFound = errors.New("counts artifact not found")

	// ErrInvalidArtifact is returned when an artifact cannot be decoded
	// or holds an inconsistent matrix.
	ErrInvalidArtifact = errors.New("invalid counts artifact")
)

// FileName returns the artifact file name for a logical name.
func FileName(name string) string {
	return name + Ext
}

// Save writes m to dir/<name>.json, creating dir if needed, and returns
// the written path. The file is replaced atomically.
func Save(m *model.CountsMatrix, dir, name string) (string, error) {
	if err := m.Validate(); err != nil {
		return "", fmt.Errorf("refusing to save: %w", err)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode artifact: %w", err)
	}

	path := filepath.Join(dir, FileName(name))
	tmp, err := os.CreateTemp(dir, "."+name+"-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary artifact: %w", err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to move artifact into place: %w", err)
	}
	return path, nil
}

// Load reads and validates the artifact at path.
func Load(path string) (*model.CountsMatrix, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the resolver or the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	var m model.CountsMatrix
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	if m.Metadata == nil {
		m.Metadata = model.CollectionMetadata{}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	return &m, nil
}
