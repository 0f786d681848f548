package artifact

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bluehealth/cooccur/internal/model"
)

// DefaultCandidates are the artifact directories relative to the project
// root, newest layout first.
var DefaultCandidates = []string{
	"counts",
	filepath.Join("data", "counts"),
	"data",
}

// Resolver locates artifacts under a project root.
type Resolver struct {
	// root is the project root.
	root string

	// candidates are searched in order before falling back to a walk.
	candidates []string

	// logger for structured logging.
	logger *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCandidates replaces the candidate directories. Relative entries are
// taken relative to the root.
func WithCandidates(dirs ...string) ResolverOption {
	return func(r *Resolver) {
		r.candidates = dirs
	}
}

// WithResolverLogger sets a custom logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a Resolver rooted at root.
func NewResolver(root string, opts ...ResolverOption) *Resolver {
	r := &Resolver{
		root:       root,
		candidates: DefaultCandidates,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Candidates returns the absolute candidate paths for name, in search order.
func (r *Resolver) Candidates(name string) []string {
	paths := make([]string, len(r.candidates))
	for i, dir := range r.candidates {
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(r.root, dir)
		}
		paths[i] = filepath.Join(dir, FileName(name))
	}
	return paths
}

// Resolve returns the path of the artifact called name.
//
// The first existing candidate wins. Otherwise the root is walked and the
// lexicographically first file named "<name>.json" is returned. If nothing
// matches, the error wraps ErrArtifactNotFound.
func (r *Resolver) Resolve(name string) (string, error) {
	for _, path := range r.Candidates(name) {
		if isFile(path) {
			r.logger.Debug("artifact resolved", "name", name, "path", path)
			return path, nil
		}
	}

	target := FileName(name)
	matches, err := r.walk(func(base string) bool { return base == target })
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%w: %s under %s", ErrArtifactNotFound, name, r.root)
	}

	r.logger.Info("artifact found outside the standard locations",
		"name", name,
		"path", matches[0],
		"matches", len(matches),
	)
	return matches[0], nil
}

// List returns every counts artifact under the root in lexicographic order.
func (r *Resolver) List() ([]string, error) {
	return r.walk(func(base string) bool {
		return strings.HasPrefix(base, model.ArtifactPrefix) && strings.HasSuffix(base, Ext)
	})
}

// walk collects the files under root whose base name satisfies match.
// Hidden directories are skipped.
func (r *Resolver) walk(match func(base string) bool) ([]string, error) {
	var found []string
	err := filepath.WalkDir(r.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			if path != r.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if match(d.Name()) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search %s: %w", r.root, err)
	}
	sort.Strings(found)
	return found, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
