package collect

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bluehealth/cooccur/internal/terms"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestAssembleDimension(t *testing.T) {
	t.Parallel()

	t.Run("terms with aligned exclusions and labels", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		files := DimensionFiles{
			Terms:      writeFile(t, dir, "factors.txt", "# factors\nstress, strain\nanxiety\n"),
			Exclusions: writeFile(t, dir, "exclude.txt", "stress fracture\npanic\n"),
			Labels:     writeFile(t, dir, "labels.txt", "Stress\nAnxiety\n"),
		}

		dim, err := AssembleDimension(files, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dim.Len() != 2 {
			t.Fatalf("expected 2 groups, got %d", dim.Len())
		}
		if len(dim.Exclusions) != 2 {
			t.Errorf("expected 2 exclusion groups, got %d", len(dim.Exclusions))
		}
		if dim.Label(0) != "Stress" {
			t.Errorf("expected label Stress, got %q", dim.Label(0))
		}
	})

	t.Run("misaligned auxiliary files are dropped", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		files := DimensionFiles{
			Terms:      writeFile(t, dir, "factors.txt", "a\nb\nc\n"),
			Exclusions: writeFile(t, dir, "exclude.txt", "x\n"),
			Labels:     writeFile(t, dir, "labels.txt", "A\nB\nC\nD\n"),
		}

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		dim, err := AssembleDimension(files, logger)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dim.Len() != 3 {
			t.Errorf("expected 3 groups, got %d", dim.Len())
		}
		if dim.Exclusions != nil {
			t.Errorf("expected exclusions dropped, got %v", dim.Exclusions)
		}
		if dim.Labels != nil {
			t.Errorf("expected labels dropped, got %v", dim.Labels)
		}
		if !strings.Contains(buf.String(), "exclusions ignored") || !strings.Contains(buf.String(), "labels ignored") {
			t.Errorf("expected alignment warnings, got %s", buf.String())
		}
	})

	t.Run("missing auxiliary files are tolerated", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		files := DimensionFiles{
			Terms:      writeFile(t, dir, "factors.txt", "a\n"),
			Exclusions: filepath.Join(dir, "missing-exclude.txt"),
			Labels:     filepath.Join(dir, "missing-labels.txt"),
		}

		dim, err := AssembleDimension(files, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if dim.Len() != 1 {
			t.Errorf("expected 1 group, got %d", dim.Len())
		}
	})

	t.Run("missing terms file is fatal", func(t *testing.T) {
		t.Parallel()
		_, err := AssembleDimension(DimensionFiles{Terms: filepath.Join(t.TempDir(), "none.txt")}, nil)
		if !errors.Is(err, terms.ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("empty terms file is fatal", func(t *testing.T) {
		t.Parallel()
		path := writeFile(t, t.TempDir(), "factors.txt", "# only a comment\n\n")
		_, err := AssembleDimension(DimensionFiles{Terms: path}, nil)
		if !errors.Is(err, terms.ErrNoTermsFound) {
			t.Errorf("expected ErrNoTermsFound, got %v", err)
		}
	})
}

func TestSmokeDimensions(t *testing.T) {
	t.Parallel()

	a := SmokeFactors()
	b := SmokeSecondary()
	if a.Len() != 3 || b.Len() != 2 {
		t.Fatalf("expected (3,2) smoke dimensions, got (%d,%d)", a.Len(), b.Len())
	}
	if a.Label(0) != "Antisocial attitudes" {
		t.Errorf("unexpected first factor %q", a.Label(0))
	}
	if b.Label(1) != "contemplation of water" {
		t.Errorf("unexpected second secondary term %q", b.Label(1))
	}
}
