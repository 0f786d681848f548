package terms

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "terms.txt")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

// TestLoadTermGroups tests term file parsing.
func TestLoadTermGroups(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    [][]string
	}{
		{
			name:    "one group per line",
			content: "Unemployment\nImpulsivity\n",
			want:    [][]string{{"Unemployment"}, {"Impulsivity"}},
		},
		{
			name:    "every delimiter splits synonyms",
			content: "swimming, bathing;surfing | diving\tsnorkeling\n",
			want:    [][]string{{"swimming", "bathing", "surfing", "diving", "snorkeling"}},
		},
		{
			name:    "comments and blanks are skipped",
			content: "# header\n\n   \n  # indented comment\nwalking\n",
			want:    [][]string{{"walking"}},
		},
		{
			name:    "line with only delimiters is discarded",
			content: ",;|\t\nwalking\n , , \n",
			want:    [][]string{{"walking"}},
		},
		{
			name:    "empty tokens are dropped",
			content: "a,,b, ,c\n",
			want:    [][]string{{"a", "b", "c"}},
		},
		{
			name:    "byte order mark is ignored",
			content: "\ufeffcoastal residence\n",
			want:    [][]string{{"coastal residence"}},
		},
		{
			name:    "decomposed accents are normalized",
			content: "natacio\u0301\n",
			want:    [][]string{{"nataci\u00f3"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			groups, err := LoadTermGroups(writeFile(t, tt.content))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(groups) != len(tt.want) {
				t.Fatalf("expected %d groups, got %d", len(tt.want), len(groups))
			}
			for i, g := range groups {
				if !reflect.DeepEqual([]string(g), tt.want[i]) {
					t.Errorf("group %d: expected %v, got %v", i, tt.want[i], g)
				}
				if len(g) == 0 {
					t.Errorf("group %d is empty", i)
				}
			}
		})
	}
}

// TestLoadTermGroupsCountsValidLines tests that n valid lines yield n groups.
func TestLoadTermGroupsCountsValidLines(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	valid := 0
	for i := 0; i < 50; i++ {
		switch i % 4 {
		case 0:
			sb.WriteString("# comment\n")
		case 1:
			sb.WriteString("\n")
		default:
			sb.WriteString("term a; term b\n")
			valid++
		}
	}

	groups, err := LoadTermGroups(writeFile(t, sb.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != valid {
		t.Errorf("expected %d groups, got %d", valid, len(groups))
	}
}

// TestLoadTermGroupsErrors tests the loader's failure conditions.
func TestLoadTermGroupsErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTermGroups(filepath.Join(t.TempDir(), "missing.txt"))
		if !errors.Is(err, ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})

	t.Run("only comments", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTermGroups(writeFile(t, "# a\n\n# b\n"))
		if !errors.Is(err, ErrNoTermsFound) {
			t.Errorf("expected ErrNoTermsFound, got %v", err)
		}
	})
}

// TestLoadLabels tests that labels are not split on delimiters.
func TestLoadLabels(t *testing.T) {
	t.Parallel()

	labels, err := LoadLabels(writeFile(t, "# labels\nSwimming, bathing\n\nWalking | hiking\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Swimming, bathing", "Walking | hiking"}
	if !reflect.DeepEqual(labels, want) {
		t.Errorf("expected %v, got %v", want, labels)
	}

	_, err = LoadLabels(filepath.Join(t.TempDir(), "none.txt"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

// TestLoadAPIKey tests API key file reading.
func TestLoadAPIKey(t *testing.T) {
	t.Parallel()

	key, err := LoadAPIKey(writeFile(t, "# ncbi\n  abc123  \nignored\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "abc123" {
		t.Errorf("expected abc123, got %q", key)
	}

	if _, err := LoadAPIKey(writeFile(t, "\n")); !errors.Is(err, ErrNoTermsFound) {
		t.Errorf("expected ErrNoTermsFound, got %v", err)
	}
}
