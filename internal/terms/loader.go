package terms

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/bluehealth/cooccur/internal/model"
)

// CommentMarker starts a comment line.
const CommentMarker = "#"

// Delimiters separate synonyms within a term line.
const Delimiters = ",;|\t"

// LoadTermGroups reads a term file into ordered term groups.
// It returns ErrFileNotFound if the path does not exist and ErrNoTermsFound
// if no line yields a token.
func LoadTermGroups(path string) ([]model.TermGroup, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	groups, err := ParseTermGroups(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return groups, nil
}

// ParseTermGroups parses term groups from r.
func ParseTermGroups(r io.Reader) ([]model.TermGroup, error) {
	var groups []model.TermGroup
	err := eachLine(r, func(line string) {
		if group := splitSynonyms(line); len(group) > 0 {
			groups = append(groups, group)
		}
	})
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNoTermsFound
	}
	return groups, nil
}

// LoadLabels reads a label file, one label per surviving line.
// An existing file with no labels yields an empty slice and no error;
// alignment against the term groups is left to the caller.
func LoadLabels(path string) ([]string, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseLabels(f)
}

// ParseLabels parses labels from r.
func ParseLabels(r io.Reader) ([]string, error) {
	labels := make([]string, 0)
	err := eachLine(r, func(line string) {
		labels = append(labels, line)
	})
	if err != nil {
		return nil, err
	}
	return labels, nil
}

// LoadAPIKey reads the first non-comment line of an API key file.
func LoadAPIKey(path string) (string, error) {
	labels, err := LoadLabels(path)
	if err != nil {
		return "", err
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("%s: %w", path, ErrNoTermsFound)
	}
	return labels[0], nil
}

// open opens path, mapping a missing file to ErrFileNotFound.
func open(path string) (*os.File, error) {
	f, err := os.Open(path) //nolint:gosec // Term files are user-provided by design
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// eachLine calls fn with every trimmed, NFC-normalized line that is neither
// blank nor a comment.
func eachLine(r io.Reader, fn func(line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(norm.NFC.String(line))
		if line == "" || strings.HasPrefix(line, CommentMarker) {
			continue
		}
		fn(line)
	}
	return scanner.Err()
}

// splitSynonyms splits a line on the delimiters, dropping empty tokens.
func splitSynonyms(line string) model.TermGroup {
	parts := strings.FieldsFunc(line, func(r rune) bool {
		return strings.ContainsRune(Delimiters, r)
	})

	group := make(model.TermGroup, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			group = append(group, p)
		}
	}
	return group
}
