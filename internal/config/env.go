package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	// EnvTestMode selects the built-in smoke dataset ("1" or "true").
	EnvTestMode = "BLUEHEALTH_TEST_MODE"

	// EnvRetMax overrides the retrieval volume.
	EnvRetMax = "BLUEHEALTH_RETMAX"

	// EnvTopK overrides the number of associations per anchor.
	EnvTopK = "BLUEHEALTH_TOP_K"

	// EnvDropCount overrides the requested drop count.
	EnvDropCount = "BLUEHEALTH_N_DROP"

	// EnvAPIKey takes precedence over the API key file.
	EnvAPIKey = "BLUEHEALTH_API_KEY"
)

// ApplyEnv overrides c with the BLUEHEALTH_* variables found by lookup,
// usually os.LookupEnv. Empty values are ignored. A malformed number
// returns an error wrapping ErrInvalidEnv and leaves that field unchanged.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvTestMode); ok {
		c.TestMode = parseBool(v)
	}
	if v, ok := get(EnvAPIKey); ok {
		c.APIKey = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvRetMax, &c.RetMax},
		{EnvTopK, &c.TopK},
		{EnvDropCount, &c.DropCount},
	}
	for _, e := range ints {
		v, ok := get(e.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, e.key, v)
		}
		*e.dst = n
	}
	return nil
}

// parseBool accepts "1", "true", "yes" and "on" in any case.
func parseBool(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
