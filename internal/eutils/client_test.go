package eutils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bluehealth/cooccur/internal/model"
	"github.com/bluehealth/cooccur/internal/provider"
)

func newTestDimension(t *testing.T, raw ...[]string) model.Dimension {
	t.Helper()
	d, err := model.NewDimension(model.NewTermGroups(raw...))
	if err != nil {
		t.Fatalf("NewDimension failed: %v", err)
	}
	return d
}

// newCountServer answers esearch requests from a term -> count table.
func newCountServer(t *testing.T, counts map[string]int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/esearch.fcgi" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("rettype") != "count" || q.Get("retmode") != "json" {
			t.Errorf("unexpected query parameters: %v", q)
		}
		n, ok := counts[q.Get("term")]
		if !ok {
			fmt.Fprint(w, `{"esearchresult":{"ERROR":"unknown term"}}`)
			return
		}
		fmt.Fprintf(w, `{"header":{"type":"esearch"},"esearchresult":{"count":"%d"}}`, n)
	}))
}

func TestBuildTerm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		group      model.TermGroup
		exclusions model.TermGroup
		want       string
	}{
		{
			name:  "single synonym",
			group: model.TermGroup{"anxiety"},
			want:  `("anxiety")`,
		},
		{
			name:  "synonyms joined with OR",
			group: model.TermGroup{"coastal residence", "living by the sea"},
			want:  `("coastal residence"OR"living by the sea")`,
		},
		{
			name:       "exclusions attached with NOT",
			group:      model.TermGroup{"seal"},
			exclusions: model.TermGroup{"sea lion", "fur seal"},
			want:       `("seal")NOT("sea lion"OR"fur seal")`,
		},
		{
			name:  "embedded quotes are removed",
			group: model.TermGroup{`"blue" space`},
			want:  `("blue space")`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := BuildTerm(tt.group, tt.exclusions); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestClientCollect(t *testing.T) {
	t.Parallel()

	server := newCountServer(t, map[string]int64{
		`("a")`:               50,
		`("b1")`:              30,
		`("b2")`:              20,
		`("a")AND("b1")`:      7,
		`("a")AND("b2")`:      3,
		`("x"OR"y")`:          10,
		`("x"OR"y")AND("b1")`: 1,
		`("x"OR"y")AND("b2")`: 0,
	})
	defer server.Close()

	client := NewClient(5*time.Second, WithBaseURL(server.URL), WithRateLimit(1000))

	a := newTestDimension(t, []string{"a"}, []string{"x", "y"})
	b := newTestDimension(t, []string{"b1"}, []string{"b2"})

	result := client.Collect(context.Background(), provider.Request{A: a, B: b, Source: "pubmed"})
	if !result.OK() {
		t.Fatalf("expected success, got failure: %v", result.Failure)
	}

	m := result.Counts
	if err := m.Validate(); err != nil {
		t.Fatalf("collected matrix is invalid: %v", err)
	}
	if m.Source != "pubmed" {
		t.Errorf("expected source pubmed, got %q", m.Source)
	}

	wantCounts := [][]int64{{7, 3}, {1, 0}}
	for i := range wantCounts {
		for j := range wantCounts[i] {
			if m.Counts[i][j] != wantCounts[i][j] {
				t.Errorf("counts[%d][%d]: expected %d, got %d", i, j, wantCounts[i][j], m.Counts[i][j])
			}
		}
	}
	if m.MarginalA[0] != 50 || m.MarginalA[1] != 10 {
		t.Errorf("unexpected A marginals: %v", m.MarginalA)
	}
	if m.MarginalB[0] != 30 || m.MarginalB[1] != 20 {
		t.Errorf("unexpected B marginals: %v", m.MarginalB)
	}
	if m.IsPlaceholder() {
		t.Error("expected a normal-mode matrix")
	}
}

func TestClientCollectFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			wantErr: ErrBadStatus,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `not json`)
			},
			wantErr: ErrBadResponse,
		},
		{
			name: "non-numeric count",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"esearchresult":{"count":"many"}}`)
			},
			wantErr: ErrBadResponse,
		},
		{
			name: "query error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{"esearchresult":{"ERROR":"Invalid query"}}`)
			},
			wantErr: ErrQueryRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(5*time.Second, WithBaseURL(server.URL), WithRateLimit(1000))
			a := newTestDimension(t, []string{"a"})

			result := client.Collect(context.Background(), provider.Request{A: a, B: a})
			if result.OK() {
				t.Fatal("expected failure, got success")
			}
			if result.Counts != nil {
				t.Error("expected no partial counts on failure")
			}
			if !errors.Is(result.Failure, provider.ErrUnavailable) {
				t.Errorf("expected ErrUnavailable, got %v", result.Failure)
			}
			if !errors.Is(result.Failure, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, result.Failure)
			}
		})
	}
}

func TestClientUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	base := server.URL
	server.Close()

	client := NewClient(time.Second, WithBaseURL(base), WithRateLimit(1000), WithAPIKey("secret-key"))
	a := newTestDimension(t, []string{"a"})

	result := client.Collect(context.Background(), provider.Request{A: a, B: a})
	if result.OK() {
		t.Fatal("expected failure for unreachable service")
	}
	if !errors.Is(result.Failure, provider.ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", result.Failure)
	}
	if msg := result.Failure.Error(); strings.Contains(msg, "secret-key") {
		t.Errorf("failure message leaks the API key: %s", msg)
	}
}

func TestClientSendsAPIKeyAndField(t *testing.T) {
	t.Parallel()

	var gotKey, gotField string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.URL.Query().Get("api_key")
		gotField = r.URL.Query().Get("field")
		fmt.Fprint(w, `{"esearchresult":{"count":"4"}}`)
	}))
	defer server.Close()

	client := NewClient(time.Second,
		WithBaseURL(server.URL),
		WithRateLimit(1000),
		WithAPIKey("k123"),
		WithField("TIAB"),
	)

	n, err := client.Count(context.Background(), "pubmed", `("a")`, 0)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4, got %d", n)
	}
	if gotKey != "k123" {
		t.Errorf("expected api_key k123, got %q", gotKey)
	}
	if gotField != "TIAB" {
		t.Errorf("expected field TIAB, got %q", gotField)
	}
}

func TestClientCancelledContext(t *testing.T) {
	t.Parallel()

	server := newCountServer(t, map[string]int64{`("a")`: 1})
	defer server.Close()

	client := NewClient(time.Second, WithBaseURL(server.URL))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := newTestDimension(t, []string{"a"})
	result := client.Collect(ctx, provider.Request{A: a, B: a})
	if result.OK() {
		t.Fatal("expected failure for cancelled context")
	}
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		address string
		want    bool
	}{
		{"127.0.0.1:9050", true},
		{"localhost:1080", true},
		{"[::1]:9050", true},
		{"127.0.0.1", false},
		{":9050", false},
		{"127.0.0.1:0", false},
		{"127.0.0.1:70000", false},
		{"127.0.0.1:abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tt.address); got != tt.want {
				t.Errorf("isValidProxyAddress(%q): expected %v, got %v", tt.address, tt.want, got)
			}
		})
	}
}

func TestNewProxyHTTPClient(t *testing.T) {
	t.Parallel()

	if _, err := NewProxyHTTPClient("not-an-address", time.Second); !errors.Is(err, ErrInvalidProxyAddress) {
		t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
	}

	hc, err := NewProxyHTTPClient("127.0.0.1:9050", time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hc.Timeout != time.Second {
		t.Errorf("expected timeout 1s, got %v", hc.Timeout)
	}
}
