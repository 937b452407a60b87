package githubrepo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/google/go-github/v68/github"
)

func newTestRepo(t *testing.T, handler http.HandlerFunc) (*Repo, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	r := New("token", "acme", "widgets")
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("parse test server URL: %v", err)
	}
	r.gh.BaseURL = base
	return r, srv
}

func TestNewSetsOwnerAndName(t *testing.T) {
	r := New("token", "acme", "widgets")
	if r.Owner != "acme" || r.Name != "widgets" {
		t.Fatalf("unexpected repo identity: %+v", r)
	}
}

func TestUpsertPRReturnsExistingOpenPR(t *testing.T) {
	r, srv := newTestRepo(t, func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			t.Fatalf("expected no PR creation when one is already open, got %s %s", req.Method, req.URL.Path)
		}
		if got := req.Header.Get("Authorization"); got != "Bearer token" {
			t.Fatalf("Authorization header = %q, want Bearer token", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]*github.PullRequest{
			{HTMLURL: github.Ptr("https://github.com/acme/widgets/pull/7")},
		})
	})
	defer srv.Close()

	url, err := r.UpsertPR(context.Background(), "feature/widget", "main", "Add widget", "body")
	if err != nil {
		t.Fatalf("UpsertPR: %v", err)
	}
	if url != "https://github.com/acme/widgets/pull/7" {
		t.Fatalf("url = %q, want the existing PR URL", url)
	}
}

func TestUpsertPRCreatesWhenNoneOpen(t *testing.T) {
	r, srv := newTestRepo(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch req.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode([]*github.PullRequest{})
		case http.MethodPost:
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(&github.PullRequest{
				HTMLURL: github.Ptr("https://github.com/acme/widgets/pull/8"),
			})
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}
	})
	defer srv.Close()

	url, err := r.UpsertPR(context.Background(), "feature/widget", "main", "Add widget", "body")
	if err != nil {
		t.Fatalf("UpsertPR: %v", err)
	}
	if url != "https://github.com/acme/widgets/pull/8" {
		t.Fatalf("url = %q, want the newly created PR URL", url)
	}
}
