package httptracker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rahulramakrishnanprema/Agentic-Orchestration/pkg/ports"
)

func TestListTodoFlattensDescriptionAndSetsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("project"); got != "PROJ" {
			t.Fatalf("project query param = %q, want PROJ", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Fatalf("Authorization header = %q, want Bearer secret", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]issueWire{
			{
				Key:   "PROJ-1",
				Title: "Fix thing",
				Description: ports.DescriptionNode{
					Kind: "paragraph",
					Children: []ports.DescriptionNode{
						{Text: "Fix the thing"},
					},
				},
			},
		})
	}))
	defer srv.Close()

	tracker := New(srv.URL, "secret")
	issues, err := tracker.ListTodo(context.Background(), "PROJ")
	if err != nil {
		t.Fatalf("ListTodo: %v", err)
	}
	if len(issues) != 1 || issues[0].Key != "PROJ-1" || issues[0].Title != "Fix thing" {
		t.Fatalf("unexpected issues: %+v", issues)
	}
	if got, want := issues[0].Description, "\nFix the thing\n"; got != want {
		t.Fatalf("Description = %q, want %q", got, want)
	}
}

func TestListTodoNoTokenOmitsAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Fatalf("Authorization header = %q, want empty", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("[]"))
	}))
	defer srv.Close()

	tracker := New(srv.URL, "")
	issues, err := tracker.ListTodo(context.Background(), "PROJ")
	if err != nil {
		t.Fatalf("ListTodo: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("expected no issues, got %+v", issues)
	}
}

func TestListTodoErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tracker := New(srv.URL, "secret")
	if _, err := tracker.ListTodo(context.Background(), "PROJ"); err == nil {
		t.Fatal("expected error for HTTP 500, got nil")
	}
}

func TestTransitionPostsBodyAndAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/issues/PROJ-1/transitions" {
			t.Fatalf("path = %s, want /issues/PROJ-1/transitions", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["transition"] != "Done" {
			t.Fatalf("transition = %q, want Done", body["transition"])
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	tracker := New(srv.URL, "secret")
	if err := tracker.Transition(context.Background(), "PROJ-1", "Done"); err != nil {
		t.Fatalf("Transition: %v", err)
	}
}

func TestTransitionErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	tracker := New(srv.URL, "secret")
	if err := tracker.Transition(context.Background(), "PROJ-1", "Done"); err == nil {
		t.Fatal("expected error for HTTP 404, got nil")
	}
}
