package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := New("acme", "widgets", "")
	base, err := url.Parse(srv.URL + "/")
	if err != nil {
		t.Fatalf("url.Parse: %v", err)
	}
	c.gh.BaseURL = base
	return c
}

func TestPostIssueReturnsNumber(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("method = %s, want POST", r.Method)
		}
		fmt.Fprint(w, `{"number": 42}`)
	})

	n, err := c.PostIssue(context.Background(), "a title", "a body")
	if err != nil {
		t.Fatalf("PostIssue: %v", err)
	}
	if n != 42 {
		t.Fatalf("number = %d, want 42", n)
	}
}

func TestIssueIsClosedTrue(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 7, "state": "closed"}`)
	})

	closed, err := c.IssueIsClosed(context.Background(), 7)
	if err != nil {
		t.Fatalf("IssueIsClosed: %v", err)
	}
	if !closed {
		t.Fatalf("expected closed = true")
	}
}

func TestIssueIsClosedFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"number": 7, "state": "open"}`)
	})

	closed, err := c.IssueIsClosed(context.Background(), 7)
	if err != nil {
		t.Fatalf("IssueIsClosed: %v", err)
	}
	if closed {
		t.Fatalf("expected closed = false")
	}
}

func TestProjectURL(t *testing.T) {
	c := New("acme", "widgets", "")
	if c.ProjectURL() != "https://github.com/acme/widgets" {
		t.Fatalf("ProjectURL = %q", c.ProjectURL())
	}
}
