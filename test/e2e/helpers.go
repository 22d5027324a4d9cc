// Package e2e exercises the full HTTP stack against a real SQLite database.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hyperengineering/finquest/internal/advisor"
	"github.com/hyperengineering/finquest/internal/api"
	"github.com/hyperengineering/finquest/internal/banking"
	"github.com/hyperengineering/finquest/internal/store"
	"github.com/hyperengineering/finquest/internal/tracker"
)

// testServer is an in-process finquest server backed by a database file.
type testServer struct {
	srv *httptest.Server
	db  *store.SQLiteStore
}

// startServer opens dbPath and serves the API on a loopback listener.
// The server is stopped at test cleanup unless stopped earlier.
func startServer(t *testing.T, dbPath string) *testServer {
	t.Helper()

	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}

	tr, err := tracker.New(context.Background(), db, tracker.Options{})
	if err != nil {
		db.Close()
		t.Fatalf("load tracker: %v", err)
	}

	h := api.NewHandler(tr, advisor.WithFallback(nil), banking.DemoFetcher{}, banking.NewKeywordClassifier(), "e2e")
	router := api.NewRouter(h, api.RouterOptions{CORSOrigin: "*", CustomerID: "demo-customer"})

	ts := &testServer{srv: httptest.NewServer(router), db: db}
	t.Cleanup(ts.stop)
	return ts
}

// stop shuts the server down and closes the database. Safe to call twice.
func (s *testServer) stop() {
	if s.srv == nil {
		return
	}
	s.srv.Close()
	s.db.Close()
	s.srv = nil
}

// do sends a request and decodes a JSON response into out when non-nil.
func (s *testServer) do(t *testing.T, method, path string, body any, out any) int {
	t.Helper()

	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.srv.URL+path, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func (s *testServer) post(t *testing.T, path string, body any, out any) int {
	t.Helper()
	return s.do(t, http.MethodPost, path, body, out)
}

func (s *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	return s.do(t, http.MethodGet, path, nil, out)
}
