package mockapp

import (
	"net/http/httptest"
	"testing"
)

// Server is a running replica bound to a local test listener.
type Server struct {
	*App
	URL string
}

// NewTestServer starts the replica on a loopback port and stops it when the
// test completes.
func NewTestServer(t testing.TB, opts Options) *Server {
	t.Helper()

	app, err := New(opts)
	if err != nil {
		t.Fatalf("failed to build mock app: %v", err)
	}
	ts := httptest.NewServer(app.Handler())
	t.Cleanup(ts.Close)

	return &Server{App: app, URL: ts.URL}
}
