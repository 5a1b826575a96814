package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func newGraphServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1.0/users/ceo@contoso.com", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("$select"); !strings.Contains(got, "displayName") {
			t.Errorf("expected $select with displayName, got %q", got)
		}
		_, _ = w.Write([]byte(`{"id":"1","displayName":"John Smith","jobTitle":"CEO","mail":"ceo@contoso.com"}`))
	})
	mux.HandleFunc("/v1.0/users/missing@contoso.com", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"Request_ResourceNotFound","message":"Resource does not exist"}}`))
	})
	mux.HandleFunc("/v1.0/users/broken@contoso.com", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/v1.0/users/1/directReports", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(`{"value":[{"@odata.type":"#microsoft.graph.user","id":"4","displayName":"Emily Brown"}]}`))
			return
		}
		next := "http://" + r.Host + "/v1.0/users/1/directReports?page=2"
		_, _ = w.Write([]byte(`{"value":[
			{"@odata.type":"#microsoft.graph.user","id":"2","displayName":"Sarah Johnson","department":"Technology"},
			{"@odata.type":"#microsoft.graph.orgContact","id":"c1","displayName":"External Contact"},
			{"@odata.type":"#microsoft.graph.user","id":"3","displayName":"Mike Williams"}
		],"@odata.nextLink":"` + next + `"}`))
	})
	mux.HandleFunc("/v1.0/users/2/photo/$value", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
	})
	mux.HandleFunc("/v1.0/users/3/photo/$value", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestGraph(t *testing.T, srv *httptest.Server) *GraphSource {
	t.Helper()
	g, err := NewGraphSource(GraphOptions{BaseURL: srv.URL + "/v1.0/"})
	if err != nil {
		t.Fatalf("NewGraphSource: %v", err)
	}
	return g
}

func TestGraphResolveIdentity(t *testing.T) {
	g := newTestGraph(t, newGraphServer(t))
	m, err := g.ResolveIdentity(context.Background(), "ceo@contoso.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.ID != "1" || m.DisplayName != "John Smith" || m.Initials != "JS" {
		t.Errorf("unexpected member %+v", m)
	}
}

func TestGraphResolveNotFound(t *testing.T) {
	g := newTestGraph(t, newGraphServer(t))
	_, err := g.ResolveIdentity(context.Background(), "missing@contoso.com")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGraphResolveTransient(t *testing.T) {
	g := newTestGraph(t, newGraphServer(t))
	_, err := g.ResolveIdentity(context.Background(), "broken@contoso.com")
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 HTTPError, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("transient failure must not look like not-found")
	}
}

func TestGraphDirectReportsPagesAndFilters(t *testing.T) {
	g := newTestGraph(t, newGraphServer(t))
	reports, err := g.DirectReports(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, m := range reports {
		ids = append(ids, m.ID)
	}
	if strings.Join(ids, ",") != "2,3,4" {
		t.Errorf("expected users 2,3,4 across pages without contacts, got %v", ids)
	}
}

func TestGraphPhoto(t *testing.T) {
	g := newTestGraph(t, newGraphServer(t))
	photo, err := g.Photo(context.Background(), "2")
	if err != nil || len(photo) != 3 {
		t.Errorf("expected 3-byte photo, got %d bytes (err=%v)", len(photo), err)
	}
	photo, err = g.Photo(context.Background(), "3")
	if err != nil || photo != nil {
		t.Errorf("missing photo should be (nil, nil), got %v, %v", photo, err)
	}
}

func TestGraphStaticToken(t *testing.T) {
	var sawAuth atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer tok" {
			sawAuth.Store(true)
		}
		_, _ = w.Write([]byte(`{"value":[]}`))
	}))
	defer srv.Close()

	g, err := NewGraphSource(GraphOptions{BaseURL: srv.URL, AccessToken: "tok"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.DirectReports(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}
	if !sawAuth.Load() {
		t.Error("expected bearer token on request")
	}
}

func TestGraphClientCredentials(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("grant_type") != "client_credentials" {
			t.Errorf("unexpected grant type %q", r.Form.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"cc-token","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/users/x/directReports", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cc-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"value":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g, err := NewGraphSource(GraphOptions{
		BaseURL:      srv.URL,
		ClientID:     "app",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.DirectReports(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := g.DirectReports(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := tokenCalls.Load(); n != 1 {
		t.Errorf("expected token to be cached, fetched %d times", n)
	}
}

func TestNewGraphSourceValidation(t *testing.T) {
	tests := []GraphOptions{
		{},
		{BaseURL: "ftp://graph"},
		{BaseURL: "https://"},
		{BaseURL: "https://graph.microsoft.com", ClientID: "a", ClientSecret: "b"},
	}
	for _, opts := range tests {
		if _, err := NewGraphSource(opts); err == nil {
			t.Errorf("expected error for %+v", opts)
		}
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	err := &HTTPError{StatusCode: 502}
	if !strings.Contains(err.Error(), "Bad Gateway") {
		t.Errorf("expected status text fallback, got %q", err.Error())
	}
}
