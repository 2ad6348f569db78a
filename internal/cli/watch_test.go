package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestStatusServerServesLastPass(t *testing.T) {
	status := &watchStatus{}
	status.record(statusPayload{Pass: "ab12cd34", Passes: 3})

	srv := newStatusServer(":0", status, t.TempDir())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	var got statusPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if got.Pass != "ab12cd34" || got.Passes != 3 {
		t.Errorf("payload = %+v, want pass ab12cd34 with 3 passes", got)
	}
}

func TestStatusServerReportsPassError(t *testing.T) {
	status := &watchStatus{}
	status.record(statusPayload{Pass: "deadbeef", Passes: 1, Error: "resolve: boom"})

	srv := newStatusServer(":0", status, t.TempDir())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	var got statusPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal status: %v", err)
	}
	if got.Error != "resolve: boom" {
		t.Errorf("Error = %q, want the recorded pass error", got.Error)
	}
}

func TestStatusServerServesImages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "arch.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := newStatusServer(":0", &watchStatus{}, dir)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/arch.svg", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if rec.Body.String() != "<svg/>" {
		t.Errorf("body = %q, want the exported image", rec.Body.String())
	}
}

func TestStatusServerUnknownRoute(t *testing.T) {
	srv := newStatusServer(":0", &watchStatus{}, t.TempDir())
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestDisplayAddr(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{addr: ":8080", want: "localhost:8080"},
		{addr: "127.0.0.1:9000", want: "127.0.0.1:9000"},
		{addr: "docs.example:80", want: "docs.example:80"},
	}

	for _, tt := range tests {
		if got := displayAddr(tt.addr); got != tt.want {
			t.Errorf("displayAddr(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
