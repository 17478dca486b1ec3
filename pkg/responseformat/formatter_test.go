package responseformat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

type table struct {
	Name string `json:"name"`
}

func (t table) Table() ([]string, [][]string) {
	return []string{"name", "value"}, [][]string{{t.Name, "1,234.50"}}
}

func TestWriteResponseFormats(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		data        any
		contentType string
	}{
		{"default json", "", table{Name: "PISCES"}, "application/json"},
		{"explicit msgpack", "?format=msgpack", table{Name: "PISCES"}, "application/x-msgpack"},
		{"csv", "?format=csv", table{Name: "PISCES"}, "text/csv; charset=utf-8"},
		{"csv falls back to json", "?format=csv", map[string]string{"a": "b"}, "application/json"},
	}

	f := NewFormatter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/analysis"+tt.query, nil)
			rec := httptest.NewRecorder()
			if err := f.WriteResponse(rec, req, tt.data, map[string]string{"X-Test": "1"}); err != nil {
				t.Fatalf("WriteResponse: %v", err)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
				t.Errorf("missing CORS header")
			}
			if rec.Header().Get("X-Test") != "1" {
				t.Errorf("custom header not set")
			}
		})
	}
}

func TestWriteResponseBodies(t *testing.T) {
	f := NewFormatter()

	req := httptest.NewRequest(http.MethodGet, "/?format=csv", nil)
	rec := httptest.NewRecorder()
	if err := f.WriteResponse(rec, req, table{Name: "CETUS"}, nil); err != nil {
		t.Fatal(err)
	}
	want := "name,value\nCETUS,\"1,234.50\"\n"
	if rec.Body.String() != want {
		t.Errorf("csv body = %q, want %q", rec.Body.String(), want)
	}

	req = httptest.NewRequest(http.MethodGet, "/?format=msgpack", nil)
	rec = httptest.NewRecorder()
	if err := f.WriteResponse(rec, req, table{Name: "CETUS"}, nil); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]string
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("msgpack decode: %v", err)
	}
	if decoded["name"] != "CETUS" {
		t.Errorf("msgpack should use json tags, got %v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	f := NewFormatter()
	req := httptest.NewRequest(http.MethodGet, "/api/analysis", nil)
	rec := httptest.NewRecorder()
	if err := f.WriteError(rec, req, http.StatusServiceUnavailable, "data source unavailable"); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "data source unavailable" {
		t.Errorf("body = %v", body)
	}
}
