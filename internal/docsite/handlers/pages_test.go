package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/gin-gonic/gin"
)

func TestInjectScript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "before head close",
			in:   "<html><head><title>x</title></head><body></body></html>",
			want: "<html><head><title>x</title>" + ScriptTag + "\n</head><body></body></html>",
		},
		{
			name: "uppercase head",
			in:   "<HTML><HEAD></HEAD></HTML>",
			want: "<HTML><HEAD>" + ScriptTag + "\n</HEAD></HTML>",
		},
		{
			name: "body only",
			in:   "<body>hi</body>",
			want: "<body>hi" + ScriptTag + "\n</body>",
		},
		{
			name: "latin-1 bytes before head close",
			in:   "<html><head><title>Caf\xe9</title></head><body></body></html>",
			want: "<html><head><title>Caf\xe9</title>" + ScriptTag + "\n</head><body></body></html>",
		},
		{
			name: "kelvin sign before head close",
			in:   "<html><head><title>300 \u212a</title></head></html>",
			want: "<html><head><title>300 \u212a</title>" + ScriptTag + "\n</head></html>",
		},
		{
			name: "dotted capital I before body close",
			in:   "<body>\u0130stanbul \u0130\u0130\u0130</BODY>",
			want: "<body>\u0130stanbul \u0130\u0130\u0130" + ScriptTag + "\n</BODY>",
		},
		{
			name: "close tag prefix at end",
			in:   "<p>x</p></he",
			want: "<p>x</p></he\n" + ScriptTag,
		},
		{
			name: "fragment",
			in:   "<p>hi</p>",
			want: "<p>hi</p>\n" + ScriptTag,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(InjectScript([]byte(tt.in))); got != tt.want {
				t.Errorf("InjectScript() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHandlePages(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pages := fstest.MapFS{
		"index.html":       {Data: []byte("<html><head></head><body>home</body></html>")},
		"guide/index.html": {Data: []byte("<html><head></head><body>guide</body></html>")},
		"assets/site.css":  {Data: []byte("body{}")},
	}

	router := gin.New()
	router.NoRoute(HandlePages(pages))

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantScript bool
	}{
		{name: "root", method: "GET", path: "/", wantStatus: 200, wantScript: true},
		{name: "directory index", method: "GET", path: "/guide/", wantStatus: 200, wantScript: true},
		{name: "directory redirect", method: "GET", path: "/guide", wantStatus: 301},
		{name: "asset untouched", method: "GET", path: "/assets/site.css", wantStatus: 200},
		{name: "missing", method: "GET", path: "/missing/", wantStatus: 404},
		{name: "traversal is cleaned", method: "GET", path: "/../index.html", wantStatus: 200, wantScript: true},
		{name: "post rejected", method: "POST", path: "/", wantStatus: 405},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if got := strings.Contains(w.Body.String(), ScriptTag); got != tt.wantScript {
				t.Errorf("script injected = %v, want %v", got, tt.wantScript)
			}
			if tt.wantStatus == http.StatusOK && tt.path == "/assets/site.css" {
				if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/css") {
					t.Errorf("Content-Type = %q", ct)
				}
			}
		})
	}
}

func TestRenderBridgeScript(t *testing.T) {
	script, err := RenderBridgeScript(PublicConfig{Repo: "agntcy/docs", BatchSize: 50, SubmitInterval: 600000, IssueLabel: "visit-data"})
	if err != nil {
		t.Fatalf("RenderBridgeScript() error = %v", err)
	}
	want := `var CONFIG = {"repo":"agntcy/docs","batchSize":50,"submitInterval":600000,"issueLabel":"visit-data"};`
	if !strings.Contains(script, want) {
		t.Errorf("script does not embed config:\n%s", script[:200])
	}
}
