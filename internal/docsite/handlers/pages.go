package handlers

import (
	"bytes"
	"io/fs"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// ScriptTag loads the bridge script into a page.
const ScriptTag = `<script src="/_tracker/tracker.js" defer></script>`

// InjectScript inserts ScriptTag before </head>, or before </body> when the
// page has no head, or at the end. Markers are matched case-insensitively
// against the page bytes as served, so pages that are not valid UTF-8 keep
// their markup intact.
func InjectScript(html []byte) []byte {
	for _, marker := range [][]byte{[]byte("</head>"), []byte("</body>")} {
		if i := indexFold(html, marker); i >= 0 {
			out := make([]byte, 0, len(html)+len(ScriptTag)+1)
			out = append(out, html[:i]...)
			out = append(out, ScriptTag...)
			out = append(out, '\n')
			return append(out, html[i:]...)
		}
	}
	out := make([]byte, 0, len(html)+len(ScriptTag)+1)
	out = append(out, html...)
	out = append(out, '\n')
	return append(out, ScriptTag...)
}

// indexFold returns the offset in s of the first case-insensitive match of
// marker, or -1. Offsets always index s itself.
func indexFold(s, marker []byte) int {
	for i := 0; i+len(marker) <= len(s); {
		j := bytes.Index(s[i:], []byte("</"))
		if j < 0 {
			return -1
		}
		i += j
		if i+len(marker) > len(s) {
			return -1
		}
		if bytes.EqualFold(s[i:i+len(marker)], marker) {
			return i
		}
		i += 2
	}
	return -1
}

// HandlePages serves documentation pages and assets from pages. HTML pages
// get the bridge script injected; directories serve their index.html.
func HandlePages(pages fs.FS) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
			return
		}

		reqPath := c.Request.URL.Path
		name := strings.TrimPrefix(path.Clean("/"+reqPath), "/")
		if name == "" {
			name = "."
		}

		info, err := fs.Stat(pages, name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found", "path": reqPath})
			return
		}

		if info.IsDir() {
			if !strings.HasSuffix(reqPath, "/") {
				c.Redirect(http.StatusMovedPermanently, reqPath+"/")
				return
			}
			name = path.Join(name, "index.html")
		}

		data, err := fs.ReadFile(pages, name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "page not found", "path": reqPath})
			return
		}

		contentType := mime.TypeByExtension(path.Ext(name))
		if contentType == "" {
			contentType = http.DetectContentType(data)
		}
		if strings.HasPrefix(contentType, "text/html") {
			data = InjectScript(data)
		}

		c.Data(http.StatusOK, contentType, data)
	}
}
