// Package swagger serves the OpenAPI description of the analysis API.
package swagger

import (
	"net/http"
)

const (
	redocScript = "https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"
	specPath    = "/openapi.yaml"
)

// Register attaches the API docs routes to mux.
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> embedded OpenAPI document
func Register(mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}
	mux.Handle("GET /api-docs", static("text/html; charset=utf-8", []byte(docsPage)))
	mux.Handle("GET "+specPath, static("application/yaml; charset=utf-8", OpenAPI))
}

// static writes body with a fixed content type.
func static(contentType string, body []byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "no-cache")
		_, _ = w.Write(body)
	})
}

const docsPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>H4L analysis API</title>
  </head>
  <body style="margin:0">
    <redoc spec-url="` + specPath + `"></redoc>
    <script src="` + redocScript + `"></script>
  </body>
</html>`
