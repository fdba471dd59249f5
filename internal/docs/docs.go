// Package docs serves the OpenAPI description of the API and a reference
// page rendering it.
package docs

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const (
	PagePath    = "/api/docs"
	OpenAPIPath = "/api/docs/openapi.yaml"
)

//go:embed openapi.yaml
var openapiYAML []byte

// Mount registers the reference page and the document on r.
func Mount(r chi.Router) {
	r.Get(PagePath, HandleDocs)
	r.Get(OpenAPIPath, HandleOpenAPI)
}

func HandleOpenAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(openapiYAML)
}

// HandleDocs renders the Scalar reference page. It relaxes the API's
// default-src 'none' policy just enough to load the viewer.
func HandleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Security-Policy",
		"default-src 'none'; "+
			"script-src https://cdn.jsdelivr.net 'unsafe-inline'; "+
			"style-src https://cdn.jsdelivr.net 'unsafe-inline'; "+
			"font-src https://cdn.jsdelivr.net data:; "+
			"img-src data:; connect-src 'self'; frame-ancestors 'none';")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(docsHTML))
}

const docsHTML = `<!DOCTYPE html>
<html><head>
  <title>SkyMotion Library API</title>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
</head><body>
  <script id="api-reference" data-url="` + OpenAPIPath + `"></script>
  <script src="https://cdn.jsdelivr.net/npm/@scalar/api-reference"></script>
</body></html>`
