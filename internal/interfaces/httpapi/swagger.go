package httpapi

import (
	"bytes"
	_ "embed"
	"html/template"
	"net/http"
	"sync"
)

const (
	swaggerTitle = "Baseball Player Stats API"
	openAPIPath  = "/openapi.yaml"
)

//go:embed openapi.yaml
var openAPISpec []byte

var swaggerPage = template.Must(template.New("swagger").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}}</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: {{.SpecURL}},
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis],
      });
    </script>
  </body>
</html>
`))

// renderSwaggerPage runs once; the page never changes for the process.
var renderSwaggerPage = sync.OnceValues(func() ([]byte, error) {
	var buf bytes.Buffer
	err := swaggerPage.Execute(&buf, struct{ Title, SpecURL string }{swaggerTitle, openAPIPath})
	return buf.Bytes(), err
})

func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.OpenAPI")
	defer span.End()

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	if _, err := w.Write(openAPISpec); err != nil {
		h.logger.WarnContext(ctx, "write openapi spec failed", "error", err)
	}
}

func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwaggerUI")
	defer span.End()

	page, err := renderSwaggerPage()
	if err != nil {
		h.logger.ErrorContext(ctx, "render swagger page failed", "error", err)
		writeInternalError(ctx, w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
