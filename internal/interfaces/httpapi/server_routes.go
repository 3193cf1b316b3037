package httpapi

import "net/http"

type route struct {
	pattern string
	handle  http.HandlerFunc
}

func systemRoutes(h *Handler, swaggerEnabled bool) []route {
	routes := []route{{"GET /healthz", h.Healthz}}
	if swaggerEnabled {
		routes = append(routes,
			route{"GET " + openAPIPath, h.OpenAPI},
			route{"GET /docs", h.SwaggerUI},
			route{"GET /docs/", h.SwaggerUI},
		)
	}
	return routes
}

// Refresh answers both GET and POST so cron jobs and browsers can trigger it.
func playerStatRoutes(h *Handler) []route {
	return []route{
		{"GET /get-player-stats", h.GetPlayerStats},
		{"GET /refresh-data", h.RefreshData},
		{"POST /refresh-data", h.RefreshData},
		{"POST /edit-player/{playerID}", h.EditPlayer},
		{"POST /query-openai", h.QueryOpenAI},
		{"GET /players/{playerID}", h.GetPlayer},
		{"POST /players/{playerID}/summary", h.SummarizePlayer},
	}
}

func register(mux *http.ServeMux, groups ...[]route) {
	for _, routes := range groups {
		for _, r := range routes {
			mux.HandleFunc(r.pattern, r.handle)
		}
	}
}
