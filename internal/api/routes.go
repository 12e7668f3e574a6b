package api

import (
	"net/http"

	"github.com/kbristol/sift/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Triage.Handler().Routes(),
	)
}
