package api

import (
	"net/http"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/config"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	routes.Register(
		mux,
		domain.Consultations.Handler(cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Prompts.Handler().Routes(),
		catalog.NewHandler(domain.Catalog, runtime.Logger).Routes(),
	)
}
