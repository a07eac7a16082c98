package catalog

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/handlers"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/routes"
)

// CropDiseases is the response body for a single crop.
type CropDiseases struct {
	Crop     string   `json:"crop"`
	Diseases []string `json:"diseases"`
}

// Handler serves the read-only disease catalog.
type Handler struct {
	catalog *Catalog
	logger  *slog.Logger
}

func NewHandler(catalog *Catalog, logger *slog.Logger) *Handler {
	return &Handler{
		catalog: catalog,
		logger:  logger.With("handler", "diseases"),
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/diseases",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{crop}", Handler: h.ByCrop},
		},
	}
}

// List returns every supported crop in declaration order with its diseases.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	crops := h.catalog.Crops()
	out := make([]CropDiseases, len(crops))
	for i, crop := range crops {
		out[i] = CropDiseases{Crop: crop, Diseases: h.catalog.Diseases(crop)}
	}
	handlers.RespondJSON(w, http.StatusOK, out)
}

func (h *Handler) ByCrop(w http.ResponseWriter, r *http.Request) {
	crop := r.PathValue("crop")
	diseases := h.catalog.Diseases(crop)
	if diseases == nil {
		err := fmt.Errorf("%w: %s", ErrUnknownCrop, crop)
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	canonical, _ := h.catalog.CanonicalCrop(crop)
	handlers.RespondJSON(w, http.StatusOK, CropDiseases{Crop: canonical, Diseases: diseases})
}
