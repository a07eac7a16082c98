package api

import (
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/consultations"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Consultations consultations.System
	Prompts       prompts.System
	Catalog       *catalog.Catalog
}

// NewDomain creates all domain systems from the API runtime. Prompt
// overrides stored in the database feed the consultation pipeline.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	consultationsSystem := consultations.New(
		consultations.NewRecords(db, runtime.Logger, runtime.Pagination),
		runtime.Storage,
		runtime.Workflow(promptsSystem),
		runtime.Weather,
		runtime.Geocode,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Consultations: consultationsSystem,
		Prompts:       promptsSystem,
		Catalog:       runtime.Catalog,
	}
}
