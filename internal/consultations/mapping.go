package consultations

import (
	"net/url"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/query"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "consultations", "c").
	Project("session_id", "SessionID").
	Project("created_at", "CreatedAt").
	Project("farmer_metadata", "FarmerMetadata").
	Project("crop_metadata", "CropMetadata").
	Project("weather_context", "WeatherContext").
	Project("location", "Location").
	Project("diagnosis_log", "DiagnosisLog").
	Project("final_result", "FinalResult").
	Project("image_urls", "ImageURLs").
	Project("chat_history", "ChatHistory")

var summaryProjection = query.
	NewProjectionMap("public", "consultations", "c").
	Project("session_id", "SessionID").
	Project("created_at", "CreatedAt").
	Computed("%[1]s.farmer_metadata->>'name'", "FarmerName").
	Computed("%[1]s.farmer_metadata->>'village'", "Village").
	Computed("%[1]s.crop_metadata->>'crop_name'", "CropName").
	Computed("%[1]s.final_result->>'disease_name'", "DiseaseName").
	Computed("COALESCE((%[1]s.final_result->>'confidence_score')::float8, 0)", "ConfidenceScore").
	Computed("%[1]s.diagnosis_log->>'outcome'", "Outcome").
	Computed("COALESCE((%[1]s.final_result->>'verified')::boolean, false)", "Verified").
	Expression("%[1]s.location", "Location")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters narrows a consultation listing. Nil fields are ignored; all
// matches are exact.
type Filters struct {
	Crop     *string `json:"crop,omitempty"`
	Outcome  *string `json:"outcome,omitempty"`
	Verified *bool   `json:"verified,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("CropName", f.Crop).
		WhereEquals("Outcome", f.Outcome).
		WhereBool("Verified", f.Verified)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if c := values.Get("crop"); c != "" {
		f.Crop = &c
	}

	if o := values.Get("outcome"); o != "" {
		f.Outcome = &o
	}

	switch values.Get("verified") {
	case "true":
		v := true
		f.Verified = &v
	case "false":
		v := false
		f.Verified = &v
	}

	return f
}

func scanConsultation(s repository.Scanner) (Consultation, error) {
	var (
		c        Consultation
		location *string
		farmer   repository.JSON[FarmerMetadata]
		crop     repository.JSON[CropMetadata]
		log      repository.JSON[workflow.DiagnosisLog]
		result   repository.JSON[workflow.FinalResult]
		images   repository.JSON[[]string]
		history  repository.JSON[[]workflow.ChatTurn]
	)

	err := s.Scan(
		&c.SessionID,
		&c.CreatedAt,
		&farmer,
		&crop,
		&c.WeatherContext,
		&location,
		&log,
		&result,
		&images,
		&history,
	)
	if err != nil {
		return Consultation{}, err
	}

	if location != nil {
		c.Location = *location
	}
	c.FarmerMetadata = farmer.V
	c.CropMetadata = crop.V
	c.DiagnosisLog = log.V
	c.FinalResult = result.V
	c.ImageURLs = nonNil(images.V)
	c.ChatHistory = nonNil(history.V)
	return c, nil
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var (
		sm      Summary
		name    *string
		village *string
		crop    *string
		disease *string
		outcome *string
	)

	err := s.Scan(
		&sm.SessionID,
		&sm.CreatedAt,
		&name,
		&village,
		&crop,
		&disease,
		&sm.ConfidenceScore,
		&outcome,
		&sm.Verified,
	)
	if err != nil {
		return Summary{}, err
	}

	sm.FarmerName = deref(name)
	sm.Village = deref(village)
	sm.CropName = deref(crop)
	sm.DiseaseName = deref(disease)
	sm.Outcome = deref(outcome)
	return sm, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
