// Package consultations accepts farmer submissions, runs them through the
// diagnosis pipeline, persists the resulting records, and serves follow-up
// chat grounded in them.
package consultations

import (
	"time"

	"github.com/google/uuid"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// FarmerMetadata identifies the submitting farmer. GeocodedVillage is the
// locality resolved from Coordinates, when available.
type FarmerMetadata struct {
	Name            string      `json:"name"`
	Village         string      `json:"village"`
	GeocodedVillage string      `json:"geocoded_village,omitempty"`
	Coordinates     Coordinates `json:"coordinates"`
}

type CropMetadata struct {
	CropName     string `json:"crop_name"`
	SownDate     string `json:"sown_date,omitempty"`
	Observations string `json:"observations,omitempty"`
}

// Consultation is a persisted diagnosis session. It is written once by
// Analyze; only ChatHistory changes afterwards.
type Consultation struct {
	SessionID      uuid.UUID             `json:"session_id"`
	CreatedAt      time.Time             `json:"created_at"`
	FarmerMetadata FarmerMetadata        `json:"farmer_metadata"`
	CropMetadata   CropMetadata          `json:"crop_metadata"`
	WeatherContext string                `json:"weather_context"`
	Location       string                `json:"location,omitempty"`
	DiagnosisLog   workflow.DiagnosisLog `json:"diagnosis_log"`
	FinalResult    workflow.FinalResult  `json:"final_result"`
	ImageURLs      []string              `json:"image_urls"`
	ChatHistory    []workflow.ChatTurn   `json:"chat_history"`
}

// ChatRecord projects the fields that ground a chat turn.
func (c *Consultation) ChatRecord() workflow.ChatRecord {
	return workflow.ChatRecord{
		Crop:    c.CropMetadata.CropName,
		Weather: c.WeatherContext,
		Log:     c.DiagnosisLog,
		Result:  c.FinalResult,
		History: c.ChatHistory,
	}
}

// Summary is the list view of a consultation.
type Summary struct {
	SessionID       uuid.UUID `json:"session_id"`
	CreatedAt       time.Time `json:"created_at"`
	FarmerName      string    `json:"farmer_name"`
	Village         string    `json:"village"`
	CropName        string    `json:"crop_name"`
	DiseaseName     string    `json:"disease_name"`
	ConfidenceScore float64   `json:"confidence_score"`
	Outcome         string    `json:"outcome"`
	Verified        bool      `json:"verified"`
}

// Upload is one submitted photograph.
type Upload struct {
	Filename    string
	ContentType string `validate:"required,startswith=image/"`
	Data        []byte `validate:"required"`
}

// AnalyzeCommand is a validated submission.
type AnalyzeCommand struct {
	FarmerName   string   `validate:"required,max=100"`
	Village      string   `validate:"required,max=100"`
	Latitude     float64  `validate:"latitude"`
	Longitude    float64  `validate:"longitude"`
	CropName     string   `validate:"required,max=50"`
	SownDate     string   `validate:"omitempty,datetime=2006-01-02"`
	Observations string   `validate:"max=500"`
	Images       []Upload `validate:"min=1,max=3,dive"`
}

// ChatCommand is the body of a chat request.
type ChatCommand struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// ChatResponse is the reply to a chat request.
type ChatResponse struct {
	SessionID     uuid.UUID `json:"session_id"`
	Response      string    `json:"response"`
	HistoryLength int       `json:"history_length"`
}
