package consultations

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/formatting"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/handlers"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/routes"
)

// Handler provides HTTP endpoints for consultations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "consultations"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for consultation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/consultations",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Analyze},
			{Method: "POST", Pattern: "/{id}/chat", Handler: h.Chat},
		},
	}
}

// List returns a paginated list of consultation summaries.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single consultation by its session id.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSession)
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, c)
}

// Analyze accepts a multipart submission of one to three leaf photos in the
// "files" field plus farmer and crop metadata.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidSubmission, err))
			return
		}
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge,
			fmt.Errorf("%w: limit %s", ErrUploadTooLarge, formatting.FormatBytes(h.maxUploadSize, 0)))
		return
	}

	cmd, err := commandFromForm(r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	c, err := h.sys.Analyze(r.Context(), cmd)
	if err != nil {
		var rej *RejectionError
		if errors.As(err, &rej) {
			h.logger.Warn("submission rejected", "session_id", rej.SessionID, "error", err)
			handlers.RespondJSON(w, http.StatusUnprocessableEntity, rej.Payload())
			return
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, c)
}

// Chat answers a follow-up question about a stored consultation.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidSession)
		return
	}

	cmd, err := handlers.DecodeJSON[ChatCommand](r)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %w", ErrInvalidSubmission, err))
		return
	}

	resp, err := h.sys.Chat(r.Context(), id, cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, resp)
}

func commandFromForm(r *http.Request) (AnalyzeCommand, error) {
	lat, err := parseCoordinate(r.FormValue("latitude"))
	if err != nil {
		return AnalyzeCommand{}, fmt.Errorf("%w: latitude: %w", ErrInvalidSubmission, err)
	}
	lng, err := parseCoordinate(r.FormValue("longitude"))
	if err != nil {
		return AnalyzeCommand{}, fmt.Errorf("%w: longitude: %w", ErrInvalidSubmission, err)
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["files"]
	}

	images := make([]Upload, 0, len(headers))
	for _, fh := range headers {
		up, err := readUpload(fh)
		if err != nil {
			return AnalyzeCommand{}, fmt.Errorf("%w: %s: %w", ErrInvalidSubmission, fh.Filename, err)
		}
		images = append(images, up)
	}

	return AnalyzeCommand{
		FarmerName:   r.FormValue("farmer_name"),
		Village:      r.FormValue("village"),
		Latitude:     lat,
		Longitude:    lng,
		CropName:     r.FormValue("crop_name"),
		SownDate:     r.FormValue("sown_date"),
		Observations: r.FormValue("observations"),
		Images:       images,
	}, nil
}

func parseCoordinate(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func readUpload(fh *multipart.FileHeader) (Upload, error) {
	f, err := fh.Open()
	if err != nil {
		return Upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return Upload{}, err
	}

	return Upload{
		Filename:    fh.Filename,
		ContentType: detectContentType(fh.Header.Get("Content-Type"), data),
		Data:        data,
	}, nil
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
