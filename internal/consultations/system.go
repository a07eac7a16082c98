package consultations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/catalog"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/geocode"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/weather"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// System defines the public contract for consultation operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Analyze runs a submission through the pipeline and stores the record.
	// Gate rejections are stored too and returned as *RejectionError.
	Analyze(ctx context.Context, cmd AnalyzeCommand) (*Consultation, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Summary], error)

	Find(ctx context.Context, id uuid.UUID) (*Consultation, error)
	Chat(ctx context.Context, id uuid.UUID, cmd ChatCommand) (*ChatResponse, error)
}

// Blobs is the write side of image storage.
type Blobs interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type system struct {
	records    Records
	blobs      Blobs
	rt         *workflow.Runtime
	weather    weather.Client
	geocode    geocode.Client
	catalog    *catalog.Catalog
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates the consultation system. weather and geocode may be nil, in
// which case the corresponding context is left empty.
func New(
	records Records,
	blobs Blobs,
	rt *workflow.Runtime,
	weather weather.Client,
	geocode geocode.Client,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	return &system{
		records:    records,
		blobs:      blobs,
		rt:         rt,
		weather:    weather,
		geocode:    geocode,
		catalog:    rt.Catalog,
		logger:     logger.With("system", "consultations"),
		pagination: pagination,
	}
}

func (s *system) Handler(maxUploadSize int64) *Handler {
	return NewHandler(s, s.logger, s.pagination, maxUploadSize)
}

func (s *system) Analyze(ctx context.Context, cmd AnalyzeCommand) (*Consultation, error) {
	cmd, err := s.normalize(cmd)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	logger := s.logger.With("session_id", id)

	images, weatherText, locality, err := s.gather(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	result, err := workflow.Execute(ctx, s.rt, workflow.Submission{
		SessionID: id.String(),
		Images:    images,
		Crop:      cmd.CropName,
		Weather:   weatherText,
	})
	if err != nil {
		s.discard(ctx, images)
		return nil, err
	}

	urls := make([]string, len(images))
	for i, img := range images {
		urls[i] = img.URL
	}

	stored, err := s.records.Create(ctx, Consultation{
		SessionID: id,
		FarmerMetadata: FarmerMetadata{
			Name:            cmd.FarmerName,
			Village:         cmd.Village,
			GeocodedVillage: locality,
			Coordinates:     Coordinates{Lat: cmd.Latitude, Lng: cmd.Longitude},
		},
		CropMetadata: CropMetadata{
			CropName:     cmd.CropName,
			SownDate:     cmd.SownDate,
			Observations: cmd.Observations,
		},
		WeatherContext: weatherText,
		Location:       locality,
		DiagnosisLog:   result.Record.Log,
		FinalResult:    result.Record.Result,
		ImageURLs:      urls,
		ChatHistory:    []workflow.ChatTurn{},
	})
	if err != nil {
		s.discard(ctx, images)
		return nil, fmt.Errorf("store consultation: %w", err)
	}

	if !result.Decision.IsAccepted() {
		logger.Info("submission rejected", "outcome", result.Decision.Outcome)
		return nil, rejection(id, result.Decision, stored.FinalResult)
	}

	logger.Info("consultation complete",
		"disease", stored.FinalResult.DiseaseName,
		"verification", stored.FinalResult.VerificationStatus,
	)
	return stored, nil
}

func (s *system) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	if filters.Crop != nil && s.catalog != nil {
		if canonical, ok := s.catalog.CanonicalCrop(*filters.Crop); ok {
			filters.Crop = &canonical
		}
	}
	return s.records.List(ctx, page, filters)
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	return s.records.Find(ctx, id)
}

func (s *system) Chat(ctx context.Context, id uuid.UUID, cmd ChatCommand) (*ChatResponse, error) {
	cmd.Message = strings.TrimSpace(cmd.Message)
	if err := validate.Struct(cmd); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSubmission, describe(err))
	}

	c, err := s.records.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	res, err := workflow.Chat(ctx, s.rt, c.ChatRecord(), cmd.Message)
	if err != nil {
		return nil, err
	}

	n, err := s.records.AppendChat(ctx, id, res.Turn)
	if err != nil {
		return nil, fmt.Errorf("append chat: %w", err)
	}

	return &ChatResponse{
		SessionID:     id,
		Response:      res.Answer,
		HistoryLength: n,
	}, nil
}

func (s *system) normalize(cmd AnalyzeCommand) (AnalyzeCommand, error) {
	cmd.FarmerName = strings.TrimSpace(cmd.FarmerName)
	cmd.Village = strings.TrimSpace(cmd.Village)
	cmd.CropName = strings.TrimSpace(cmd.CropName)
	cmd.SownDate = strings.TrimSpace(cmd.SownDate)
	cmd.Observations = strings.TrimSpace(cmd.Observations)

	if err := validate.Struct(cmd); err != nil {
		return cmd, fmt.Errorf("%w: %s", ErrInvalidSubmission, describe(err))
	}

	canonical, ok := s.catalog.CanonicalCrop(cmd.CropName)
	if !ok {
		return cmd, fmt.Errorf("%w: %s", catalog.ErrUnknownCrop, cmd.CropName)
	}
	cmd.CropName = canonical
	return cmd, nil
}

// gather uploads the images and fetches weather and locality concurrently.
// Weather and geocoding failures are folded into their text; an upload
// failure removes whatever was already stored.
func (s *system) gather(
	ctx context.Context,
	id uuid.UUID,
	cmd AnalyzeCommand,
) ([]workflow.Image, string, string, error) {
	var (
		images      = make([]workflow.Image, len(cmd.Images))
		uploaded    = make([]bool, len(cmd.Images))
		weatherText string
		locality    string
	)

	g, gctx := errgroup.WithContext(ctx)

	for i, up := range cmd.Images {
		g.Go(func() error {
			key := imageKey(id, i+1, up)
			if err := s.blobs.Upload(gctx, key, up.Data, up.ContentType); err != nil {
				return fmt.Errorf("upload image %d: %w", i+1, err)
			}
			uploaded[i] = true
			images[i] = workflow.Image{
				Key:      key,
				URL:      s.blobs.PublicURL(key),
				MIMEType: up.ContentType,
				Data:     up.Data,
			}
			return nil
		})
	}

	if s.weather != nil {
		g.Go(func() error {
			weatherText = s.weather.Summarize(ctx, cmd.Latitude, cmd.Longitude)
			return nil
		})
	}

	if s.geocode != nil && s.geocode.Enabled() {
		g.Go(func() error {
			name, err := s.geocode.Locality(ctx, cmd.Latitude, cmd.Longitude)
			if err != nil {
				s.logger.Warn("reverse geocoding failed", "session_id", id, "error", err)
				return nil
			}
			locality = name
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var stored []workflow.Image
		for i, ok := range uploaded {
			if ok {
				stored = append(stored, images[i])
			}
		}
		s.discard(ctx, stored)
		return nil, "", "", err
	}

	return images, weatherText, locality, nil
}

// discard removes uploaded images after a failed submission. It runs on a
// fresh context so a cancelled request still cleans up.
func (s *system) discard(ctx context.Context, images []workflow.Image) {
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()

	for _, img := range images {
		if err := s.blobs.Delete(dctx, img.Key); err != nil {
			s.logger.Warn("compensating blob delete failed", "key", img.Key, "error", err)
		}
	}
}

func imageKey(id uuid.UUID, n int, up Upload) string {
	return fmt.Sprintf("%s/image_%d.%s", id, n, extension(up))
}

func extension(up Upload) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(up.Filename), ".")); ext {
	case "jpg", "jpeg", "png", "webp":
		return ext
	}
	switch up.ContentType {
	case "image/png":
		return "png"
	case "image/webp":
		return "webp"
	default:
		return "jpg"
	}
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, len(verrs))
	for i, fe := range verrs {
		parts[i] = fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag())
	}
	return strings.Join(parts, "; ")
}
