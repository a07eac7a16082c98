package consultations

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/workflow"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/query"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/repository"
)

const returning = `RETURNING session_id, created_at, farmer_metadata, crop_metadata, weather_context,
		location, diagnosis_log, final_result, image_urls, chat_history`

// Records persists consultations. Apart from Create, the only write is
// AppendChat, which extends chat_history in a single statement.
type Records interface {
	Create(ctx context.Context, c Consultation) (*Consultation, error)
	Find(ctx context.Context, id uuid.UUID) (*Consultation, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Summary], error)
	AppendChat(ctx context.Context, id uuid.UUID, turns []workflow.ChatTurn) (int, error)
}

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewRecords creates the PostgreSQL-backed Records.
func NewRecords(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Records {
	return &repo{
		db:         db,
		logger:     logger.With("system", "consultation-records"),
		pagination: pagination,
	}
}

func (r *repo) Create(ctx context.Context, c Consultation) (*Consultation, error) {
	q := `
		INSERT INTO consultations(session_id, farmer_metadata, crop_metadata, weather_context,
			location, diagnosis_log, final_result, image_urls, chat_history)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		` + returning

	args := []any{
		c.SessionID,
		repository.NewJSON(c.FarmerMetadata),
		repository.NewJSON(c.CropMetadata),
		c.WeatherContext,
		c.Location,
		repository.NewJSON(c.DiagnosisLog),
		repository.NewJSON(c.FinalResult),
		repository.NewJSON(nonNil(c.ImageURLs)),
		repository.NewJSON(nonNil(c.ChatHistory)),
	}

	created, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Consultation, error) {
		return repository.QueryOne(ctx, tx, q, args, scanConsultation)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("consultation stored", "session_id", created.SessionID, "outcome", created.DiagnosisLog.Outcome)
	return &created, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Consultation, error) {
	q, args := query.NewBuilder(projection).BuildSingle("SessionID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanConsultation)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Summary], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(summaryProjection, defaultSort).
		WhereSearch(page.Search, "FarmerName", "Village", "DiseaseName", "Location")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	total, err := repository.QueryValue[int](ctx, r.db, countSQL, countArgs)
	if err != nil {
		return nil, fmt.Errorf("count consultations: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSummary)
	if err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

// AppendChat appends turns to the stored history and returns its new length.
// Concurrent appends on one session serialize on the row lock.
func (r *repo) AppendChat(ctx context.Context, id uuid.UUID, turns []workflow.ChatTurn) (int, error) {
	n, err := repository.QueryValue[int](
		ctx, r.db,
		`UPDATE consultations
		SET chat_history = chat_history || $2::jsonb
		WHERE session_id = $1
		RETURNING jsonb_array_length(chat_history)`,
		[]any{id, repository.NewJSON(turns)},
	)
	if err != nil {
		return 0, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return n, nil
}
