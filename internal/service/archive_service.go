package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/milanfarm/farmbook/farmbook-backend/internal/domain"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/i18n"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/ledger"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/repository/storage"
	"github.com/milanfarm/farmbook/farmbook-backend/internal/websocket"
)

// Archive kinds
const (
	ArchiveKindExpenses = "expenses"
	ArchiveKindStay     = "stay"
)

// ArchiveRequest selects what to export
type ArchiveRequest struct {
	Kind   string
	Format string
	Window ledger.Window
	Lang   i18n.Lang
}

// ArchivedExport describes an uploaded export
type ArchivedExport struct {
	Name       string    `json:"name"`
	ObjectPath string    `json:"objectPath"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

// ArchiveService uploads exports to object storage and hands out presigned links
type ArchiveService struct {
	storage        storage.ArchiveRepository
	expenses       *ExpenseService
	stay           *StayService
	urlTTL         time.Duration
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewArchiveService creates a new ArchiveService. A nil repository disables archiving.
func NewArchiveService(repo storage.ArchiveRepository, expenses *ExpenseService, stay *StayService, urlTTL time.Duration, logger zerolog.Logger) *ArchiveService {
	return &ArchiveService{
		storage:        repo,
		expenses:       expenses,
		stay:           stay,
		urlTTL:         urlTTL,
		eventPublisher: &websocket.NoOpPublisher{},
		logger:         logger.With().Str("component", "archive_service").Logger(),
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates. A nil
// publisher restores the no-op default.
func (s *ArchiveService) SetEventPublisher(publisher websocket.EventPublisher) {
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	s.eventPublisher = publisher
}

func (s *ArchiveService) publishEvent(tenantID string, event websocket.Event) {
	s.eventPublisher.Publish(tenantID, event)
}

// IsEnabled indicates whether an archive backend is configured
func (s *ArchiveService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// Archive renders the requested export, uploads it and returns a download link
func (s *ArchiveService) Archive(ctx context.Context, tenantID string, req ArchiveRequest) (*ArchivedExport, error) {
	if !s.IsEnabled() {
		return nil, domain.ErrArchiveDisabled
	}

	var (
		file *ExportFile
		err  error
	)
	switch req.Kind {
	case ArchiveKindExpenses:
		file, err = s.expenses.ExportExpenses(ctx, tenantID, req.Window, req.Format, req.Lang)
	case ArchiveKindStay:
		file, err = s.stay.ExportStay(ctx, tenantID, req.Format, req.Lang)
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	objectPath := storage.GenerateObjectPath(tenantID, file.Name, now)
	if err := s.storage.Put(ctx, objectPath, file.Data, file.ContentType); err != nil {
		s.logger.Error().Err(err).Str("tenant_id", tenantID).Str("object_path", objectPath).Msg("Export upload failed")
		return nil, err
	}

	url, err := s.storage.PresignedURL(ctx, objectPath, s.urlTTL)
	if err != nil {
		return nil, err
	}

	archived := &ArchivedExport{
		Name:       file.Name,
		ObjectPath: objectPath,
		URL:        url,
		ExpiresAt:  now.Add(s.urlTTL).UTC(),
	}

	s.logger.Info().
		Str("tenant_id", tenantID).
		Str("object_path", objectPath).
		Int("bytes", len(file.Data)).
		Msg("Export archived")

	s.publishEvent(tenantID, websocket.ExportArchived(archived))
	return archived, nil
}
