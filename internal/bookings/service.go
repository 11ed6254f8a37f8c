package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

// Service records completed bookings: the append-only file log is the
// durable write, the Postgres archive a best-effort mirror.
type Service struct {
	log     Log
	archive *PostgresArchive
	logger  *logging.Logger
	now     func() time.Time
}

// NewService creates the booking service. archive may be nil.
func NewService(log Log, archive *PostgresArchive, logger *logging.Logger) *Service {
	if log == nil {
		panic("bookings: log required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		log:     log,
		archive: archive,
		logger:  logger,
		now:     time.Now,
	}
}

// Record appends a completed appointment. The returned record is valid
// even when the error is non-nil, so the caller can still confirm to the
// sender after a failed write.
func (s *Service) Record(ctx context.Context, sender, name, phone, scheduledFor string) (Record, error) {
	rec := Record{
		ID:           uuid.NewString(),
		Name:         name,
		Phone:        phone,
		ScheduledFor: scheduledFor,
		Sender:       sender,
		RecordedAt:   s.now().UTC(),
	}

	if err := s.log.Append(ctx, rec); err != nil {
		return rec, err
	}

	if err := s.archive.Insert(ctx, rec); err != nil {
		s.logger.Warn("booking archive insert failed",
			"booking_id", rec.ID,
			"error", err,
		)
	}
	return rec, nil
}

// List returns booking records, preferring the archive when configured.
func (s *Service) List(ctx context.Context, limit int) ([]Record, error) {
	if s.archive != nil {
		return s.archive.List(ctx, limit)
	}
	return s.log.List(ctx, limit)
}
