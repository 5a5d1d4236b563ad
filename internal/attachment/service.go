package attachment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/dukerupert/dutyroster/internal/model"
)

// Records looks up completion records.
type Records interface {
	GetByID(ctx context.Context, id int64) (*model.CompletionRecord, error)
}

// Marker flags an image slot on a completion record.
type Marker interface {
	MarkAttachment(ctx context.Context, id int64, slot int) error
}

// Service ties uploads to completion records: the image is stored first
// and the record's slot flag is set only once the image is in place.
type Service struct {
	processor Processor
	store     Store
	records   Records
	marker    Marker
	logger    *slog.Logger
}

func NewService(p Processor, store Store, records Records, marker Marker, logger *slog.Logger) *Service {
	return &Service{processor: p, store: store, records: records, marker: marker, logger: logger}
}

// Upload compresses the image in r and attaches it to slot of record id.
// It returns the stored size in bytes.
func (s *Service) Upload(ctx context.Context, id int64, slot int, r io.Reader) (int, error) {
	if !model.ValidSlot(slot) {
		return 0, fmt.Errorf("invalid attachment slot %d", slot)
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("get completion: %w", err)
	}
	if rec == nil {
		return 0, fmt.Errorf("completion %d: %w", id, ErrNotFound)
	}

	data, err := s.processor.Process(r)
	if err != nil {
		return 0, err
	}
	if err := s.store.Put(ctx, Key(id, slot), data); err != nil {
		return 0, fmt.Errorf("store attachment: %w", err)
	}
	if err := s.marker.MarkAttachment(ctx, id, slot); err != nil {
		return 0, err
	}
	s.logger.Info("attachment stored", "completion_id", id, "slot", slot, "bytes", len(data))
	return len(data), nil
}

// Open returns the stored JPEG for slot of record id. The caller closes
// the reader.
func (s *Service) Open(ctx context.Context, id int64, slot int) (io.ReadCloser, error) {
	if !model.ValidSlot(slot) {
		return nil, ErrNotFound
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get completion: %w", err)
	}
	if rec == nil || !rec.Attachments.Has(slot) {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, Key(id, slot))
}
