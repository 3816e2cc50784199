package activities

import (
	"context"
	"errors"
	"log/slog"

	"activityhub-backend/lib/kvstore"
	"activityhub-backend/lib/timezone"
)

func (s *Service) readStaff(ctx context.Context) (*StaffRecord, error) {
	value, err := s.kv.Get(ctx, staffKey)
	if err != nil {
		return nil, err
	}
	return decodeStaff(value)
}

func (s *Service) writeStaff(ctx context.Context, rec *StaffRecord) {
	value, err := encodeStaff(rec)
	if err != nil {
		slog.ErrorContext(ctx, "encode staff record", "err", err)
		return
	}
	err = s.kv.Set(ctx, staffKey, value)
	if err != nil {
		slog.ErrorContext(ctx, "write staff record", "err", err)
	}
}

// RefreshStaffIfDue re-fetches the staff aggregate when it is missing
// or older than its own (longer) staleness threshold, or always when
// force is set. A failed fetch keeps serving the previous aggregate and
// bumps its lastCheck so the failure isn't hammered on every pass; with
// no previous aggregate nothing is written and the next pass tries
// again.
func (s *Service) RefreshStaffIfDue(ctx context.Context, force bool) error {
	ctx, span := tracer.Start(ctx, "service:RefreshStaffIfDue")
	defer span.End()

	current, err := s.readStaff(ctx)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		slog.WarnContext(ctx, "read staff record", "err", err)
		current = nil
	}
	if !force && !s.staffDue(current) {
		return nil
	}

	raw, err := s.fetchPortalRecord(ctx, s.opts.StaffID, false)
	now := timezone.Now()
	if err != nil || raw == nil {
		if current != nil && current.Error == "" {
			current.LastCheck = &now
			s.writeStaff(ctx, current)
		}
		return err
	}

	rec := normalizeStaff(raw)
	rec.LastCheck = &now
	s.writeStaff(ctx, rec)
	return nil
}

func (s *Service) staffDue(current *StaffRecord) bool {
	if current == nil || current.LastCheck == nil || current.Error != "" {
		return true
	}
	return current.LastCheck.Before(timezone.Now().Add(-s.opts.StaffStaleAfter))
}
