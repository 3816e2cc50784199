package activities

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"activityhub-backend/lib/kvstore"
	"activityhub-backend/lib/timezone"

	"go.opentelemetry.io/otel/codes"
)

func (s *Service) readActivity(ctx context.Context, id string) (*ActivityRecord, error) {
	value, err := s.kv.Get(ctx, activityKey(id))
	if err != nil {
		return nil, err
	}
	return decodeActivity(value)
}

func (s *Service) writeActivity(ctx context.Context, rec *ActivityRecord) {
	value, err := encodeActivity(rec)
	if err != nil {
		slog.ErrorContext(ctx, "encode activity record", "id", rec.ID, "err", err)
		return
	}
	err = s.kv.Set(ctx, activityKey(rec.ID), value)
	if err != nil {
		slog.ErrorContext(ctx, "write activity record", "id", rec.ID, "err", err)
	}
}

// refreshActivity fetches one record and stores the outcome. When the
// fetch itself fails the entry is left exactly as it was: it is still
// missing or stale, so the next sweep picks it up again. Failures after
// a successful fetch are cached as error markers for the same reason.
func (s *Service) refreshActivity(ctx context.Context, id string) {
	rec, err := s.FetchActivity(ctx, id, false)
	if err != nil {
		return
	}

	now := timezone.Now()
	if rec == nil {
		s.writeActivity(ctx, &ActivityRecord{
			ID:        id,
			Source:    SourceFetchEmpty,
			LastCheck: &now,
		})
		return
	}

	err = s.offloadPhoto(ctx, rec)
	if err != nil {
		slog.WarnContext(ctx, "offload activity photo", "id", id, "err", err)
		s.writeActivity(ctx, &ActivityRecord{
			ID:        id,
			Source:    SourceFetch,
			Error:     err.Error(),
			LastCheck: &now,
		})
		return
	}

	rec.LastCheck = &now
	s.writeActivity(ctx, rec)
}

// submit schedules one record refresh, honoring the shared worker bound.
func (s *Service) submit(ctx context.Context, wg *sync.WaitGroup, id string) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		err := s.sem.Acquire(ctx, 1)
		if err != nil {
			return
		}
		defer s.sem.Release(1)
		s.refreshActivity(ctx, id)
	}()
}

func needsPopulate(rec *ActivityRecord, err error) bool {
	if err != nil {
		// missing or unreadable
		return true
	}
	return rec.LastCheck == nil || rec.Error != ""
}

// PopulateAll walks the configured id range and fetches every record
// that has never been successfully reconciled. Entries that already
// carry a clean lastCheck are skipped untouched, so running it twice in
// a row is a no-op.
func (s *Service) PopulateAll(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "service:PopulateAll")
	defer span.End()

	wg := sync.WaitGroup{}
	scheduled := 0
	for id := s.opts.RangeStart; id <= s.opts.RangeEnd; id++ {
		idStr := strconv.Itoa(id)
		rec, err := s.readActivity(ctx, idStr)
		if !needsPopulate(rec, err) {
			continue
		}
		scheduled++
		s.submit(ctx, &wg, idStr)
	}
	wg.Wait()

	slog.InfoContext(ctx, "populate pass done", "scheduled", scheduled)
	return ctx.Err()
}

func (s *Service) needsRefresh(rec *ActivityRecord, err error, threshold time.Time) bool {
	if needsPopulate(rec, err) {
		return true
	}
	return rec.LastCheck.Before(threshold)
}

// RefreshStale re-fetches every cached record older than the staleness
// threshold, plus any error markers left by earlier passes. Orphaned
// asset cleanup is folded into the same pass since both walk the cache.
func (s *Service) RefreshStale(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "service:RefreshStale")
	defer span.End()

	keys, err := s.kv.Scan(ctx, activityKeyPrefix)
	if err != nil {
		span.SetStatus(codes.Error, "failed to scan cache")
		return err
	}

	threshold := timezone.Now().Add(-s.opts.StaleAfter)
	wg := sync.WaitGroup{}
	scheduled := 0
	for _, key := range keys {
		id := activityIdFromKey(key)
		rec, err := s.readActivity(ctx, id)
		if !s.needsRefresh(rec, err, threshold) {
			continue
		}
		scheduled++
		s.submit(ctx, &wg, id)
	}

	// cleanup sees the cache as it stood before this pass's refreshes
	// land, which is safe: it only deletes assets no record references
	err = s.CleanupOrphans(ctx)
	if err != nil {
		slog.WarnContext(ctx, "cleanup orphaned assets", "err", err)
	}

	wg.Wait()
	slog.InfoContext(ctx, "staleness sweep done", "scheduled", scheduled)
	return ctx.Err()
}

// CleanupOrphans deletes stored photo objects no current cache record
// points at. Only clean, non-empty records protect their asset; error
// markers and confirmed-empty entries reference nothing.
func (s *Service) CleanupOrphans(ctx context.Context) error {
	if s.blob == nil {
		return nil
	}

	ctx, span := tracer.Start(ctx, "service:CleanupOrphans")
	defer span.End()

	keys, err := s.kv.Scan(ctx, activityKeyPrefix)
	if err != nil {
		return err
	}
	referenced := map[string]bool{}
	for _, key := range keys {
		rec, err := s.readActivity(ctx, activityIdFromKey(key))
		if err != nil {
			if !errors.Is(err, kvstore.ErrNotFound) {
				slog.WarnContext(ctx, "read activity record", "key", key, "err", err)
			}
			continue
		}
		if rec.Error != "" || rec.Source == SourceFetchEmpty || rec.PhotoUrl == "" {
			continue
		}
		referenced[rec.PhotoUrl] = true
	}

	objects, err := s.blob.List(ctx, s.opts.AssetPrefix)
	if err != nil {
		return err
	}
	deleted := 0
	for _, object := range objects {
		if referenced[s.blob.ObjectURL(object)] {
			continue
		}
		err = s.blob.Delete(ctx, object)
		if err != nil {
			slog.WarnContext(ctx, "delete orphaned asset", "key", object, "err", err)
			continue
		}
		deleted++
	}

	if deleted > 0 {
		slog.InfoContext(ctx, "deleted orphaned assets", "count", deleted)
	}
	return nil
}
