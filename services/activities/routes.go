package activities

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"activityhub-backend/lib/kvstore"

	"github.com/go-chi/chi/v5"
)

// Routes exposes the cache over a small read-oriented API. Reads never
// touch the portal; the admin triggers run in the background and return
// immediately.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/activities", s.handleListActivities)
	r.Get("/activities/{id}", s.handleGetActivity)
	r.Get("/staff", s.handleGetStaff)

	r.Post("/admin/populate", s.handleTrigger("populate", s.PopulateAll))
	r.Post("/admin/sweep", s.handleTrigger("sweep", s.RefreshStale))
	r.Post("/admin/staff", s.handleTrigger("staff refresh", func(ctx context.Context) error {
		return s.RefreshStaffIfDue(ctx, true)
	}))

	return r
}

func writeJson(w http.ResponseWriter, status int, body any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(body)
	if err != nil {
		slog.Error("encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJson(w, status, map[string]string{"error": message})
}

func (s *Service) handleListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	keys, err := s.kv.Scan(ctx, activityKeyPrefix)
	if err != nil {
		slog.ErrorContext(ctx, "scan activity cache", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to list activities")
		return
	}

	records := []*ActivityRecord{}
	for _, key := range keys {
		rec, err := s.readActivity(ctx, activityIdFromKey(key))
		if err != nil {
			if !errors.Is(err, kvstore.ErrNotFound) {
				slog.WarnContext(ctx, "read activity record", "key", key, "err", err)
			}
			continue
		}
		// error markers and confirmed-empty slots are bookkeeping, not
		// activities
		if rec.Error != "" || rec.Source == SourceFetchEmpty {
			continue
		}
		records = append(records, rec)
	}

	writeJson(w, http.StatusOK, records)
}

func (s *Service) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	rec, err := s.readActivity(ctx, id)
	if errors.Is(err, kvstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no such activity")
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "read activity record", "id", id, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read activity")
		return
	}
	if rec.Source == SourceFetchEmpty {
		writeError(w, http.StatusNotFound, "no such activity")
		return
	}
	if rec.Error != "" {
		writeError(w, http.StatusBadGateway, "activity could not be fetched")
		return
	}

	writeJson(w, http.StatusOK, rec)
}

func (s *Service) handleGetStaff(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	rec, err := s.readStaff(ctx)
	if errors.Is(err, kvstore.ErrNotFound) {
		writeError(w, http.StatusNotFound, "staff list not populated yet")
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "read staff record", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to read staff list")
		return
	}

	writeJson(w, http.StatusOK, rec)
}

func (s *Service) handleTrigger(name string, run func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		go func() {
			// detached from the request, these passes outlive it
			err := run(context.Background())
			if err != nil {
				slog.Warn("triggered pass failed", "pass", name, "err", err)
			}
		}()
		writeJson(w, http.StatusAccepted, map[string]string{"status": "started"})
	}
}
