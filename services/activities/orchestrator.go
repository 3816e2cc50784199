package activities

import (
	"context"
	"errors"
	"log/slog"

	"activityhub-backend/lib/scrapers/activityportal"

	"go.opentelemetry.io/otel/codes"
)

// fetchPortalRecord wraps one portal fetch in the credential lifecycle:
// reuse the held token when a probe accepts it, log in otherwise, and
// on a mid-fetch rejection re-login and retry exactly once. A second
// rejection clears the stored credential and gives up, so a call never
// costs more than two fetches and two login handshakes.
func (s *Service) fetchPortalRecord(ctx context.Context, id string, forceLogin bool) (*activityportal.RawActivity, error) {
	ctx, span := tracer.Start(ctx, "service:fetchPortalRecord")
	defer span.End()

	token := ""
	if forceLogin {
		s.creds.Clear(ctx)
	} else {
		token = s.creds.Load(ctx)
		if token != "" && !s.portal.Probe(ctx, token) {
			s.creds.Clear(ctx)
			token = ""
		}
	}
	if token == "" {
		var err error
		token, err = s.login(ctx)
		if err != nil {
			span.SetStatus(codes.Error, "login failed")
			return nil, err
		}
	}

	raw, err := s.portal.FetchActivity(ctx, id, token)

	var rejected *activityportal.AuthRejectedError
	if errors.As(err, &rejected) {
		// the token went bad between probe and fetch
		s.creds.Clear(ctx)
		token, err = s.login(ctx)
		if err != nil {
			span.SetStatus(codes.Error, "re-login failed")
			return nil, err
		}
		raw, err = s.portal.FetchActivity(ctx, id, token)
		if errors.As(err, &rejected) {
			// a fresh token was rejected too, something is wrong
			// upstream and holding on to the credential won't help
			s.creds.Clear(ctx)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch portal record")
		slog.WarnContext(ctx, "fetch portal record", "id", id, "err", err)
		return nil, err
	}
	return raw, nil
}

func (s *Service) login(ctx context.Context) (string, error) {
	token, err := s.portal.Login(ctx, s.opts.Username, s.opts.Password)
	if err != nil {
		slog.WarnContext(ctx, "portal login", "err", err)
		return "", err
	}
	s.creds.Save(ctx, token)
	return token, nil
}

// FetchActivity fetches one activity through the credential lifecycle
// and normalizes it. (nil, nil) means the portal confirmed there is no
// such record. An error means the fetch itself failed and nothing is
// known about the record; callers must leave any cached entry alone.
func (s *Service) FetchActivity(ctx context.Context, id string, forceLogin bool) (*ActivityRecord, error) {
	raw, err := s.fetchPortalRecord(ctx, id, forceLogin)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}
	return normalizeActivity(id, raw), nil
}
