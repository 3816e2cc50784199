package activityportal

import (
	"context"
	"fmt"

	"activityhub-backend/lib/retryutil"

	"go.opentelemetry.io/otel/codes"
)

// Probe sends one lightweight read carrying the token to decide whether
// the portal still accepts it. Best-effort with a small retry budget and
// no backoff; every failure mode collapses to false.
func (c *Client) Probe(ctx context.Context, token string) bool {
	ctx, span := tracer.Start(ctx, "client:Probe")
	defer span.End()

	_, err := retryutil.Do(ctx, c.attempts, retryutil.NoDelay, nil, func() (struct{}, error) {
		res, err := c.http.R().
			SetContext(ctx).
			SetHeader("cookie", token).
			Get(probePath)
		if err != nil {
			return struct{}{}, err
		}
		// an expired session bounces to the login page with a 302,
		// which counts as a rejection here
		if !res.IsSuccess() {
			return struct{}{}, fmt.Errorf("probe status %d", res.StatusCode())
		}
		return struct{}{}, nil
	})
	if err != nil {
		span.SetStatus(codes.Ok, "token rejected")
		return false
	}
	return true
}
