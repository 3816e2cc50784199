package activityportal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"activityhub-backend/lib/retryutil"

	"go.opentelemetry.io/otel/codes"
)

// RawActivity is the inner payload of the portal's detail endpoint,
// before any normalization. The same endpoint serves the staff
// aggregate under its fixed identifier, which is when StaffMembers is
// populated.
type RawActivity struct {
	IsError         bool             `json:"isError"`
	ActivityID      string           `json:"activityID"`
	Name            string           `json:"activityName"`
	Category        string           `json:"category"`
	Description     string           `json:"description"`
	Location        string           `json:"location"`
	DayOfWeek       string           `json:"dayOfTheWeek"`
	StartTime       string           `json:"startTime"`
	EndTime         string           `json:"endTime"`
	TeacherName     string           `json:"teacherName"`
	ContactEmail    string           `json:"contactEmail"`
	MaxParticipants string           `json:"maxPupils"`
	Cost            string           `json:"cost"`
	Photo           string           `json:"photo"`
	StaffMembers    []RawStaffMember `json:"staffMembers"`
}

type RawStaffMember struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Email string `json:"email"`
}

func classifyFetchError(err error) retryutil.Decision {
	var rejected *AuthRejectedError
	if errors.As(err, &rejected) {
		return retryutil.Fail
	}
	return retryutil.Retry
}

// FetchActivity retrieves one record by id using the given token.
// Transient failures (network, 5xx, malformed payloads) are retried
// with a linearly increasing delay; a 4xx is reclassified as an
// *AuthRejectedError and raised immediately since retrying with the
// same token cannot succeed. (nil, nil) means the portal answered
// properly but has no such record.
func (c *Client) FetchActivity(ctx context.Context, id, token string) (*RawActivity, error) {
	ctx, span := tracer.Start(ctx, "client:FetchActivity")
	defer span.End()

	raw, err := retryutil.Do(
		ctx,
		c.attempts,
		retryutil.LinearDelay(c.delayUnit),
		classifyFetchError,
		func() (*RawActivity, error) {
			return c.fetchActivityOnce(ctx, id, token)
		},
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch activity")
		return nil, err
	}
	return raw, nil
}

func (c *Client) fetchActivityOnce(ctx context.Context, id, token string) (*RawActivity, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("cookie", token).
		SetHeader("content-type", "application/json; charset=utf-8").
		SetBody(map[string]string{"activityID": id}).
		Post(detailPath)
	if err != nil {
		return nil, err
	}

	status := res.StatusCode()
	if status >= 400 && status <= 499 {
		return nil, &AuthRejectedError{Status: status}
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("activity detail status %d", status)
	}

	// legacy ASP.NET envelope: {"d": "<json-encoded string>"}
	var envelope struct {
		D string `json:"d"`
	}
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return nil, fmt.Errorf("unexpected envelope: %w", err)
	}

	var raw RawActivity
	err = json.Unmarshal([]byte(envelope.D), &raw)
	if err != nil {
		return nil, fmt.Errorf("unexpected payload: %w", err)
	}
	if raw.IsError {
		// a well-formed "no such record" answer, not a failure
		return nil, nil
	}
	return &raw, nil
}
