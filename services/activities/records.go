package activities

import (
	"encoding/json"
	"strings"
	"time"
)

const (
	activityKeyPrefix = "activity:"
	staffKey          = "staff"
	credentialKey     = "portal:credential"
)

// Source values recorded on cached entries. A fetched-empty entry is a
// positive "the portal has no such record" answer and carries no data.
const (
	SourceFetch      = "api-fetch"
	SourceFetchEmpty = "api-fetch-empty"
)

// ActivityRecord is the cached, normalized form of one activity. Error
// being set marks the entry as a retryable failure marker, LastCheck
// being unset marks it as never successfully reconciled.
type ActivityRecord struct {
	ID              string     `json:"id"`
	Name            string     `json:"name,omitempty"`
	Category        string     `json:"category,omitempty"`
	Description     string     `json:"description,omitempty"`
	Location        string     `json:"location,omitempty"`
	Day             string     `json:"day,omitempty"`
	StartTime       string     `json:"startTime,omitempty"`
	EndTime         string     `json:"endTime,omitempty"`
	Teacher         string     `json:"teacher,omitempty"`
	ContactEmail    string     `json:"contactEmail,omitempty"`
	MaxParticipants int        `json:"maxParticipants,omitempty"`
	Cost            string     `json:"cost,omitempty"`
	PhotoUrl        string     `json:"photoUrl,omitempty"`
	Source          string     `json:"source,omitempty"`
	Error           string     `json:"error,omitempty"`
	LastCheck       *time.Time `json:"lastCheck,omitempty"`
}

type StaffMember struct {
	Name  string `json:"name"`
	Role  string `json:"role,omitempty"`
	Email string `json:"email,omitempty"`
}

// StaffRecord is the cached staff aggregate. There is exactly one of
// these, under a fixed key.
type StaffRecord struct {
	Members   []StaffMember `json:"members"`
	Source    string        `json:"source,omitempty"`
	Error     string        `json:"error,omitempty"`
	LastCheck *time.Time    `json:"lastCheck,omitempty"`
}

func activityKey(id string) string {
	return activityKeyPrefix + id
}

func activityIdFromKey(key string) string {
	return strings.TrimPrefix(key, activityKeyPrefix)
}

func encodeActivity(rec *ActivityRecord) (string, error) {
	out, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeActivity(value string) (*ActivityRecord, error) {
	var rec ActivityRecord
	err := json.Unmarshal([]byte(value), &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func encodeStaff(rec *StaffRecord) (string, error) {
	out, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func decodeStaff(value string) (*StaffRecord, error) {
	var rec StaffRecord
	err := json.Unmarshal([]byte(value), &rec)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
