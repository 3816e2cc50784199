package activities

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"activityhub-backend/lib/htmlutil"
	"activityhub-backend/lib/scrapers/activityportal"

	"github.com/mazen160/go-random"
)

// normalizeActivity turns a raw portal payload into a cacheable record.
// Free-text fields get their markup and whitespace junk stripped, the
// participant cap is parsed best-effort (the portal serves it as text
// and sometimes serves garbage).
func normalizeActivity(id string, raw *activityportal.RawActivity) *ActivityRecord {
	maxParticipants, _ := strconv.Atoi(strings.TrimSpace(raw.MaxParticipants))

	return &ActivityRecord{
		ID:              id,
		Name:            htmlutil.CleanText(raw.Name),
		Category:        htmlutil.CleanText(raw.Category),
		Description:     htmlutil.StripTags(raw.Description),
		Location:        htmlutil.CleanText(raw.Location),
		Day:             htmlutil.CleanText(raw.DayOfWeek),
		StartTime:       strings.TrimSpace(raw.StartTime),
		EndTime:         strings.TrimSpace(raw.EndTime),
		Teacher:         htmlutil.CleanText(raw.TeacherName),
		ContactEmail:    strings.TrimSpace(raw.ContactEmail),
		MaxParticipants: maxParticipants,
		Cost:            htmlutil.CleanText(raw.Cost),
		PhotoUrl:        strings.TrimSpace(raw.Photo),
		Source:          SourceFetch,
	}
}

func normalizeStaff(raw *activityportal.RawActivity) *StaffRecord {
	members := []StaffMember{}
	for _, member := range raw.StaffMembers {
		name := htmlutil.CleanText(member.Name)
		if name == "" {
			continue
		}
		members = append(members, StaffMember{
			Name:  name,
			Role:  htmlutil.CleanText(member.Role),
			Email: strings.TrimSpace(member.Email),
		})
	}
	return &StaffRecord{
		Members: members,
		Source:  SourceFetch,
	}
}

// offloadPhoto moves an inline data-uri photo to the object store and
// rewrites the record's photo field to the public URL. Keys carry a
// random suffix so a re-fetched photo never overwrites the object a
// stale cached record still points at.
func (s *Service) offloadPhoto(ctx context.Context, rec *ActivityRecord) error {
	if s.blob == nil || !strings.HasPrefix(rec.PhotoUrl, "data:") {
		return nil
	}

	data, contentType, err := decodeDataURI(rec.PhotoUrl)
	if err != nil {
		return fmt.Errorf("decode photo: %w", err)
	}
	suffix, err := random.String(8)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%s-%s%s", s.opts.AssetPrefix, rec.ID, suffix, extensionFor(contentType))
	err = s.blob.Put(ctx, key, data, contentType)
	if err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}

	rec.PhotoUrl = s.blob.ObjectURL(key)
	return nil
}

func decodeDataURI(uri string) ([]byte, string, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data uri")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("malformed data uri payload: %w", err)
	}
	return data, contentType, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ""
}
