package activities

import (
	"context"
	"time"

	"activityhub-backend/lib/blobstore"
	"activityhub-backend/lib/kvstore"
	"activityhub-backend/lib/scrapers/activityportal"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/semaphore"
)

var tracer = otel.Tracer("services/activities")

// PortalClient is the slice of the portal scraper the service depends
// on, kept narrow so tests can stand in a fake portal.
type PortalClient interface {
	Login(ctx context.Context, username, password string) (string, error)
	Probe(ctx context.Context, token string) bool
	FetchActivity(ctx context.Context, id, token string) (*activityportal.RawActivity, error)
}

type ServiceOptions struct {
	KV     kvstore.Store
	Portal PortalClient
	// Blob may be nil, which disables photo offloading and asset cleanup.
	Blob blobstore.Store

	Username string
	Password string

	// inclusive id range swept by PopulateAll
	RangeStart int
	RangeEnd   int

	// portal identifier the staff aggregate is served under
	StaffID string

	StaleAfter      time.Duration
	StaffStaleAfter time.Duration

	// bound on in-flight portal fetches across all entry points
	Workers int64

	// object key prefix for offloaded photos
	AssetPrefix string
}

type Service struct {
	kv     kvstore.Store
	portal PortalClient
	blob   blobstore.Store
	creds  *CredentialStore
	sem    *semaphore.Weighted

	opts ServiceOptions
}

func NewService(opts ServiceOptions) *Service {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	if opts.StaleAfter <= 0 {
		opts.StaleAfter = time.Minute * 360
	}
	if opts.StaffStaleAfter <= 0 {
		opts.StaffStaleAfter = time.Minute * 1440
	}
	if opts.StaffID == "" {
		opts.StaffID = "staff"
	}
	if opts.AssetPrefix == "" {
		opts.AssetPrefix = "activities/"
	}

	return &Service{
		kv:     opts.KV,
		portal: opts.Portal,
		blob:   opts.Blob,
		creds:  NewCredentialStore(opts.KV),
		sem:    semaphore.NewWeighted(opts.Workers),
		opts:   opts,
	}
}
