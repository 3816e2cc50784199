package activities

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"activityhub-backend/lib/blobstore"
	"activityhub-backend/lib/scrapers/activityportal"
	"activityhub-backend/lib/testutil"
)

// fakePortal stands in for the scraper client. It hands out a fresh
// token per login and can be told to reject the next N fetches the way
// the real portal does when a session dies.
type fakePortal struct {
	mu sync.Mutex

	loginCalls int
	probeCalls int
	fetchCalls int

	loginErr   error
	probeOK    bool
	rejections int

	records map[string]*activityportal.RawActivity
}

func (p *fakePortal) Login(ctx context.Context, username, password string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loginCalls++
	if p.loginErr != nil {
		return "", p.loginErr
	}
	return fmt.Sprintf("token-%d", p.loginCalls), nil
}

func (p *fakePortal) Probe(ctx context.Context, token string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probeCalls++
	return p.probeOK
}

func (p *fakePortal) FetchActivity(ctx context.Context, id, token string) (*activityportal.RawActivity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fetchCalls++
	if p.rejections > 0 {
		p.rejections--
		return nil, &activityportal.AuthRejectedError{Status: 401}
	}
	return p.records[id], nil
}

func (p *fakePortal) counts() (logins, probes, fetches int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loginCalls, p.probeCalls, p.fetchCalls
}

func newTestService(t *testing.T, portal *fakePortal, blob blobstore.Store, mutate func(*ServiceOptions)) *Service {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{Name: "activities"})
	t.Cleanup(cleanup)

	opts := ServiceOptions{
		KV:         res.KV,
		Portal:     portal,
		Blob:       blob,
		Username:   "user",
		Password:   "pass",
		RangeStart: 1,
		RangeEnd:   5,
		StaleAfter: time.Hour,
		Workers:    1,
	}
	if mutate != nil {
		mutate(&opts)
	}
	return NewService(opts)
}

func minutesAgo(n int) *time.Time {
	at := time.Now().Add(-time.Duration(n) * time.Minute)
	return &at
}
