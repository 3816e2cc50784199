package activities

import (
	"context"
	"errors"
	"testing"

	"activityhub-backend/lib/kvstore"
	"activityhub-backend/lib/scrapers/activityportal"

	"github.com/stretchr/testify/require"
)

func staffAggregate() *activityportal.RawActivity {
	return &activityportal.RawActivity{
		ActivityID: "staff",
		StaffMembers: []activityportal.RawStaffMember{
			{Name: "A. Blackwood", Role: "Head of Activities", Email: "ab@example.com"},
			{Name: "J. Mercer", Role: "Coach"},
		},
	}
}

func TestRefreshStaffIfDue(t *testing.T) {
	ctx := context.Background()
	portal := &fakePortal{
		probeOK: true,
		records: map[string]*activityportal.RawActivity{"staff": staffAggregate()},
	}
	s := newTestService(t, portal, nil, nil)

	require.NoError(t, s.RefreshStaffIfDue(ctx, false))

	rec, err := s.readStaff(ctx)
	require.NoError(t, err)
	require.Len(t, rec.Members, 2)
	require.Equal(t, "A. Blackwood", rec.Members[0].Name)
	require.NotNil(t, rec.LastCheck)
}

func TestRefreshStaffNotDueIsNoop(t *testing.T) {
	ctx := context.Background()
	portal := &fakePortal{
		probeOK: true,
		records: map[string]*activityportal.RawActivity{"staff": staffAggregate()},
	}
	s := newTestService(t, portal, nil, nil)

	s.writeStaff(ctx, &StaffRecord{
		Members:   []StaffMember{{Name: "A. Blackwood"}},
		Source:    SourceFetch,
		LastCheck: minutesAgo(10),
	})

	require.NoError(t, s.RefreshStaffIfDue(ctx, false))

	_, _, fetches := portal.counts()
	require.Equal(t, 0, fetches)
}

func TestRefreshStaffForcedIgnoresFreshness(t *testing.T) {
	ctx := context.Background()
	portal := &fakePortal{
		probeOK: true,
		records: map[string]*activityportal.RawActivity{"staff": staffAggregate()},
	}
	s := newTestService(t, portal, nil, nil)

	s.writeStaff(ctx, &StaffRecord{
		Members:   []StaffMember{{Name: "A. Blackwood"}},
		Source:    SourceFetch,
		LastCheck: minutesAgo(10),
	})

	require.NoError(t, s.RefreshStaffIfDue(ctx, true))

	rec, err := s.readStaff(ctx)
	require.NoError(t, err)
	require.Len(t, rec.Members, 2)
}

func TestRefreshStaffFailureKeepsPreviousAggregate(t *testing.T) {
	ctx := context.Background()
	portal := &fakePortal{loginErr: errors.New("portal is down")}
	s := newTestService(t, portal, nil, nil)

	old := minutesAgo(3000)
	s.writeStaff(ctx, &StaffRecord{
		Members:   []StaffMember{{Name: "A. Blackwood"}},
		Source:    SourceFetch,
		LastCheck: old,
	})

	err := s.RefreshStaffIfDue(ctx, false)
	require.Error(t, err)

	// the stale aggregate keeps being served, and its lastCheck is
	// bumped so every sweep doesn't re-run the failing fetch
	rec, readErr := s.readStaff(ctx)
	require.NoError(t, readErr)
	require.Len(t, rec.Members, 1)
	require.True(t, rec.LastCheck.After(*old))
}

func TestRefreshStaffFailureWithNoPriorValueWritesNothing(t *testing.T) {
	ctx := context.Background()
	portal := &fakePortal{loginErr: errors.New("portal is down")}
	s := newTestService(t, portal, nil, nil)

	err := s.RefreshStaffIfDue(ctx, false)
	require.Error(t, err)

	// nothing is cached, so the next pass is still due and retries
	_, err = s.readStaff(ctx)
	require.ErrorIs(t, err, kvstore.ErrNotFound)
}
