package testutil

import (
	"fmt"
	"testing"

	"activityhub-backend/lib/kvstore"
	"activityhub-backend/lib/telemetry"
)

type ServiceParams struct {
	Name string
	// if set, the returned store is badger-backed in a temp dir
	// instead of in-memory
	Badger bool
}

type ServiceResult struct {
	KV kvstore.Store
}

func SetupService(t testing.TB, params ServiceParams) (ServiceResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	var kv kvstore.Store
	if params.Badger {
		badgerStore, err := kvstore.OpenBadger(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		kv = badgerStore
	} else {
		kv = kvstore.NewMemoryStore()
	}

	return ServiceResult{KV: kv}, func() {
		err := kv.Close()
		if err != nil {
			t.Fatal(err)
		}
		cleanup()
	}
}
