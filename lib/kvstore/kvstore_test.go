package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	badgerStore, err := OpenBadger(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		err := badgerStore.Close()
		if err != nil {
			t.Fatal(err)
		}
	})

	return map[string]Store{
		"badger": badgerStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			err = store.Set(ctx, "activity:1", "one")
			require.NoError(t, err)
			err = store.Set(ctx, "activity:2", "two")
			require.NoError(t, err)
			err = store.Set(ctx, "staff", "aggregate")
			require.NoError(t, err)

			value, err := store.Get(ctx, "activity:1")
			require.NoError(t, err)
			require.Equal(t, "one", value)

			// overwrite in place, last writer wins
			err = store.Set(ctx, "activity:1", "uno")
			require.NoError(t, err)
			value, err = store.Get(ctx, "activity:1")
			require.NoError(t, err)
			require.Equal(t, "uno", value)

			keys, err := store.Scan(ctx, "activity:")
			require.NoError(t, err)
			require.ElementsMatch(t, []string{"activity:1", "activity:2"}, keys)

			err = store.Delete(ctx, "activity:2")
			require.NoError(t, err)
			_, err = store.Get(ctx, "activity:2")
			require.ErrorIs(t, err, ErrNotFound)

			// deleting a missing key is not an error
			err = store.Delete(ctx, "activity:2")
			require.NoError(t, err)
		})
	}
}
