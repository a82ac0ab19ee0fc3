package cart

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStorage struct {
	loadErr error
	saveErr error
	blob    []byte
	saves   int
}

func (f *failingStorage) Load(context.Context, string) ([]byte, error) {
	return f.blob, f.loadErr
}

func (f *failingStorage) Save(_ context.Context, _ string, blob []byte) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.blob = blob
	return nil
}

func fixedClock() Option {
	return WithClock(func() time.Time { return now })
}

func TestStorePersistsEveryTransition(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	store := NewStore(ctx, storage, "cart:s1", logger.Nop(), fixedClock())
	store.AddItem(ctx, product("A", 20000), 1, nil)
	store.AddItem(ctx, product("B", 5000), 2, nil)
	store.SetOpen(ctx, true)

	blob, err := storage.Load(ctx, "cart:s1")
	require.NoError(t, err)

	var persisted State
	require.NoError(t, json.Unmarshal(blob, &persisted))
	assert.Len(t, persisted.Items, 2)
	assert.Equal(t, 3, persisted.ItemCount)
	assert.True(t, decimal.NewFromInt(30000).Equal(persisted.Total))
	assert.True(t, persisted.IsOpen)
}

func TestStoreRehydratesPersistedCart(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage()

	first := NewStore(ctx, storage, "cart:s1", logger.Nop(), fixedClock())
	first.AddItem(ctx, product("A", 20000), 2, nil)

	second := NewStore(ctx, storage, "cart:s1", logger.Nop())
	st := second.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, 2, st.Items[0].Quantity)
	assert.True(t, now.Equal(st.Items[0].AddedAt))
	assert.True(t, decimal.NewFromInt(40000).Equal(st.Total))

	other := NewStore(ctx, storage, "cart:s2", logger.Nop())
	assert.Empty(t, other.State().Items)
}

func TestStoreCorruptBlobYieldsDefault(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})

	store := NewStore(context.Background(), &failingStorage{blob: []byte("{not json")}, "k", logg)

	st := store.State()
	assert.Empty(t, st.Items)
	assert.Zero(t, st.ItemCount)
	assert.Contains(t, buf.String(), "cart.rehydrate.decode_failed")
}

func TestStoreLoadErrorYieldsDefault(t *testing.T) {
	store := NewStore(context.Background(), &failingStorage{loadErr: errors.New("unavailable")}, "k", logger.Nop())
	assert.Empty(t, store.State().Items)
}

func TestStoreRepairsInconsistentBlob(t *testing.T) {
	blob := []byte(`{"items":[
		{"product":{"id":"A","name":"A","price":"100"},"quantity":2},
		{"product":{"id":"A","name":"A","price":"100"},"quantity":4},
		{"product":{"id":"B","name":"B","price":"50"},"quantity":0}
	],"item_count":42,"total":"1"}`)

	store := NewStore(context.Background(), &failingStorage{blob: blob}, "k", logger.Nop())
	st := store.State()
	require.Len(t, st.Items, 1)
	assert.Equal(t, 2, st.ItemCount)
	assert.True(t, decimal.NewFromInt(200).Equal(st.Total))
}

func TestStoreSaveFailureKeepsMemoryState(t *testing.T) {
	buf := &bytes.Buffer{}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.DebugLevel, Output: buf})
	storage := &failingStorage{saveErr: errors.New("disk full")}

	store := NewStore(context.Background(), storage, "k", logg)
	st := store.AddItem(context.Background(), product("A", 10), 3, nil)

	assert.Equal(t, 3, st.ItemCount)
	assert.Equal(t, 3, store.State().ItemCount)
	assert.Equal(t, 1, storage.saves)
	assert.Contains(t, buf.String(), "cart.persist_failed")
}

func TestStoreSnapshotsAreIndependent(t *testing.T) {
	store := NewStore(context.Background(), nil, "k", nil)
	st := store.AddItem(context.Background(), product("A", 10), 1, nil)
	st.Items[0].Quantity = 99

	assert.Equal(t, 1, store.State().Items[0].Quantity)
}

func TestStoreClearAndRemove(t *testing.T) {
	ctx := context.Background()
	store := NewStore(ctx, NewMemoryStorage(), "k", logger.Nop())
	store.AddItem(ctx, product("A", 10), 1, nil)
	store.AddItem(ctx, product("B", 10), 1, nil)

	st := store.RemoveItem(ctx, "A")
	require.Len(t, st.Items, 1)

	st = store.UpdateQuantity(ctx, "B", 4)
	assert.Equal(t, 4, st.ItemCount)

	st = store.ClearCart(ctx)
	assert.Empty(t, st.Items)
	assert.True(t, st.Total.IsZero())
}
