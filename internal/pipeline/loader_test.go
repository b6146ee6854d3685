package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-sqa-metrics/internal/model"
)

// gatedSource blocks each fetch until its handle's gate is released.
type gatedSource struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
	fail  map[string]error
}

func newGatedSource() *gatedSource {
	return &gatedSource{gates: make(map[string]chan struct{}), fail: make(map[string]error)}
}

func (s *gatedSource) gate(handle string) chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gates[handle]; !ok {
		s.gates[handle] = make(chan struct{})
	}
	return s.gates[handle]
}

func (s *gatedSource) FetchRows(ctx context.Context, handle string) (model.Dataset, error) {
	select {
	case <-s.gate(handle):
	case <-ctx.Done():
		// A cancelled fetch still reports its rows to prove they are discarded.
	}
	if err := s.fail[handle]; err != nil {
		return model.Dataset{}, &model.SourceFetchError{Handle: handle, Err: err}
	}
	return table([]string{"Handle"}, []interface{}{handle}), nil
}

func TestSlotLoader_LastWriteWins(t *testing.T) {
	src := newGatedSource()
	loader := NewSlotLoader(src)

	oldDone := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "left", "old.csv")
		oldDone <- err
	}()
	// Wait until the old load is registered before superseding it.
	require.Eventually(t, func() bool {
		loader.mu.Lock()
		defer loader.mu.Unlock()
		_, ok := loader.inflight["left"]
		return ok
	}, time.Second, time.Millisecond)

	newDone := make(chan error, 1)
	go func() {
		_, err := loader.Load(context.Background(), "left", "new.csv")
		newDone <- err
	}()

	// The old fetch is cancelled by the newer load and returns first.
	assert.ErrorIs(t, <-oldDone, ErrSuperseded)

	close(src.gate("new.csv"))
	require.NoError(t, <-newDone)

	slot, ok := loader.Get("left")
	require.True(t, ok)
	assert.Equal(t, "new.csv", slot.Handle)
	assert.Equal(t, "new.csv", slot.Dataset.Rows[0]["Handle"])
}

func TestSlotLoader_FailureLeavesNoRows(t *testing.T) {
	src := newGatedSource()
	src.fail["broken.xlsx"] = errors.New("corrupt workbook")
	close(src.gate("good.csv"))
	close(src.gate("broken.xlsx"))
	loader := NewSlotLoader(src)

	_, err := loader.Load(context.Background(), "right", "good.csv")
	require.NoError(t, err)

	_, err = loader.Load(context.Background(), "right", "broken.xlsx")
	require.Error(t, err)
	assert.True(t, model.IsSourceFetchError(err))

	slot, ok := loader.Get("right")
	require.True(t, ok)
	assert.Error(t, slot.Err)
	assert.True(t, slot.Dataset.IsEmpty())

	loader.Clear("right")
	_, ok = loader.Get("right")
	assert.False(t, ok)
}

func TestSlotLoader_IndependentSlots(t *testing.T) {
	src := newGatedSource()
	close(src.gate("a.csv"))
	close(src.gate("b.csv"))
	loader := NewSlotLoader(src)

	var wg sync.WaitGroup
	for slot, handle := range map[string]string{"left": "a.csv", "right": "b.csv"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := loader.Load(context.Background(), slot, handle)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	left, _ := loader.Get("left")
	right, _ := loader.Get("right")
	assert.Equal(t, "a.csv", left.Handle)
	assert.Equal(t, "b.csv", right.Handle)
}

func TestSlotLoader_EvictsOldestSlots(t *testing.T) {
	src := newGatedSource()
	for _, h := range []string{"a.csv", "b.csv", "c.csv"} {
		close(src.gate(h))
	}
	loader := NewSlotLoader(src)
	loader.MaxSlots = 2

	for _, slot := range []string{"a", "b", "c"} {
		_, err := loader.Load(context.Background(), slot, slot+".csv")
		require.NoError(t, err)
	}

	_, ok := loader.Get("a")
	assert.False(t, ok, "oldest slot is dropped")
	for _, slot := range []string{"b", "c"} {
		got, ok := loader.Get(slot)
		require.True(t, ok)
		assert.Equal(t, slot+".csv", got.Handle)
	}

	// Reloading a slot makes it the newest.
	_, err := loader.Load(context.Background(), "b", "b.csv")
	require.NoError(t, err)
	_, err = loader.Load(context.Background(), "a", "a.csv")
	require.NoError(t, err)
	_, ok = loader.Get("c")
	assert.False(t, ok)
	_, ok = loader.Get("b")
	assert.True(t, ok)
}

func TestNewSlotLoader_DefaultCap(t *testing.T) {
	assert.Equal(t, DefaultMaxSlots, NewSlotLoader(newGatedSource()).MaxSlots)
}
