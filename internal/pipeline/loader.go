package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go-sqa-metrics/internal/model"
)

// ErrSuperseded is returned by SlotLoader.Load when a newer load for the same
// slot was issued before this one finished.
var ErrSuperseded = errors.New("load superseded by a newer request")

// Slot is the state of one logical slot after its latest load.
type Slot struct {
	Handle   string
	Dataset  model.Dataset
	Err      error
	LoadedAt time.Time

	seq uint64
}

// DefaultMaxSlots bounds how many completed slots a SlotLoader keeps.
const DefaultMaxSlots = 64

// SlotLoader fetches datasets into named slots (e.g. "left", "right" or one
// slot per selected version). The most recently issued load of a slot wins:
// issuing a new load cancels the previous one and its result is discarded.
// Past MaxSlots stored slots, the least recently loaded ones are dropped.
type SlotLoader struct {
	source RowSource

	// MaxSlots caps the stored slots; zero or less keeps every slot.
	MaxSlots int

	mu       sync.Mutex
	seq      uint64
	inflight map[string]pendingLoad
	slots    map[string]Slot
}

type pendingLoad struct {
	seq    uint64
	cancel context.CancelFunc
}

func NewSlotLoader(source RowSource) *SlotLoader {
	return &SlotLoader{
		source:   source,
		MaxSlots: DefaultMaxSlots,
		inflight: make(map[string]pendingLoad),
		slots:    make(map[string]Slot),
	}
}

// Load fetches handle into slot. A failed fetch leaves the slot holding the
// error and an empty dataset, never the rows of an earlier load.
func (l *SlotLoader) Load(ctx context.Context, slot, handle string) (model.Dataset, error) {
	ctx, cancel := context.WithCancel(ctx)
	l.mu.Lock()
	l.seq++
	mine := l.seq
	if prev, ok := l.inflight[slot]; ok {
		prev.cancel()
	}
	l.inflight[slot] = pendingLoad{seq: mine, cancel: cancel}
	l.mu.Unlock()

	ds, err := l.source.FetchRows(ctx, handle)

	l.mu.Lock()
	defer l.mu.Unlock()
	cancel()
	if cur, ok := l.inflight[slot]; !ok || cur.seq != mine {
		return model.Dataset{}, ErrSuperseded
	}
	delete(l.inflight, slot)

	state := Slot{Handle: handle, LoadedAt: time.Now(), seq: mine}
	defer l.evict()
	if err != nil {
		state.Err = err
		state.Dataset = model.NewDataset(nil, nil)
		l.slots[slot] = state
		return model.Dataset{}, err
	}
	state.Dataset = ds
	l.slots[slot] = state
	return ds, nil
}

// Get returns the slot's latest completed state.
func (l *SlotLoader) Get(slot string) (Slot, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[slot]
	return s, ok
}

// Clear cancels any pending load of slot and forgets its data.
func (l *SlotLoader) Clear(slot string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if p, ok := l.inflight[slot]; ok {
		p.cancel()
		delete(l.inflight, slot)
	}
	delete(l.slots, slot)
}

// evict drops the oldest stored slots beyond MaxSlots. Callers hold l.mu.
func (l *SlotLoader) evict() {
	for l.MaxSlots > 0 && len(l.slots) > l.MaxSlots {
		oldest := ""
		var oldestSeq uint64
		for name, slot := range l.slots {
			if oldest == "" || slot.seq < oldestSeq {
				oldest, oldestSeq = name, slot.seq
			}
		}
		delete(l.slots, oldest)
	}
}
