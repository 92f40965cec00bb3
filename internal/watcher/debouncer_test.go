package watcher

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 50 * time.Millisecond

func receiveBatch(t *testing.T, d *debouncer, timeout time.Duration) []Event {
	t.Helper()
	select {
	case batch := <-d.output():
		return batch
	case <-time.After(timeout):
		t.Fatal("timed out waiting for debounced batch")
		return nil
	}
}

func TestDebouncer_SingleEvent(t *testing.T) {
	d := newDebouncer(testInterval)

	d.add(Event{Type: Modified, Path: "main.py", Timestamp: time.Now()})

	batch := receiveBatch(t, d, 500*time.Millisecond)
	require.Len(t, batch, 1)
	assert.Equal(t, "main.py", batch[0].Path)
	assert.Equal(t, Modified, batch[0].Type)
}

func TestDebouncer_SamePathCollapses(t *testing.T) {
	d := newDebouncer(testInterval)

	d.add(Event{Type: Created, Path: "main.py", Timestamp: time.Now()})
	d.add(Event{Type: Modified, Path: "main.py", Timestamp: time.Now()})

	batch := receiveBatch(t, d, 500*time.Millisecond)
	require.Len(t, batch, 1)
	assert.Equal(t, Modified, batch[0].Type, "latest event wins")
}

func TestDebouncer_MultiplePaths(t *testing.T) {
	d := newDebouncer(testInterval)

	d.add(Event{Type: Modified, Path: "a.py", Timestamp: time.Now()})
	d.add(Event{Type: Created, Path: "b.py", Timestamp: time.Now()})

	batch := receiveBatch(t, d, 500*time.Millisecond)
	require.Len(t, batch, 2)

	paths := []string{batch[0].Path, batch[1].Path}
	sort.Strings(paths)
	assert.Equal(t, []string{"a.py", "b.py"}, paths)
}

func TestDebouncer_QuietPeriodResets(t *testing.T) {
	d := newDebouncer(testInterval)

	d.add(Event{Type: Modified, Path: "a.py", Timestamp: time.Now()})
	time.Sleep(testInterval / 2)
	d.add(Event{Type: Modified, Path: "b.py", Timestamp: time.Now()})

	// Both events land in one batch because the second arrival reset
	// the timer before the first flush.
	batch := receiveBatch(t, d, 500*time.Millisecond)
	assert.Len(t, batch, 2)
}
