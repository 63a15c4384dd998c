package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-report-bot/internal/types"
)

func newRows() []types.Row {
	return []types.Row{{Name: "A", Price: 100}, {Name: "B", Price: 200}}
}

func TestStorePutGetDelete(t *testing.T) {
	st := NewStore()

	_, ok := st.Get("u1")
	assert.False(t, ok)

	replaced := st.Put("u1", New(newRows(), time.Time{}))
	assert.False(t, replaced)
	assert.Equal(t, 1, st.Len())

	got, ok := st.Get("u1")
	require.True(t, ok)
	assert.Equal(t, 0, got.Cursor)
	assert.Equal(t, AwaitingMorning, got.Phase)
	assert.Len(t, got.Rows, 2)

	assert.True(t, st.Delete("u1"))
	assert.False(t, st.Delete("u1"))
	assert.Equal(t, 0, st.Len())
}

func TestStorePutReplacesExisting(t *testing.T) {
	st := NewStore()
	st.Put("u1", New(newRows(), time.Time{}))
	st.Update("u1", func(s *Session) bool {
		s.Cursor = 1
		s.Rows[0].Morning = 12
		return false
	})

	replaced := st.Put("u1", New(newRows(), time.Time{}))
	assert.True(t, replaced)

	got, _ := st.Get("u1")
	assert.Equal(t, 0, got.Cursor)
	assert.Zero(t, got.Rows[0].Morning)
}

func TestStoreGetReturnsCopy(t *testing.T) {
	st := NewStore()
	st.Put("u1", New(newRows(), time.Time{}))

	got, _ := st.Get("u1")
	got.Rows[0].Morning = 99
	got.Cursor = 5

	again, _ := st.Get("u1")
	assert.Zero(t, again.Rows[0].Morning)
	assert.Equal(t, 0, again.Cursor)
}

func TestStoreUpdate(t *testing.T) {
	st := NewStore()

	called := false
	ok := st.Update("missing", func(s *Session) bool {
		called = true
		return false
	})
	assert.False(t, ok)
	assert.False(t, called)

	st.Put("u1", New(newRows(), time.Time{}))
	ok = st.Update("u1", func(s *Session) bool {
		s.Phase = AwaitingEvening
		return false
	})
	assert.True(t, ok)
	got, _ := st.Get("u1")
	assert.Equal(t, AwaitingEvening, got.Phase)

	ok = st.Update("u1", func(s *Session) bool { return true })
	assert.True(t, ok)
	assert.Equal(t, 0, st.Len())
}

func TestStoreConcurrentUsers(t *testing.T) {
	st := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		userID := fmt.Sprintf("u%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Put(userID, New(newRows(), time.Time{}))
			for j := 0; j < 100; j++ {
				st.Update(userID, func(s *Session) bool {
					s.Rows[0].Morning++
					return false
				})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, st.Len())
	for i := 0; i < 50; i++ {
		got, ok := st.Get(fmt.Sprintf("u%d", i))
		require.True(t, ok)
		assert.Equal(t, 100.0, got.Rows[0].Morning)
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "morning", AwaitingMorning.String())
	assert.Equal(t, "evening", AwaitingEvening.String())
	assert.Equal(t, "exchange", AwaitingExchange.String())
	assert.Equal(t, "unknown", Phase(42).String())
}

func TestSessionDone(t *testing.T) {
	s := New(newRows(), time.Time{})
	assert.False(t, s.Done())
	s.Cursor = 2
	assert.True(t, s.Done())
}
