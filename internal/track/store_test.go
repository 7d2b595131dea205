package track

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddGetList(t *testing.T) {
	store := NewStore()
	a := &Track{ID: "a", Name: "a.wav", Volume: 100}
	b := &Track{ID: "b", Name: "b.wav", Volume: 100}

	store.Add(a)
	store.Add(b)

	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a.wav", got.Name)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)
	assert.Equal(t, 2, store.Len())
}

func TestStore_ReturnsCopies(t *testing.T) {
	store := NewStore()
	original := &Track{ID: "a", Volume: 100}
	store.Add(original)

	original.Volume = 1
	got, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 100, got.Volume)

	got.Volume = 2
	again, err := store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, 100, again.Volume)
}

func TestStore_AddExistingKeepsOrder(t *testing.T) {
	store := NewStore()
	store.Add(&Track{ID: "a"})
	store.Add(&Track{ID: "b"})
	store.Add(&Track{ID: "a", Name: "replaced"})

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "replaced", list[0].Name)
}

func TestStore_Update(t *testing.T) {
	store := NewStore()
	store.Add(&Track{ID: "a", Volume: 100})

	require.NoError(t, store.Update("a", func(t *Track) error {
		t.Volume = 30
		return nil
	}))
	got, _ := store.Get("a")
	assert.Equal(t, 30, got.Volume)

	boom := errors.New("boom")
	err := store.Update("a", func(t *Track) error {
		t.Volume = 0
		return boom
	})
	assert.ErrorIs(t, err, boom)
	got, _ = store.Get("a")
	assert.Equal(t, 30, got.Volume, "a failed update must not be stored")

	assert.ErrorIs(t, store.Update("missing", func(*Track) error { return nil }), ErrTrackNotFound)
}

func TestStore_Remove(t *testing.T) {
	store := NewStore()
	store.Add(&Track{ID: "a"})
	store.Add(&Track{ID: "b"})
	store.Add(&Track{ID: "c"})

	require.NoError(t, store.Remove("b"))
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "c", list[1].ID)

	_, err := store.Get("b")
	assert.ErrorIs(t, err, ErrTrackNotFound)
	assert.ErrorIs(t, store.Remove("b"), ErrTrackNotFound)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			store.Add(&Track{ID: fmt.Sprintf("t-%d", i)})
		}(i)
		go func() {
			defer wg.Done()
			_ = store.List()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
}
