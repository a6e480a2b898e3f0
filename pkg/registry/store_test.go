package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/arthur-debert/gather/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	ID   int
	Name string
}

func TestStore_RegisterGet(t *testing.T) {
	s := NewStore[testItem]()

	require.NoError(t, s.Register("item1", testItem{ID: 1, Name: "one"}))
	assert.Equal(t, 1, s.Count())
	assert.True(t, s.Has("item1"))

	got, err := s.Get("item1")
	require.NoError(t, err)
	assert.Equal(t, testItem{ID: 1, Name: "one"}, got)

	_, err = s.Get("missing")
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))

	assert.True(t, errors.IsErrorCode(s.Register("", testItem{}), errors.ErrInvalidInput))
	assert.True(t, errors.IsErrorCode(s.Register("item1", testItem{}), errors.ErrAlreadyExists))
}

func TestStore_ListKeepsRegistrationOrder(t *testing.T) {
	s := NewStore[testItem]()
	for i, name := range []string{"charlie", "alpha", "bravo"} {
		require.NoError(t, s.Register(name, testItem{ID: i}))
	}
	assert.Equal(t, []string{"charlie", "alpha", "bravo"}, s.List())
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore[testItem]()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Register(fmt.Sprintf("item%d", i), testItem{ID: i})
			_ = s.Has("item0")
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, s.Count())
}
