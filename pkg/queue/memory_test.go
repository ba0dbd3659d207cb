package queue

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	var q Queue[int] = NewInMemoryQueue[int](4)

	_, ok := q.Dequeue()
	assert.False(t, ok)

	for i := 1; i <= 4; i++ {
		require.NoError(t, q.Enqueue(i))
	}
	assert.ErrorIs(t, q.Enqueue(5), ErrQueueFull)
	assert.Equal(t, 4, q.Size())

	item, ok := q.Dequeue()
	require.True(t, ok)
	assert.Equal(t, 1, item)

	assert.Equal(t, []int{2, 3, 4}, q.ReadAll())
	assert.Equal(t, 0, q.Size())
	assert.Nil(t, q.ReadAll())
}

func TestInMemoryQueue_Clear(t *testing.T) {
	q := NewInMemoryQueue[string](0)
	require.NoError(t, q.Enqueue("a"))
	require.NoError(t, q.Enqueue("b"))

	q.Clear()
	assert.Equal(t, 0, q.Size())
}

func TestInMemoryQueue_Concurrent(t *testing.T) {
	q := NewInMemoryQueue[int](QueueBufferSize)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, q.Enqueue(i))
			}
		}()
	}
	wg.Wait()

	assert.Len(t, q.ReadAll(), 800)
}
