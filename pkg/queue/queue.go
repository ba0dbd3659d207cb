package queue

// Queue represents a basic queue.
type Queue[T any] interface {
	Enqueue(item T) error
	Dequeue() (T, bool)
	Size() int
	ReadAll() []T
	Clear()
}
