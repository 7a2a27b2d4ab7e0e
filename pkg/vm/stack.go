package vm

// Stack is a bounded LIFO. Push beyond the limit and Pop from an empty
// stack fail without changing the contents.
type Stack[T any] struct {
	a     []T
	limit int
}

// NewStack creates a new stack holding at most limit elements
func NewStack[T any](limit int) *Stack[T] {
	return &Stack[T]{
		a:     make([]T, 0, min(limit, 64)),
		limit: limit,
	}
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) error {
	if len(s.a) >= s.limit {
		return ErrStackOverflow
	}

	s.a = append(s.a, elm)
	return nil
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if len(s.a) == 0 {
		return zero, ErrStackUnderflow
	}

	elm := s.a[len(s.a)-1]
	s.a = s.a[:len(s.a)-1]

	return elm, nil
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() (T, error) {
	return s.PeekAt(0)
}

// PeekAt returns the element depth positions below the top
func (s *Stack[T]) PeekAt(depth int) (T, error) {
	var zero T
	if depth < 0 || depth >= len(s.a) {
		return zero, ErrStackUnderflow
	}

	return s.a[len(s.a)-1-depth], nil
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return len(s.a)
}

// Limit returns the maximum depth of the stack
func (s *Stack[T]) Limit() int {
	return s.limit
}

// Full reports whether a Push would overflow
func (s *Stack[T]) Full() bool {
	return len(s.a) >= s.limit
}

// Array returns a copy of the stack contents, bottom first
func (s *Stack[T]) Array() []T {
	return append([]T(nil), s.a...)
}

// Reset empties the stack
func (s *Stack[T]) Reset() {
	s.a = s.a[:0]
}
