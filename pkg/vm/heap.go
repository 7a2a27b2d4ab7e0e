package vm

import (
	"fmt"

	"golden/pkg/bytecode"
)

// Object is a class instance. Its id is its index in the object table.
type Object struct {
	Class     int
	ClassName string
	Fields    []float64
}

// Array is an entry of the array table. Strings is only allocated for
// string-element arrays.
type Array struct {
	Name    string
	Element bytecode.ElementKind
	Numbers []float64
	Strings []string
}

// Len returns the declared size of the array
func (a *Array) Len() int {
	return len(a.Numbers)
}

// Clear zeroes every numeric slot and releases every string slot
func (a *Array) Clear() {
	clear(a.Numbers)
	clear(a.Strings)
}

// Heap holds the object and array tables. Both are append-only: ids stay
// valid for the lifetime of the VM and nothing is ever freed.
type Heap struct {
	objects []*Object
	arrays  []*Array
}

// NewHeap creates empty tables
func NewHeap() *Heap {
	return &Heap{}
}

// NewObject appends a zeroed instance of class and returns its id
func (h *Heap) NewObject(class int, def *bytecode.Class) int {
	h.objects = append(h.objects, &Object{
		Class:     class,
		ClassName: def.Name,
		Fields:    make([]float64, len(def.Fields)),
	})

	return len(h.objects) - 1
}

// Object returns the instance with the given id
func (h *Heap) Object(id int) (*Object, error) {
	if id < 0 || id >= len(h.objects) {
		return nil, fmt.Errorf("%w: object %d (table has %d)", ErrIndexOutOfRange, id, len(h.objects))
	}

	return h.objects[id], nil
}

// NewArray appends a zero-filled array and returns its id
func (h *Heap) NewArray(name string, elem bytecode.ElementKind, size int) int {
	arr := &Array{
		Name:    name,
		Element: elem,
		Numbers: make([]float64, size),
	}
	if elem == bytecode.ElemString {
		arr.Strings = make([]string, size)
	}

	h.arrays = append(h.arrays, arr)
	return len(h.arrays) - 1
}

// Array returns the array with the given id
func (h *Heap) Array(id int) (*Array, error) {
	if id < 0 || id >= len(h.arrays) {
		return nil, fmt.Errorf("%w: array %d (table has %d)", ErrIndexOutOfRange, id, len(h.arrays))
	}

	return h.arrays[id], nil
}

// ObjectCount returns the number of allocated instances
func (h *Heap) ObjectCount() int {
	return len(h.objects)
}

// ArrayCount returns the number of allocated arrays
func (h *Heap) ArrayCount() int {
	return len(h.arrays)
}
