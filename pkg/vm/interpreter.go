package vm

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"golden/pkg/bytecode"
)

// Default limits
const (
	DefaultValueStack   = 256
	DefaultObjectStack  = 64
	DefaultMaxArraySize = 1 << 20
)

// Interpreter executes a loaded image one instruction at a time
type Interpreter struct {
	image *bytecode.Image
	pc    int

	globals []Variable
	heap    *Heap

	values  *Stack[float64]
	objects *Stack[int]

	pending    string // string global waiting to be printed by PRINTLN
	hasPending bool

	out    io.Writer
	logger *log.Logger
	trace  bool

	onDiag      func(*RuntimeError)
	diagnostics []*RuntimeError
	diagCount   int

	valueLimit   int
	objectLimit  int
	maxArraySize int

	maxSteps int // maximum steps (0 = unlimited)
	steps    int // steps executed
	halted   bool
}

type Option func(*Interpreter)

// WithWriter sets the output writer for print instructions
func WithWriter(w io.Writer) Option {
	return func(i *Interpreter) { i.out = w }
}

// WithMaxSteps sets a maximum number of interpreter steps before returning ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(i *Interpreter) { i.maxSteps = n }
}

// WithStackLimits overrides the value and object stack depths. Non-positive values keep the default.
func WithStackLimits(values, objects int) Option {
	return func(i *Interpreter) {
		if values > 0 {
			i.valueLimit = values
		}
		if objects > 0 {
			i.objectLimit = objects
		}
	}
}

// WithMaxArraySize bounds the number of elements a single array may hold
func WithMaxArraySize(n int) Option {
	return func(i *Interpreter) {
		if n > 0 {
			i.maxArraySize = n
		}
	}
}

// WithLogger sets the logger used for instruction traces
func WithLogger(l *log.Logger) Option {
	return func(i *Interpreter) { i.logger = l }
}

// WithTrace logs every executed instruction at debug level
func WithTrace(on bool) Option {
	return func(i *Interpreter) { i.trace = on }
}

// WithDiagnostics installs a hook receiving every recoverable runtime error
func WithDiagnostics(fn func(*RuntimeError)) Option {
	return func(i *Interpreter) { i.onDiag = fn }
}

// NewInterpreter creates an interpreter for img. Static arrays declared by
// the image are allocated here and bound to their variables.
func NewInterpreter(img *bytecode.Image, opts ...Option) (*Interpreter, error) {
	it := &Interpreter{
		image:        img,
		out:          nil, // caller should set, or use WithWriter
		valueLimit:   DefaultValueStack,
		objectLimit:  DefaultObjectStack,
		maxArraySize: DefaultMaxArraySize,
	}

	for _, o := range opts {
		o(it)
	}

	if it.out == nil {
		it.out = os.Stdout
	}
	if it.logger == nil {
		it.logger = log.New(io.Discard)
	}

	if err := it.Reset(); err != nil {
		return nil, err
	}

	return it, nil
}

// Reset restores the state the image starts with: globals from their
// initial values, fresh tables and empty stacks.
func (i *Interpreter) Reset() error {
	i.pc = 0
	i.steps = 0
	i.halted = false
	i.pending, i.hasPending = "", false
	i.diagnostics = nil
	i.diagCount = 0

	i.heap = NewHeap()
	i.values = NewStack[float64](i.valueLimit)
	i.objects = NewStack[int](i.objectLimit)
	i.globals = make([]Variable, len(i.image.Globals))

	for idx, g := range i.image.Globals {
		v := Variable{Name: g.Name, Kind: g.Kind, Element: g.Element}

		switch g.Kind {
		case bytecode.KindInt, bytecode.KindFloat:
			v.Value = newNumber(g.Number)
		case bytecode.KindString:
			v.Value = newText(g.Text)
		case bytecode.KindStaticArray:
			if g.Size < 0 || int(g.Size) > i.maxArraySize {
				return fmt.Errorf("%w: static array %s has %d elements (limit %d)", ErrInvalidArraySize, g.Name, g.Size, i.maxArraySize)
			}
			v.Value = newArrayRef(i.heap.NewArray(g.Name, g.Element, int(g.Size)))
		}

		i.globals[idx] = v
	}

	return nil
}

// Step executes a single instruction, returning (halted, error).
// Recoverable errors are reported as diagnostics and never returned.
func (i *Interpreter) Step() (bool, error) {
	if i.halted || i.pc >= len(i.image.Code) {
		i.halted = true
		return true, nil
	}

	if i.maxSteps > 0 && i.steps >= i.maxSteps {
		return false, ErrMaxStepsExceeded
	}

	halted, err := coreStep(i)
	i.steps++
	if halted || i.pc >= len(i.image.Code) {
		i.halted = true
	}

	return i.halted, err
}

// Run executes until halt or error
func (i *Interpreter) Run() error {
	for {
		halted, err := i.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

// PC returns the index of the next instruction
func (i *Interpreter) PC() int {
	return i.pc
}

// Halted reports whether RETURN ran or the program ran off its end
func (i *Interpreter) Halted() bool {
	return i.halted
}

// Steps returns the number of executed instructions
func (i *Interpreter) Steps() int {
	return i.steps
}

// Image returns the loaded image
func (i *Interpreter) Image() *bytecode.Image {
	return i.image
}

// Output returns the output writer used for print
func (i *Interpreter) Output() io.Writer {
	return i.out
}

// Heap returns the object and array tables
func (i *Interpreter) Heap() *Heap {
	return i.heap
}

// ValueStack returns a copy of the value stack, bottom first
func (i *Interpreter) ValueStack() []float64 {
	return i.values.Array()
}

// ObjectStack returns a copy of the object stack, bottom first
func (i *Interpreter) ObjectStack() []int {
	return i.objects.Array()
}

// Global returns the variable at index idx
func (i *Interpreter) Global(idx int) (Variable, bool) {
	if idx < 0 || idx >= len(i.globals) {
		return Variable{}, false
	}

	return i.globals[idx], true
}

// Pending returns the string global waiting for the next PRINTLN, if any
func (i *Interpreter) Pending() (string, bool) {
	return i.pending, i.hasPending
}

// Diagnostics returns the recorded runtime errors, oldest first
func (i *Interpreter) Diagnostics() []*RuntimeError {
	return i.diagnostics
}

// DiagnosticCount returns how many runtime errors were raised, including
// the ones no longer retained by Diagnostics.
func (i *Interpreter) DiagnosticCount() int {
	return i.diagCount
}

// fault records a recoverable error for the instruction at pc
func (i *Interpreter) fault(pc int, in bytecode.Instruction, err error) {
	rerr := &RuntimeError{PC: pc, Instr: in, Err: err}

	i.diagCount++
	if len(i.diagnostics) < maxRetainedDiagnostics {
		i.diagnostics = append(i.diagnostics, rerr)
	}

	if i.onDiag != nil {
		i.onDiag(rerr)
	}
}

// write sends s to the output writer. Buffered writers are flushed by
// their owner.
func (i *Interpreter) write(s string) error {
	if _, err := io.WriteString(i.out, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	return nil
}
