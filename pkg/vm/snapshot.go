package vm

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Snapshot is a copy of the machine state taken between instructions.
type Snapshot struct {
	Run         string        `cbor:"run,omitempty"`
	PC          int           `cbor:"pc"`
	Steps       int           `cbor:"steps"`
	Halted      bool          `cbor:"halted"`
	ValueStack  []float64     `cbor:"values"`
	ObjectStack []int         `cbor:"objects"`
	Pending     *string       `cbor:"pending,omitempty"`
	Globals     []GlobalState `cbor:"globals"`
	Objects     []ObjectState `cbor:"object_table"`
	Arrays      []ArrayState  `cbor:"array_table"`
	Diagnostics []string      `cbor:"diagnostics,omitempty"`
	Faults      int           `cbor:"faults"`
}

type GlobalState struct {
	Name   string  `cbor:"name"`
	Kind   string  `cbor:"kind"`
	Number float64 `cbor:"number,omitempty"`
	Text   string  `cbor:"text,omitempty"`
	Array  int     `cbor:"array"` // -1 when not bound to an array
}

type ObjectState struct {
	Class  string    `cbor:"class"`
	Fields []float64 `cbor:"fields"`
}

type ArrayState struct {
	Name    string    `cbor:"name"`
	Element string    `cbor:"element"`
	Numbers []float64 `cbor:"numbers"`
	Strings []string  `cbor:"strings,omitempty"`
}

// Snapshot captures the current state. run tags the snapshot with the
// caller's run id and may be empty.
func (i *Interpreter) Snapshot(run string) *Snapshot {
	s := &Snapshot{
		Run:         run,
		PC:          i.pc,
		Steps:       i.steps,
		Halted:      i.halted,
		ValueStack:  i.values.Array(),
		ObjectStack: i.objects.Array(),
		Faults:      i.diagCount,
	}

	if i.hasPending {
		p := i.pending
		s.Pending = &p
	}

	for _, v := range i.globals {
		g := GlobalState{Name: v.Name, Kind: v.Kind.String(), Array: -1}
		switch v.Value.Kind {
		case KindNumber:
			g.Number = v.Value.Num
		case KindText:
			g.Text = v.Value.Text
		case KindArrayRef:
			g.Array = v.Value.Array
		}
		s.Globals = append(s.Globals, g)
	}

	for _, o := range i.heap.objects {
		s.Objects = append(s.Objects, ObjectState{
			Class:  o.ClassName,
			Fields: append([]float64(nil), o.Fields...),
		})
	}

	for _, a := range i.heap.arrays {
		s.Arrays = append(s.Arrays, ArrayState{
			Name:    a.Name,
			Element: a.Element.String(),
			Numbers: append([]float64(nil), a.Numbers...),
			Strings: append([]string(nil), a.Strings...),
		})
	}

	for _, d := range i.diagnostics {
		s.Diagnostics = append(s.Diagnostics, d.Error())
	}

	return s
}

// MarshalSnapshot serializes a Snapshot to canonical CBOR bytes.
func MarshalSnapshot(s *Snapshot) ([]byte, error) {
	return cborEncMode.Marshal(s)
}

// UnmarshalSnapshot deserializes a Snapshot from CBOR bytes.
func UnmarshalSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("vm: unmarshal snapshot: %w", err)
	}
	return &s, nil
}

// WriteSnapshot writes the CBOR encoding of s to path.
func WriteSnapshot(path string, s *Snapshot) error {
	data, err := MarshalSnapshot(s)
	if err != nil {
		return fmt.Errorf("vm: marshal snapshot: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}
