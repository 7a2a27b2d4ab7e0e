package vm

import (
	"fmt"
	"math"

	"golden/pkg/bytecode"
)

// coreStep executes the instruction at the current PC and advances it.
// A failing instruction leaves stacks and tables untouched; the error is
// recorded as a diagnostic. Only output failures are returned.
func coreStep(i *Interpreter) (bool, error) {
	pc := i.pc
	in := i.image.Code[pc]
	i.pc = pc + 1

	if i.trace {
		i.logger.Debug("exec", "pc", pc, "instr", in.String(), "values", i.values.Size(), "objects", i.objects.Size())
	}

	if in.Op == bytecode.OpReturn {
		return true, nil
	}

	if err := i.exec(in); err != nil {
		if fatal, ok := err.(*outputError); ok {
			return false, fatal.err
		}
		i.fault(pc, in, err)
	}

	return false, nil
}

// outputError marks a failure of the output writer, which stops execution
type outputError struct {
	err error
}

func (e *outputError) Error() string {
	return e.err.Error()
}

func (i *Interpreter) print(s string) error {
	if err := i.write(s); err != nil {
		return &outputError{err: err}
	}

	return nil
}

func (i *Interpreter) exec(in bytecode.Instruction) error {
	switch in.Op {
	case bytecode.OpPrint:
		s, err := i.poolString(in.Arg1)
		if err != nil {
			return err
		}
		return i.print(s)

	case bytecode.OpPrintln:
		if v, err := i.values.Pop(); err == nil {
			return i.print(formatNumber(v) + "\n")
		}
		if i.hasPending {
			s := i.pending
			i.pending, i.hasPending = "", false
			return i.print(s + "\n")
		}
		s, err := i.poolString(in.Arg1)
		if err != nil {
			return err
		}
		return i.print(s + "\n")

	case bytecode.OpPrintChar:
		c := in.Arg1
		if c == 0 {
			v, err := i.values.Pop()
			if err != nil {
				return err
			}
			c = byte(int64(v))
		}
		return i.print(string([]byte{c}))

	case bytecode.OpPushValue:
		s, err := i.poolString(in.Arg1)
		if err != nil {
			return err
		}
		return i.values.Push(parseNumber(s))

	case bytecode.OpPopValue:
		_, err := i.values.Pop()
		return err

	case bytecode.OpGetGlobal:
		v, err := i.variable(in.Arg1)
		if err != nil {
			return err
		}
		switch v.Value.Kind {
		case KindText:
			i.pending, i.hasPending = v.Value.Text, true
			return nil
		case KindNumber:
			return i.values.Push(v.Value.Num)
		case KindArrayRef:
			return i.values.Push(float64(v.Value.Array))
		default:
			return fmt.Errorf("%w: %s", ErrUnboundArray, v.Name)
		}

	case bytecode.OpNewInstance:
		if int(in.Arg1) >= len(i.image.Classes) {
			return fmt.Errorf("%w: class %d (image has %d)", ErrIndexOutOfRange, in.Arg1, len(i.image.Classes))
		}
		if i.objects.Full() {
			return ErrStackOverflow
		}
		id := i.heap.NewObject(int(in.Arg1), &i.image.Classes[in.Arg1])
		return i.objects.Push(id)

	case bytecode.OpSetField:
		obj, err := i.field(in.Arg1)
		if err != nil {
			return err
		}
		v, err := i.values.Pop()
		if err != nil {
			return err
		}
		obj.Fields[in.Arg1] = v
		return nil

	case bytecode.OpGetField:
		obj, err := i.field(in.Arg1)
		if err != nil {
			return err
		}
		return i.values.Push(obj.Fields[in.Arg1])

	case bytecode.OpArrayNew:
		return i.arrayNew(in.Arg1, bytecode.ElementKind(in.Arg2))

	case bytecode.OpArraySet:
		arr, err := i.resolveArray(in.Arg1)
		if err != nil {
			return err
		}
		v, err := i.values.PeekAt(0)
		if err != nil {
			return err
		}
		raw, err := i.values.PeekAt(1)
		if err != nil {
			return err
		}
		idx, err := elementIndex(raw, arr)
		if err != nil {
			return err
		}
		_, _ = i.values.Pop()
		_, _ = i.values.Pop()
		arr.Numbers[idx] = v
		return nil

	case bytecode.OpArrayGet:
		arr, err := i.resolveArray(in.Arg1)
		if err != nil {
			return err
		}
		raw, err := i.values.Peek()
		if err != nil {
			return err
		}
		idx, err := elementIndex(raw, arr)
		if err != nil {
			return err
		}
		_, _ = i.values.Pop()
		return i.values.Push(arr.Numbers[idx])

	case bytecode.OpArrayLen:
		arr, err := i.resolveArray(in.Arg1)
		if err != nil {
			return err
		}
		return i.values.Push(float64(arr.Len()))

	case bytecode.OpArrayClear:
		arr, err := i.resolveArray(in.Arg1)
		if err != nil {
			return err
		}
		arr.Clear()
		return nil

	case bytecode.OpCallMethod, bytecode.OpArrayDecl:
		return ErrNotImplemented

	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, byte(in.Op))
	}
}

func (i *Interpreter) poolString(idx uint8) (string, error) {
	if int(idx) >= len(i.image.Strings) {
		return "", fmt.Errorf("%w: string %d (pool has %d)", ErrIndexOutOfRange, idx, len(i.image.Strings))
	}

	return i.image.Strings[idx], nil
}

func (i *Interpreter) variable(idx uint8) (*Variable, error) {
	if int(idx) >= len(i.globals) {
		return nil, fmt.Errorf("%w: variable %d (image has %d)", ErrIndexOutOfRange, idx, len(i.globals))
	}

	return &i.globals[idx], nil
}

// field returns the instance on top of the object stack after checking
// that it has a field at idx.
func (i *Interpreter) field(idx uint8) (*Object, error) {
	id, err := i.objects.Peek()
	if err != nil {
		return nil, err
	}

	obj, err := i.heap.Object(id)
	if err != nil {
		return nil, err
	}

	if int(idx) >= len(obj.Fields) {
		return nil, fmt.Errorf("%w: field %d of %s (class has %d)", ErrIndexOutOfRange, idx, obj.ClassName, len(obj.Fields))
	}

	return obj, nil
}

// resolveArray maps an array operand to its table entry. Operands below
// the array table length are array ids; anything else names a variable
// that must be bound to an array.
func (i *Interpreter) resolveArray(operand uint8) (*Array, error) {
	if int(operand) < i.heap.ArrayCount() {
		return i.heap.Array(int(operand))
	}

	if int(operand) >= len(i.globals) {
		return nil, fmt.Errorf("%w: operand %d is neither an array (%d) nor a variable (%d)",
			ErrIndexOutOfRange, operand, i.heap.ArrayCount(), len(i.globals))
	}

	v := &i.globals[operand]
	switch {
	case v.Value.Kind == KindArrayRef:
		return i.heap.Array(v.Value.Array)
	case v.Kind.IsArray():
		return nil, fmt.Errorf("%w: %s", ErrUnboundArray, v.Name)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrNotAnArray, v.Name, v.Kind)
	}
}

func (i *Interpreter) arrayNew(varIdx uint8, elem bytecode.ElementKind) error {
	v, err := i.variable(varIdx)
	if err != nil {
		return err
	}
	if !v.Kind.IsArray() {
		return fmt.Errorf("%w: %s is %s", ErrNotAnArray, v.Name, v.Kind)
	}

	if !elem.Valid() {
		elem = v.Element
	}

	raw, err := i.values.Peek()
	if err != nil {
		return err
	}
	if raw != math.Trunc(raw) || raw < 0 || raw > float64(i.maxArraySize) {
		return fmt.Errorf("%w: %s for %s (limit %d)", ErrInvalidArraySize, formatNumber(raw), v.Name, i.maxArraySize)
	}

	_, _ = i.values.Pop()
	v.Value = newArrayRef(i.heap.NewArray(v.Name, elem, int(raw)))

	return nil
}

func elementIndex(raw float64, arr *Array) (int, error) {
	if raw != math.Trunc(raw) || raw < 0 || raw >= float64(arr.Len()) {
		return 0, fmt.Errorf("%w: index %s of %s (size %d)", ErrIndexOutOfRange, formatNumber(raw), arr.Name, arr.Len())
	}

	return int(raw), nil
}
