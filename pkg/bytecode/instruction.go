package bytecode

import (
	"fmt"
	"strings"
)

type Opcode byte

// List of VM operations
const (
	OpPrint       Opcode = 0x01
	OpNewInstance Opcode = 0x02
	OpCallMethod  Opcode = 0x03 // reserved
	OpGetField    Opcode = 0x04
	OpSetField    Opcode = 0x05
	OpPushValue   Opcode = 0x06
	OpPopValue    Opcode = 0x07
	OpPrintln     Opcode = 0x08
	OpPrintChar   Opcode = 0x09
	OpGetGlobal   Opcode = 0x0A
	OpArrayDecl   Opcode = 0x0B // reserved
	OpArraySet    Opcode = 0x0C
	OpArrayGet    Opcode = 0x0D
	OpArrayNew    Opcode = 0x0E
	OpArrayLen    Opcode = 0x0F
	OpArrayClear  Opcode = 0x10
	OpReturn      Opcode = 0xFF
)

// InstructionSize is the encoded width of one instruction record.
const InstructionSize = 3

var opcodeNames = map[Opcode]string{
	OpPrint:       "PRINT",
	OpNewInstance: "NEW_INSTANCE",
	OpCallMethod:  "CALL_METHOD",
	OpGetField:    "GET_FIELD",
	OpSetField:    "SET_FIELD",
	OpPushValue:   "PUSH_VALUE",
	OpPopValue:    "POP_VALUE",
	OpPrintln:     "PRINTLN",
	OpPrintChar:   "PRINTCHAR",
	OpGetGlobal:   "GET_GLOBAL",
	OpArrayDecl:   "ARRAY_DECL",
	OpArraySet:    "ARRAY_SET",
	OpArrayGet:    "ARRAY_GET",
	OpArrayNew:    "ARRAY_NEW",
	OpArrayLen:    "ARRAY_LEN",
	OpArrayClear:  "ARRAY_CLEAR",
	OpReturn:      "RETURN",
}

// String returns the mnemonic of the opcode
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}

	return fmt.Sprintf("UNKNOWN(0x%02x)", byte(op))
}

// Known reports whether the opcode has a defined meaning (reserved ones included)
func (op Opcode) Known() bool {
	_, ok := opcodeNames[op]
	return ok
}

// LookupOpcode maps a mnemonic (case-insensitive) to its opcode
func LookupOpcode(name string) (Opcode, bool) {
	upper := strings.ToUpper(name)
	for op, n := range opcodeNames {
		if n == upper {
			return op, true
		}
	}

	return 0, false
}

// Instruction is a fixed-width VM instruction record.
type Instruction struct {
	Op   Opcode
	Arg1 uint8
	Arg2 uint8
}

// String returns a string representation of the instruction
func (i Instruction) String() string {
	switch i.Op {
	case OpReturn, OpPopValue:
		return i.Op.String()
	case OpArrayNew:
		return fmt.Sprintf("%s %d, %s", i.Op, i.Arg1, ElementKind(i.Arg2))
	case OpPrintChar:
		if i.Arg1 == 0 {
			return fmt.Sprintf("%s <stack>", i.Op)
		}
		return fmt.Sprintf("%s %q", i.Op, rune(i.Arg1))
	default:
		if i.Arg2 != 0 {
			return fmt.Sprintf("%s %d, %d", i.Op, i.Arg1, i.Arg2)
		}
		return fmt.Sprintf("%s %d", i.Op, i.Arg1)
	}
}
