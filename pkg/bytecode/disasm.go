package bytecode

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction.
type Line struct {
	PC      int
	Instr   Instruction
	Comment string // operand annotation resolved against the image tables
}

// Disassemble annotates every instruction with the table entries its
// operands refer to.
func Disassemble(img *Image) []Line {
	lines := make([]Line, 0, len(img.Code))
	for pc, in := range img.Code {
		lines = append(lines, Line{PC: pc, Instr: in, Comment: img.annotate(in)})
	}
	return lines
}

func (img *Image) annotate(in Instruction) string {
	switch in.Op {
	case OpPrint, OpPrintln, OpPushValue:
		if int(in.Arg1) < len(img.Strings) {
			return fmt.Sprintf("%q", img.Strings[in.Arg1])
		}
		return "string index out of range"

	case OpGetGlobal, OpArrayNew:
		if int(in.Arg1) < len(img.Globals) {
			g := img.Globals[in.Arg1]
			return fmt.Sprintf("%s %s", g.Kind, g.Name)
		}
		return "variable index out of range"

	case OpArraySet, OpArrayGet, OpArrayLen, OpArrayClear:
		// The target is resolved at run time; show the variable it names
		// when read as a variable index.
		if int(in.Arg1) < len(img.Globals) {
			return "var " + img.Globals[in.Arg1].Name
		}
		return ""

	case OpNewInstance:
		if int(in.Arg1) < len(img.Classes) {
			return "class " + img.Classes[in.Arg1].Name
		}
		return "class index out of range"

	case OpCallMethod, OpArrayDecl:
		return "reserved"
	}

	if !in.Op.Known() {
		return "unknown opcode"
	}
	return ""
}

// String formats a listing line as "PC  INSTRUCTION  ; comment"
func (l Line) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%04d  %-24s", l.PC, l.Instr.String())
	if l.Comment != "" {
		sb.WriteString(" ; ")
		sb.WriteString(l.Comment)
	}
	return strings.TrimRight(sb.String(), " ")
}
