package asm

import (
	"math"
	"strings"
	"unicode/utf8"

	"golden/pkg/bytecode"
	"golden/pkg/lexer"
)

// Short mnemonics accepted next to the opcode names
var aliases = map[string]bytecode.Opcode{
	"push": bytecode.OpPushValue,
	"pop":  bytecode.OpPopValue,
	"new":  bytecode.OpNewInstance,
	"ret":  bytecode.OpReturn,
}

func (a *assembler) instruction() error {
	tok := a.tok
	a.next()

	op, ok := aliases[strings.ToLower(tok.Literal)]
	if !ok {
		op, ok = bytecode.LookupOpcode(tok.Literal)
	}
	if !ok {
		return a.errorf(tok, "unknown instruction %q", tok.Literal)
	}

	in := bytecode.Instruction{Op: op}
	var ref *arrayRef
	var err error

	switch op {
	case bytecode.OpPrint:
		in.Arg1, err = a.poolOperand(false)

	case bytecode.OpPrintln:
		in.Arg1, err = a.poolOperand(true)

	case bytecode.OpPushValue:
		in.Arg1, err = a.valueOperand()

	case bytecode.OpPrintChar:
		in.Arg1, err = a.charOperand()

	case bytecode.OpGetGlobal:
		in.Arg1, err = a.globalOperand()

	case bytecode.OpArraySet, bytecode.OpArrayGet, bytecode.OpArrayLen, bytecode.OpArrayClear:
		in.Arg1, ref, err = a.arrayOperand()

	case bytecode.OpArrayNew:
		if in.Arg1, err = a.globalOperand(); err != nil {
			return err
		}
		a.comma()
		if !a.atEnd() {
			in.Arg2, err = a.elementOperand()
		}

	case bytecode.OpNewInstance:
		in.Arg1, err = a.classOperand()

	case bytecode.OpGetField, bytecode.OpSetField:
		in.Arg1, err = a.fieldOperand()

	case bytecode.OpReturn, bytecode.OpPopValue:

	default:
		if !a.atEnd() {
			if in.Arg1, err = a.rawOperand(); err != nil {
				return err
			}
			a.comma()
		}
		if !a.atEnd() {
			in.Arg2, err = a.rawOperand()
		}
	}

	if err != nil {
		return err
	}

	if ref != nil {
		ref.at = len(a.img.Code)
		a.arrays = append(a.arrays, *ref)
	}
	a.img.Code = append(a.img.Code, in)
	return nil
}

func (a *assembler) rawOperand() (uint8, error) {
	n, err := a.integer("operand", 0, math.MaxUint8)
	return uint8(n), err
}

// poolOperand reads a string literal, interned into the pool, or a raw
// pool index. PRINTLN may omit it.
func (a *assembler) poolOperand(optional bool) (uint8, error) {
	switch {
	case a.tok.Type == lexer.STRING:
		tok := a.tok
		a.next()
		return a.intern(tok, tok.Literal)
	case a.tok.Type == lexer.NUM:
		return a.rawOperand()
	case optional && a.atEnd():
		return 0, nil
	}

	_, err := a.expect(lexer.STRING, "string")
	return 0, err
}

// valueOperand interns the text of a number or string literal
func (a *assembler) valueOperand() (uint8, error) {
	tok := a.tok
	switch tok.Type {
	case lexer.NUM:
		a.next()
		return a.intern(tok, tok.Lexeme)
	case lexer.STRING:
		a.next()
		return a.intern(tok, tok.Literal)
	}

	_, err := a.expect(lexer.NUM, "value")
	return 0, err
}

// charOperand reads a character literal or a raw byte. Without an operand
// the character is taken from the stack at run time.
func (a *assembler) charOperand() (uint8, error) {
	tok := a.tok
	switch {
	case a.atEnd():
		return 0, nil
	case tok.Type == lexer.NUM:
		return a.rawOperand()
	case tok.Type == lexer.CHAR:
		a.next()
		r, size := utf8.DecodeRuneInString(tok.Literal)
		if size != len(tok.Literal) || r == 0 || r > math.MaxUint8 {
			return 0, a.errorf(tok, "character %s does not fit in one byte", tok.Lexeme)
		}
		return uint8(r), nil
	}

	_, err := a.expect(lexer.CHAR, "character")
	return 0, err
}

func (a *assembler) globalOperand() (uint8, error) {
	if a.tok.Type == lexer.NUM {
		return a.rawOperand()
	}

	name, tok, err := a.name("global")
	if err != nil {
		return 0, err
	}

	return a.lookup(tok, "global", a.img.GlobalIndex(name))
}

// arrayOperand reads a raw operand or the name of an array global. Named
// operands are resolved to array ids once the whole source is known.
func (a *assembler) arrayOperand() (uint8, *arrayRef, error) {
	if a.tok.Type == lexer.NUM {
		n, err := a.rawOperand()
		return n, nil, err
	}

	name, tok, err := a.name("array")
	if err != nil {
		return 0, nil, err
	}

	idx := a.img.GlobalIndex(name)
	if _, err := a.lookup(tok, "global", idx); err != nil {
		return 0, nil, err
	}
	if g := a.img.Globals[idx]; !g.Kind.IsArray() {
		return 0, nil, a.errorf(tok, "global %q is %s, not an array", name, g.Kind)
	}

	return 0, &arrayRef{global: idx, tok: tok}, nil
}

func (a *assembler) classOperand() (uint8, error) {
	if a.tok.Type == lexer.NUM {
		n, err := a.rawOperand()
		if err == nil && int(n) < len(a.img.Classes) {
			a.instance = int(n)
		}
		return n, err
	}

	name, tok, err := a.name("class")
	if err != nil {
		return 0, err
	}

	idx, err := a.lookup(tok, "class", a.img.ClassIndex(name))
	if err != nil {
		return 0, err
	}

	a.instance = int(idx)
	return idx, nil
}

func (a *assembler) fieldOperand() (uint8, error) {
	if a.tok.Type == lexer.NUM {
		return a.rawOperand()
	}

	name, tok, err := a.name("field")
	if err != nil {
		return 0, err
	}
	if a.instance < 0 {
		return 0, a.errorf(tok, "field %q used before any new", name)
	}

	cls := &a.img.Classes[a.instance]
	idx := cls.FieldIndex(name)
	if idx < 0 {
		return 0, a.errorf(tok, "class %s has no field %q", cls.Name, name)
	}

	return uint8(idx), nil
}

func (a *assembler) elementOperand() (uint8, error) {
	if a.tok.Type == lexer.NUM {
		return a.rawOperand()
	}

	kind, err := a.element("element kind")
	return uint8(kind), err
}
