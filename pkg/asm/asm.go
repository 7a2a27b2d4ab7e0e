// Package asm assembles .gasm source text into bytecode images.
//
// A source file is a sequence of lines. A line holds one directive, one
// instruction, or nothing:
//
//	.title "Demo"
//	.fps 30
//	.global items dynarray float
//	.class Point
//	.field x int
//
//	push 5
//	array_new items, float
//	println "done"
//	return
//
// String operands are interned into the string pool. Names resolve to
// global, class and field indices; field names resolve against the class
// of the most recent new.
package asm

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"golden/pkg/bytecode"
	"golden/pkg/color"
	"golden/pkg/lexer"
)

// Error is a problem found at a position of the source
type Error struct {
	Pos     lexer.Position
	Msg     string
	Context string // source line
}

func (e *Error) Error() string {
	return color.ErrorWithPosition(e.Pos.Line, e.Pos.Column, e.Msg, e.Context)
}

// ErrorList collects every error of one assembly run
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}

	return strings.Join(msgs, "\n")
}

var errSkip = errors.New("skip line")

type assembler struct {
	lex   *lexer.Lexer
	tok   lexer.Token
	lines []string

	img     *bytecode.Image
	strings map[string]int

	class    int // class receiving .field and .method
	instance int // class of the most recent new

	arrays []arrayRef

	errors ErrorList
}

// arrayRef is a named array operand waiting for its array id
type arrayRef struct {
	at     int // instruction index
	global int
	tok    lexer.Token
}

// AssembleFile reads and assembles the file at path
func AssembleFile(path string) (*bytecode.Image, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Assemble(string(src))
}

// Assemble turns source text into an image. All errors of the source are
// reported together as an ErrorList.
func Assemble(src string) (*bytecode.Image, error) {
	a := &assembler{
		lex:   lexer.NewLexer(src),
		lines: strings.Split(src, "\n"),
		img: &bytecode.Image{
			Version: bytecode.Version,
			Window:  bytecode.DefaultWindow(),
		},
		strings:  make(map[string]int),
		class:    -1,
		instance: -1,
	}

	a.next()
	for a.tok.Type != lexer.EOF {
		if a.tok.Type == lexer.NEWLINE {
			a.next()
			continue
		}

		if err := a.statement(); err != nil {
			a.sync()
			continue
		}

		if a.tok.Type != lexer.NEWLINE && a.tok.Type != lexer.EOF {
			a.errorf(a.tok, "unexpected %s %q at end of statement", a.tok.Type, a.tok.Lexeme)
			a.sync()
		}
	}

	a.resolveArrays()

	if len(a.errors) > 0 {
		return nil, a.errors
	}

	return a.img, nil
}

func (a *assembler) next() {
	a.tok = a.lex.NextToken()
}

// sync skips the rest of the current line
func (a *assembler) sync() {
	for a.tok.Type != lexer.NEWLINE && a.tok.Type != lexer.EOF {
		a.next()
	}
}

// errorf records an error at tok and returns errSkip
func (a *assembler) errorf(tok lexer.Token, format string, args ...any) error {
	context := ""
	if tok.Pos.Line-1 < len(a.lines) {
		context = a.lines[tok.Pos.Line-1]
	}

	a.errors = append(a.errors, &Error{Pos: tok.Pos, Msg: fmt.Sprintf(format, args...), Context: context})
	return errSkip
}

func (a *assembler) statement() error {
	switch a.tok.Type {
	case lexer.DIRECTIVE:
		return a.directive()
	case lexer.ID:
		return a.instruction()
	case lexer.ILLEGAL:
		return a.errorf(a.tok, "illegal token %q", a.tok.Lexeme)
	default:
		return a.errorf(a.tok, "expected a directive or an instruction, got %s", a.tok.Type)
	}
}

// atEnd reports whether the current statement has no more operands
func (a *assembler) atEnd() bool {
	return a.tok.Type == lexer.NEWLINE || a.tok.Type == lexer.EOF
}

func (a *assembler) expect(tt lexer.TokenType, what string) (lexer.Token, error) {
	tok := a.tok
	if tok.Type != tt {
		if a.atEnd() {
			return tok, a.errorf(tok, "missing %s", what)
		}
		return tok, a.errorf(tok, "expected %s, got %s %q", what, tok.Type, tok.Lexeme)
	}

	a.next()
	return tok, nil
}

func (a *assembler) name(what string) (string, lexer.Token, error) {
	tok, err := a.expect(lexer.ID, what)
	return tok.Literal, tok, err
}

func (a *assembler) text(what string) (string, error) {
	if a.tok.Type == lexer.ID {
		tok := a.tok
		a.next()
		return tok.Literal, nil
	}

	tok, err := a.expect(lexer.STRING, what)
	return tok.Literal, err
}

func (a *assembler) number(what string) (float64, lexer.Token, error) {
	tok, err := a.expect(lexer.NUM, what)
	if err != nil {
		return 0, tok, err
	}

	f, perr := strconv.ParseFloat(tok.Literal, 64)
	if perr != nil {
		return 0, tok, a.errorf(tok, "invalid %s %q", what, tok.Lexeme)
	}

	return f, tok, nil
}

func (a *assembler) integer(what string, lo, hi int64) (int64, error) {
	f, tok, err := a.number(what)
	if err != nil {
		return 0, err
	}

	if f != math.Trunc(f) || f < float64(lo) || f > float64(hi) {
		return 0, a.errorf(tok, "%s %s must be an integer in [%d, %d]", what, tok.Lexeme, lo, hi)
	}

	return int64(f), nil
}

// comma consumes an optional separator between operands
func (a *assembler) comma() {
	if a.tok.Type == lexer.COMMA {
		a.next()
	}
}

func (a *assembler) intern(tok lexer.Token, s string) (uint8, error) {
	idx, ok := a.strings[s]
	if !ok {
		idx = len(a.img.Strings)
		a.img.Strings = append(a.img.Strings, s)
		a.strings[s] = idx
	}

	if idx > math.MaxUint8 {
		return 0, a.errorf(tok, "string %q is pool entry %d, beyond the reach of an operand", s, idx)
	}

	return uint8(idx), nil
}

func (a *assembler) lookup(tok lexer.Token, what string, idx int) (uint8, error) {
	if idx < 0 {
		return 0, a.errorf(tok, "undefined %s %q", what, tok.Literal)
	}
	if idx > math.MaxUint8 {
		return 0, a.errorf(tok, "%s %q has index %d, beyond the reach of an operand", what, tok.Literal, idx)
	}

	return uint8(idx), nil
}

// resolveArrays rewrites named array operands to the id of the array the
// variable is bound to at that instruction. Static arrays take ids in
// declaration order and every array_new on an array variable takes the
// next one. This assumes every earlier array_new succeeds.
func (a *assembler) resolveArrays() {
	binding := make(map[int]int)
	next := 0
	for idx, g := range a.img.Globals {
		if g.Kind == bytecode.KindStaticArray {
			binding[idx] = next
			next++
		}
	}

	refs := a.arrays
	for pc := range a.img.Code {
		in := &a.img.Code[pc]

		if len(refs) > 0 && refs[0].at == pc {
			a.resolveArray(in, refs[0], binding, next)
			refs = refs[1:]
		}

		if in.Op == bytecode.OpArrayNew && int(in.Arg1) < len(a.img.Globals) && a.img.Globals[in.Arg1].Kind.IsArray() {
			binding[int(in.Arg1)] = next
			next++
		}
	}
}

func (a *assembler) resolveArray(in *bytecode.Instruction, ref arrayRef, binding map[int]int, tableLen int) {
	name := a.img.Globals[ref.global].Name

	id, bound := binding[ref.global]
	switch {
	case bound && id > math.MaxUint8:
		a.errorf(ref.tok, "array %q has id %d, beyond the reach of an operand", name, id)
	case bound:
		in.Arg1 = uint8(id)
	case ref.global < tableLen:
		// unbound: the variable index would be taken for array id ref.global
		a.errorf(ref.tok, "dynamic array %q used before array_new", name)
	default:
		in.Arg1 = uint8(ref.global)
	}
}

func parseElement(s string) (bytecode.ElementKind, bool) {
	switch s {
	case "int", "i":
		return bytecode.ElemInt, true
	case "float", "d":
		return bytecode.ElemFloat, true
	case "string", "s":
		return bytecode.ElemString, true
	}

	return 0, false
}

func (a *assembler) element(what string) (bytecode.ElementKind, error) {
	tok := a.tok
	if tok.Type != lexer.ID && tok.Type != lexer.CHAR {
		_, err := a.expect(lexer.ID, what)
		return 0, err
	}

	a.next()
	kind, ok := parseElement(tok.Literal)
	if !ok {
		return 0, a.errorf(tok, "unknown %s %q (want int, float or string)", what, tok.Literal)
	}

	return kind, nil
}
