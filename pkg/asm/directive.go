package asm

import (
	"math"

	"golden/pkg/bytecode"
	"golden/pkg/lexer"
)

func (a *assembler) directive() error {
	tok := a.tok
	a.next()

	w := &a.img.Window
	var err error

	switch tok.Literal {
	case ".title":
		w.Title, err = a.text("title")

	case ".mode":
		w.Mode, err = a.text("mode")

	case ".renderer":
		w.Renderer, err = a.text("renderer")

	case ".size":
		var width, height int64
		if width, err = a.integer("width", 0, math.MaxUint16); err != nil {
			return err
		}
		a.comma()
		if height, err = a.integer("height", 0, math.MaxUint16); err != nil {
			return err
		}
		w.Width, w.Height = uint16(width), uint16(height)

	case ".fps":
		var fps int64
		fps, err = a.integer("fps", 0, math.MaxUint16)
		w.FPS = uint16(fps)

	case ".resizable":
		w.Resizable, err = a.flag("resizable", "true", "false")

	case ".global":
		return a.globalDecl()

	case ".class":
		return a.classDecl()

	case ".field":
		return a.fieldDecl()

	case ".method":
		return a.methodDecl()

	default:
		return a.errorf(tok, "unknown directive %s", tok.Literal)
	}

	return err
}

// flag reads a boolean written as yes/no words or 1/0
func (a *assembler) flag(what, yes, no string) (bool, error) {
	tok := a.tok
	switch {
	case tok.Type == lexer.ID && tok.Literal == yes:
		a.next()
		return true, nil
	case tok.Type == lexer.ID && tok.Literal == no:
		a.next()
		return false, nil
	case tok.Type == lexer.NUM:
		n, err := a.integer(what, 0, 1)
		return n == 1, err
	}

	return false, a.errorf(tok, "%s must be %s or %s", what, yes, no)
}

// .global name int|float [value]
// .global name string ["value"]
// .global name array <element> <size>
// .global name dynarray <element>
func (a *assembler) globalDecl() error {
	name, tok, err := a.name("global name")
	if err != nil {
		return err
	}
	if a.img.GlobalIndex(name) >= 0 {
		return a.errorf(tok, "global %q redeclared", name)
	}

	kindTok, err := a.expect(lexer.ID, "global kind")
	if err != nil {
		return err
	}

	g := bytecode.Global{Name: name}
	switch kindTok.Literal {
	case "int", "float":
		g.Kind = bytecode.KindInt
		if kindTok.Literal == "float" {
			g.Kind = bytecode.KindFloat
		}
		if !a.atEnd() {
			if g.Number, _, err = a.number("initial value"); err != nil {
				return err
			}
		}

	case "string":
		g.Kind = bytecode.KindString
		if !a.atEnd() {
			s, err := a.expect(lexer.STRING, "initial value")
			if err != nil {
				return err
			}
			g.Text = s.Literal
		}

	case "array":
		g.Kind = bytecode.KindStaticArray
		if g.Element, err = a.element("element kind"); err != nil {
			return err
		}
		a.comma()
		size, err := a.integer("array size", 0, math.MaxInt32)
		if err != nil {
			return err
		}
		g.Size = int32(size)

	case "dynarray":
		g.Kind = bytecode.KindDynamicArray
		if g.Element, err = a.element("element kind"); err != nil {
			return err
		}

	default:
		return a.errorf(kindTok, "unknown global kind %q (want int, float, string, array or dynarray)", kindTok.Literal)
	}

	a.img.Globals = append(a.img.Globals, g)
	return nil
}

// .class Name
func (a *assembler) classDecl() error {
	name, tok, err := a.name("class name")
	if err != nil {
		return err
	}
	if a.img.ClassIndex(name) >= 0 {
		return a.errorf(tok, "class %q redeclared", name)
	}

	a.img.Classes = append(a.img.Classes, bytecode.Class{Name: name})
	a.class = len(a.img.Classes) - 1

	return nil
}

func (a *assembler) currentClass(directive string) (*bytecode.Class, error) {
	if a.class < 0 {
		return nil, a.errorf(a.tok, "%s outside of a .class", directive)
	}

	return &a.img.Classes[a.class], nil
}

// .field name kind
func (a *assembler) fieldDecl() error {
	cls, err := a.currentClass(".field")
	if err != nil {
		return err
	}

	name, tok, err := a.name("field name")
	if err != nil {
		return err
	}
	if cls.FieldIndex(name) >= 0 {
		return a.errorf(tok, "field %q redeclared in %s", name, cls.Name)
	}

	kind, err := a.element("field kind")
	if err != nil {
		return err
	}

	cls.Fields = append(cls.Fields, bytecode.Field{Name: name, Kind: kind})
	return nil
}

// .method name public|private start count params
func (a *assembler) methodDecl() error {
	cls, err := a.currentClass(".method")
	if err != nil {
		return err
	}

	m := bytecode.Method{}
	if m.Name, _, err = a.name("method name"); err != nil {
		return err
	}
	if m.Public, err = a.flag("visibility", "public", "private"); err != nil {
		return err
	}

	start, err := a.integer("start", 0, math.MaxUint32)
	if err != nil {
		return err
	}
	count, err := a.integer("count", 0, math.MaxUint32)
	if err != nil {
		return err
	}
	params, err := a.integer("params", 0, math.MaxUint8)
	if err != nil {
		return err
	}

	m.Start, m.Count, m.Params = uint32(start), uint32(count), uint8(params)
	cls.Methods = append(cls.Methods, m)

	return nil
}
