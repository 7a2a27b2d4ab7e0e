package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var (
	ErrBadMagic           = errors.New("invalid magic number: expected GOLD")
	ErrUnsupportedVersion = errors.New("unsupported bytecode version")
	ErrTruncatedImage     = errors.New("unexpected end of bytecode image")
	ErrCorruptImage       = errors.New("corrupt bytecode image")
)

// reader walks a container buffer. Every read checks the remaining length
// first; the first failure is sticky so section readers can stay linear.
type reader struct {
	data    []byte
	offset  int
	section string
	err     error
}

func (r *reader) fail(err error, what string) {
	if r.err == nil {
		r.err = fmt.Errorf("%w: %s (%s section, offset %d)", err, what, r.section, r.offset)
	}
}

func (r *reader) take(n int, what string) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.offset+n > len(r.data) {
		r.fail(ErrTruncatedImage, what)
		return nil
	}
	b := r.data[r.offset : r.offset+n]
	r.offset += n
	return b
}

func (r *reader) u8(what string) uint8 {
	b := r.take(1, what)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16(what string) uint16 {
	b := r.take(2, what)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32(what string) uint32 {
	b := r.take(4, what)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) f64(what string) float64 {
	b := r.take(8, what)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

// str8 reads a string with a one-byte length prefix
func (r *reader) str8(what string) string {
	n := r.u8(what + " length")
	return string(r.take(int(n), what))
}

// str16 reads a string with a two-byte length prefix
func (r *reader) str16(what string) string {
	n := r.u16(what + " length")
	return string(r.take(int(n), what))
}

// LoadFile reads and loads a container from disk.
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bytecode file: %w", err)
	}

	return Load(data)
}

// LoadReader reads the whole stream and loads it as a container.
func LoadReader(rd io.Reader) (*Image, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to read bytecode data: %w", err)
	}

	return Load(data)
}

// Load deserializes a container. On any structural error no image is
// returned.
func Load(data []byte) (*Image, error) {
	r := &reader{data: data, section: "header"}

	magic := r.take(len(Magic), "magic")
	if r.err != nil {
		return nil, r.err
	}
	if [4]byte(magic) != Magic {
		return nil, fmt.Errorf("%w: got %q", ErrBadMagic, magic)
	}

	version := r.u8("version")
	if r.err != nil {
		return nil, r.err
	}
	if version != Version {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrUnsupportedVersion, Version, version)
	}

	img := &Image{Version: version}

	r.section = "window"
	img.Window = r.readWindow()

	r.section = "globals"
	img.Globals = r.readGlobals()

	r.section = "classes"
	img.Classes = r.readClasses()

	r.section = "strings"
	img.Strings = r.readStrings()

	r.section = "code"
	img.Code = r.readCode()

	if r.err != nil {
		return nil, r.err
	}

	return img, nil
}

func (r *reader) readWindow() WindowConfig {
	var w WindowConfig
	w.Title = r.str8("title")
	w.Width = r.u16("width")
	w.Height = r.u16("height")
	w.Resizable = r.u8("resizable") != 0
	w.Mode = r.str8("mode")
	w.Renderer = r.str8("renderer")
	w.FPS = r.u16("fps")
	return w
}

func (r *reader) readGlobals() []Global {
	count := r.u16("global count")
	if r.err != nil {
		return nil
	}

	var globals []Global
	for i := 0; i < int(count) && r.err == nil; i++ {
		g := Global{Name: r.str8("global name")}
		g.Kind = VarKind(r.u8("global kind"))
		if r.err != nil {
			break
		}

		switch g.Kind {
		case KindString:
			g.Text = r.str16("string value")
		case KindStaticArray:
			g.Element = ElementKind(r.u8("array element kind"))
			g.Size = int32(r.u32("array size"))
			if r.err == nil && g.Size < 0 {
				r.fail(ErrCorruptImage, fmt.Sprintf("negative size %d for array %q", g.Size, g.Name))
			}
		case KindDynamicArray:
			g.Element = ElementKind(r.u8("array element kind"))
		case KindInt, KindFloat:
			g.Number = r.f64("numeric value")
		default:
			r.fail(ErrCorruptImage, fmt.Sprintf("unknown kind tag 0x%02x for global %q", byte(g.Kind), g.Name))
		}

		globals = append(globals, g)
	}

	return globals
}

func (r *reader) readClasses() []Class {
	count := r.u16("class count")
	if r.err != nil {
		return nil
	}

	var classes []Class
	for i := 0; i < int(count) && r.err == nil; i++ {
		c := Class{Name: r.str8("class name")}

		fieldCount := r.u8("field count")
		for j := 0; j < int(fieldCount) && r.err == nil; j++ {
			f := Field{Name: r.str8("field name")}
			f.Kind = ElementKind(r.u8("field kind"))
			c.Fields = append(c.Fields, f)
		}

		methodCount := r.u8("method count")
		for j := 0; j < int(methodCount) && r.err == nil; j++ {
			m := Method{Name: r.str8("method name")}
			m.Public = r.u8("method visibility") != 0
			m.Start = r.u32("method start")
			m.Count = r.u32("method instruction count")
			m.Params = r.u8("method param count")
			c.Methods = append(c.Methods, m)
		}

		classes = append(classes, c)
	}

	return classes
}

func (r *reader) readStrings() []string {
	count := r.u16("string count")
	if r.err != nil {
		return nil
	}

	var pool []string
	for i := 0; i < int(count) && r.err == nil; i++ {
		pool = append(pool, r.str16("string"))
	}

	return pool
}

func (r *reader) readCode() []Instruction {
	if r.err != nil {
		return nil
	}

	rest := len(r.data) - r.offset
	if rest%InstructionSize != 0 {
		r.offset += rest - rest%InstructionSize
		r.fail(ErrTruncatedImage, fmt.Sprintf("partial instruction record of %d bytes", rest%InstructionSize))
		return nil
	}

	var code []Instruction
	for r.offset < len(r.data) {
		b := r.take(InstructionSize, "instruction")
		code = append(code, Instruction{Op: Opcode(b[0]), Arg1: b[1], Arg2: b[2]})
	}

	return code
}
