package bytecode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
)

var ErrFieldTooLarge = errors.New("value does not fit its container field")

// writer builds a container. Like reader, the first error is sticky.
type writer struct {
	buf bytes.Buffer
	err error
}

func (w *writer) u8(v uint8) {
	w.buf.WriteByte(v)
}

func (w *writer) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) u32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *writer) f64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

func (w *writer) count16(n int, what string) {
	if n > math.MaxUint16 {
		w.tooLarge(what, n, math.MaxUint16)
	}
	w.u16(uint16(n))
}

func (w *writer) count8(n int, what string) {
	if n > math.MaxUint8 {
		w.tooLarge(what, n, math.MaxUint8)
	}
	w.u8(uint8(n))
}

func (w *writer) str8(s, what string) {
	w.count8(len(s), what)
	w.buf.WriteString(s)
}

func (w *writer) str16(s, what string) {
	w.count16(len(s), what)
	w.buf.WriteString(s)
}

func (w *writer) tooLarge(what string, n, limit int) {
	if w.err == nil {
		w.err = fmt.Errorf("%w: %s is %d, limit %d", ErrFieldTooLarge, what, n, limit)
	}
}

// Encode serializes an image into the container layout read by Load.
func Encode(img *Image) ([]byte, error) {
	w := &writer{}

	w.buf.Write(Magic[:])
	w.u8(Version)

	win := img.Window
	w.str8(win.Title, "window title")
	w.u16(win.Width)
	w.u16(win.Height)
	if win.Resizable {
		w.u8(1)
	} else {
		w.u8(0)
	}
	w.str8(win.Mode, "window mode")
	w.str8(win.Renderer, "renderer")
	w.u16(win.FPS)

	w.count16(len(img.Globals), "global count")
	for _, g := range img.Globals {
		w.str8(g.Name, "global name")
		w.u8(byte(g.Kind))
		switch g.Kind {
		case KindString:
			w.str16(g.Text, "string value of "+g.Name)
		case KindStaticArray:
			if g.Size < 0 && w.err == nil {
				w.err = fmt.Errorf("%w: negative size %d for array %q", ErrCorruptImage, g.Size, g.Name)
			}
			w.u8(byte(g.Element))
			w.u32(uint32(g.Size))
		case KindDynamicArray:
			w.u8(byte(g.Element))
		case KindInt, KindFloat:
			w.f64(g.Number)
		default:
			if w.err == nil {
				w.err = fmt.Errorf("%w: unknown kind tag 0x%02x for global %q", ErrCorruptImage, byte(g.Kind), g.Name)
			}
		}
	}

	w.count16(len(img.Classes), "class count")
	for _, c := range img.Classes {
		w.str8(c.Name, "class name")
		w.count8(len(c.Fields), "field count of "+c.Name)
		for _, f := range c.Fields {
			w.str8(f.Name, "field name")
			w.u8(byte(f.Kind))
		}
		w.count8(len(c.Methods), "method count of "+c.Name)
		for _, m := range c.Methods {
			w.str8(m.Name, "method name")
			if m.Public {
				w.u8(1)
			} else {
				w.u8(0)
			}
			w.u32(m.Start)
			w.u32(m.Count)
			w.u8(m.Params)
		}
	}

	w.count16(len(img.Strings), "string count")
	for _, s := range img.Strings {
		w.str16(s, "string pool entry")
	}

	for _, in := range img.Code {
		w.buf.Write([]byte{byte(in.Op), in.Arg1, in.Arg2})
	}

	if w.err != nil {
		return nil, w.err
	}

	return w.buf.Bytes(), nil
}

// WriteFile encodes an image and writes it to path.
func WriteFile(path string, img *Image) error {
	data, err := Encode(img)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write bytecode file: %w", err)
	}

	return nil
}
