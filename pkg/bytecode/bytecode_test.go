package bytecode_test

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"golden/pkg/bytecode"
)

func sampleImage() *bytecode.Image {
	return &bytecode.Image{
		Version: bytecode.Version,
		Window: bytecode.WindowConfig{
			Title:     "Demo",
			Width:     1280,
			Height:    720,
			Resizable: true,
			Mode:      "windowed",
			Renderer:  "none",
			FPS:       30,
		},
		Globals: []bytecode.Global{
			{Name: "count", Kind: bytecode.KindInt, Number: 42},
			{Name: "ratio", Kind: bytecode.KindFloat, Number: -2.5},
			{Name: "greeting", Kind: bytecode.KindString, Text: "hello"},
			{Name: "empty", Kind: bytecode.KindString, Text: ""},
			{Name: "grid", Kind: bytecode.KindStaticArray, Element: bytecode.ElemInt, Size: 16},
			{Name: "items", Kind: bytecode.KindDynamicArray, Element: bytecode.ElemFloat},
		},
		Classes: []bytecode.Class{
			{Name: "Empty"},
			{
				Name: "Point",
				Fields: []bytecode.Field{
					{Name: "x", Kind: bytecode.ElemInt},
					{Name: "y", Kind: bytecode.ElemFloat},
				},
			},
			{
				Name:   "Player",
				Fields: []bytecode.Field{{Name: "hp", Kind: bytecode.ElemInt}},
				Methods: []bytecode.Method{
					{Name: "heal", Public: true, Start: 3, Count: 4, Params: 1},
					{Name: "tick", Public: false, Start: 0, Count: 0, Params: 0},
				},
			},
		},
		Strings: []string{"Hi", "5", "", "multi\nline"},
		Code: []bytecode.Instruction{
			{Op: bytecode.OpPushValue, Arg1: 1},
			{Op: bytecode.OpPrintln, Arg1: 0},
			{Op: bytecode.OpArrayNew, Arg1: 5, Arg2: byte(bytecode.ElemFloat)},
			{Op: bytecode.OpReturn},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		img  *bytecode.Image
	}{
		{"full image", sampleImage()},
		{"empty tables", &bytecode.Image{Version: bytecode.Version, Window: bytecode.DefaultWindow()}},
		{"code only", &bytecode.Image{
			Version: bytecode.Version,
			Code:    []bytecode.Instruction{{Op: bytecode.OpPrintChar, Arg1: 'A'}, {Op: 0x7e, Arg1: 1, Arg2: 2}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := bytecode.Encode(tt.img)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			got, err := bytecode.Load(data)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}

			if !reflect.DeepEqual(got, tt.img) {
				t.Errorf("round trip mismatch\nwant=%+v\ngot=%+v", tt.img, got)
			}
		})
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	data, _ := bytecode.Encode(sampleImage())
	data[0] = 'X'

	img, err := bytecode.Load(data)
	if !errors.Is(err, bytecode.ErrBadMagic) {
		t.Fatalf("expected ErrBadMagic, got %v", err)
	}
	if img != nil {
		t.Errorf("expected no image on failure")
	}
}

func TestLoadRejectsUnknownVersion(t *testing.T) {
	data, _ := bytecode.Encode(sampleImage())
	data[4] = 2

	if _, err := bytecode.Load(data); !errors.Is(err, bytecode.ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestLoadTruncated(t *testing.T) {
	img := sampleImage()
	data, _ := bytecode.Encode(img)
	codeStart := len(data) - len(img.Code)*bytecode.InstructionSize

	for n := 0; n < len(data); n++ {
		atRecordBoundary := n >= codeStart && (n-codeStart)%bytecode.InstructionSize == 0
		got, err := bytecode.Load(data[:n])

		if atRecordBoundary {
			if err != nil {
				t.Errorf("prefix %d: expected a shorter valid program, got %v", n, err)
				continue
			}
			if len(got.Code) != (n-codeStart)/bytecode.InstructionSize {
				t.Errorf("prefix %d: expected %d instructions, got %d", n, (n-codeStart)/bytecode.InstructionSize, len(got.Code))
			}
			continue
		}

		if !errors.Is(err, bytecode.ErrTruncatedImage) {
			t.Errorf("prefix %d: expected ErrTruncatedImage, got %v", n, err)
		}
		if got != nil {
			t.Errorf("prefix %d: partial image exposed", n)
		}
	}
}

func TestLoadRejectsCorruptGlobals(t *testing.T) {
	tests := []struct {
		name   string
		global bytecode.Global
		patch  func(data []byte, at int)
	}{
		{
			name:   "unknown kind tag",
			global: bytecode.Global{Name: "v", Kind: bytecode.KindInt},
			patch:  func(data []byte, at int) { data[at] = 'z' },
		},
		{
			name:   "negative static size",
			global: bytecode.Global{Name: "v", Kind: bytecode.KindStaticArray, Element: bytecode.ElemInt, Size: 1},
			patch:  func(data []byte, at int) { data[at+2], data[at+3], data[at+4], data[at+5] = 0xff, 0xff, 0xff, 0xff },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &bytecode.Image{Version: bytecode.Version, Globals: []bytecode.Global{tt.global}}
			data, err := bytecode.Encode(img)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			// header(5) + empty window strings and fixed fields (1+2+2+1+1+1+2) + count(2) + name(2)
			kindAt := 5 + 10 + 2 + 2
			tt.patch(data, kindAt)

			if _, err := bytecode.Load(data); !errors.Is(err, bytecode.ErrCorruptImage) {
				t.Fatalf("expected ErrCorruptImage, got %v", err)
			}
		})
	}
}

func TestEncodeRejectsInvalidFields(t *testing.T) {
	tests := []struct {
		name   string
		global bytecode.Global
		want   error
	}{
		{"long name", bytecode.Global{Name: strings.Repeat("n", 256), Kind: bytecode.KindInt}, bytecode.ErrFieldTooLarge},
		{"negative array size", bytecode.Global{Name: "grid", Kind: bytecode.KindStaticArray, Element: bytecode.ElemInt, Size: -1}, bytecode.ErrCorruptImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := &bytecode.Image{Version: bytecode.Version, Globals: []bytecode.Global{tt.global}}

			data, err := bytecode.Encode(img)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if data != nil {
				t.Errorf("expected no data on failure")
			}
		})
	}
}

func TestOpcodeNames(t *testing.T) {
	tests := []struct {
		name string
		op   bytecode.Opcode
	}{
		{"println", bytecode.OpPrintln},
		{"ARRAY_NEW", bytecode.OpArrayNew},
		{"Return", bytecode.OpReturn},
	}

	for _, tt := range tests {
		op, ok := bytecode.LookupOpcode(tt.name)
		if !ok || op != tt.op {
			t.Errorf("LookupOpcode(%q) = %v, %v; want %v", tt.name, op, ok, tt.op)
		}
	}

	if _, ok := bytecode.LookupOpcode("JUMP"); ok {
		t.Errorf("expected JUMP to be unknown")
	}
	if got := bytecode.Opcode(0x42).String(); got != "UNKNOWN(0x42)" {
		t.Errorf("unexpected name for unknown opcode: %s", got)
	}
}

func TestDisassemble(t *testing.T) {
	lines := bytecode.Disassemble(sampleImage())
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}

	expected := []string{
		`0000  PUSH_VALUE 1             ; "5"`,
		`0001  PRINTLN 0                ; "Hi"`,
		`0002  ARRAY_NEW 5, float       ; dynarray items`,
		`0003  RETURN`,
	}
	for i, want := range expected {
		if got := lines[i].String(); got != want {
			t.Errorf("line %d: want=%q got=%q", i, want, got)
		}
	}
}
