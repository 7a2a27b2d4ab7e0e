// Package bytecode defines the Golden bytecode container: the in-memory image
// produced by a front end and the binary layout it is stored in.
package bytecode

import "fmt"

// Magic identifies a Golden bytecode container.
var Magic = [4]byte{'G', 'O', 'L', 'D'}

// Version is the only container layout this package reads and writes.
const Version uint8 = 1

// Presentation defaults, used by front ends when a project does not set them.
const (
	DefaultTitle    = "Golden Application"
	DefaultWidth    = 800
	DefaultHeight   = 600
	DefaultMode     = "windowed"
	DefaultRenderer = "auto"
	DefaultFPS      = 60
)

// VarKind is the one-byte kind tag of a global variable.
type VarKind byte

const (
	KindInt          VarKind = 'i'
	KindFloat        VarKind = 'd'
	KindString       VarKind = 's'
	KindStaticArray  VarKind = 'a'
	KindDynamicArray VarKind = 'b'
)

func (k VarKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindStaticArray:
		return "array"
	case KindDynamicArray:
		return "dynarray"
	default:
		return fmt.Sprintf("kind(0x%02x)", byte(k))
	}
}

// IsArray reports whether variables of this kind refer to the array table
func (k VarKind) IsArray() bool {
	return k == KindStaticArray || k == KindDynamicArray
}

// Valid reports whether k is one of the defined kind tags
func (k VarKind) Valid() bool {
	switch k {
	case KindInt, KindFloat, KindString, KindStaticArray, KindDynamicArray:
		return true
	}
	return false
}

// ElementKind is the primitive kind of array elements and class fields.
type ElementKind byte

const (
	ElemInt    ElementKind = 'i'
	ElemFloat  ElementKind = 'd'
	ElemString ElementKind = 's'
)

func (k ElementKind) String() string {
	switch k {
	case ElemInt:
		return "int"
	case ElemFloat:
		return "float"
	case ElemString:
		return "string"
	default:
		return fmt.Sprintf("elem(0x%02x)", byte(k))
	}
}

// Valid reports whether k is a known element kind
func (k ElementKind) Valid() bool {
	return k == ElemInt || k == ElemFloat || k == ElemString
}

// WindowConfig is the presentation configuration carried by an image.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     uint16 `yaml:"width"`
	Height    uint16 `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
	Mode      string `yaml:"mode"`
	Renderer  string `yaml:"renderer"`
	FPS       uint16 `yaml:"fps"`
}

// DefaultWindow returns the presentation configuration front ends start from.
func DefaultWindow() WindowConfig {
	return WindowConfig{
		Title:    DefaultTitle,
		Width:    DefaultWidth,
		Height:   DefaultHeight,
		Mode:     DefaultMode,
		Renderer: DefaultRenderer,
		FPS:      DefaultFPS,
	}
}

// Global is a declared global variable. Which payload field is meaningful
// depends on Kind: Number for int/float, Text for string, Element (and Size
// for static arrays) for the array kinds.
type Global struct {
	Name    string      `yaml:"name"`
	Kind    VarKind     `yaml:"kind"`
	Number  float64     `yaml:"number,omitempty"`
	Text    string      `yaml:"text,omitempty"`
	Element ElementKind `yaml:"element,omitempty"`
	Size    int32       `yaml:"size,omitempty"`
}

// Field is a class instance variable.
type Field struct {
	Name string      `yaml:"name"`
	Kind ElementKind `yaml:"kind"`
}

// Method is class method metadata. No instruction transfers control into
// the described range in this version of the instruction set.
type Method struct {
	Name   string `yaml:"name"`
	Public bool   `yaml:"public"`
	Start  uint32 `yaml:"start"`
	Count  uint32 `yaml:"count"`
	Params uint8  `yaml:"params"`
}

// Class is a class definition.
type Class struct {
	Name    string   `yaml:"name"`
	Fields  []Field  `yaml:"fields"`
	Methods []Method `yaml:"methods"`
}

// FieldIndex returns the index of the named field, or -1
func (c *Class) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Image is a fully loaded bytecode container.
type Image struct {
	Version uint8         `yaml:"version"`
	Window  WindowConfig  `yaml:"window"`
	Globals []Global      `yaml:"globals"`
	Classes []Class       `yaml:"classes"`
	Strings []string      `yaml:"strings"`
	Code    []Instruction `yaml:"-"`
}

// GlobalIndex returns the index of the named global, or -1
func (img *Image) GlobalIndex(name string) int {
	for i, g := range img.Globals {
		if g.Name == name {
			return i
		}
	}
	return -1
}

// ClassIndex returns the index of the named class, or -1
func (img *Image) ClassIndex(name string) int {
	for i, c := range img.Classes {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// MarshalYAML renders the kind tag by name
func (k VarKind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// MarshalYAML renders the element kind by name
func (k ElementKind) MarshalYAML() (interface{}, error) {
	if k == 0 {
		return nil, nil
	}
	return k.String(), nil
}
