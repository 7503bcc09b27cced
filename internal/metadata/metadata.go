// Package metadata describes declared classes for the document core: which
// properties hold child objects, which property is the default one, and how
// classes relate to each other.
package metadata

import "strings"

// AccessoryKind says how a property holds child objects.
type AccessoryKind uint8

const (
	AccessoryNone AccessoryKind = iota
	AccessorySingle
	AccessoryCollection
)

func (k AccessoryKind) String() string {
	switch k {
	case AccessorySingle:
		return "single"
	case AccessoryCollection:
		return "collection"
	default:
		return "none"
	}
}

// Accessory is a named slot of a class that can hold child objects.
type Accessory struct {
	Name    string
	Kind    AccessoryKind
	Content string // class the slot accepts; "" accepts anything
}

// Metadata answers structural questions about declared classes. Class names
// may be simple or qualified; implementations compare simple names.
type Metadata interface {
	// Accessory reports how property of class holds children.
	Accessory(class, property string) Accessory
	// DefaultProperty names the property that collects untagged children.
	DefaultProperty(class string) string
	// IsAssignable reports whether an instance of class fits a slot
	// accepting target.
	IsAssignable(class, target string) bool
}

// SimpleName strips a package qualifier: "javafx.scene.control.Button"
// becomes "Button".
func SimpleName(class string) string {
	if i := strings.LastIndexByte(class, '.'); i >= 0 {
		return class[i+1:]
	}
	return class
}

// Accepts reports whether the accessory takes an object of class.
func Accepts(md Metadata, owner, property, class string) bool {
	acc := md.Accessory(owner, property)
	if acc.Kind == AccessoryNone {
		return false
	}
	return acc.Content == "" || md.IsAssignable(class, acc.Content)
}
