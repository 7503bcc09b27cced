package metadata

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

//go:embed builtin.hcl
var builtinCatalog []byte

// Class is one declared class of a Catalog.
type Class struct {
	Name            string
	Package         string
	Extends         string
	Abstract        bool
	DefaultProperty string
	Accessories     []Accessory
}

// QualifiedName returns the package-qualified class name.
func (c *Class) QualifiedName() string {
	if c.Package == "" {
		return c.Name
	}
	return c.Package + "." + c.Name
}

// Catalog is a Metadata backed by class declarations written in HCL.
type Catalog struct {
	classes map[string]*Class
	order   []string
}

// hclCatalogFile is the top-level structure of a catalog file for decoding.
type hclCatalogFile struct {
	Classes []*hclClass `hcl:"class,block"`
}

type hclClass struct {
	Name            string          `hcl:"name,label"`
	Package         string          `hcl:"package,optional"`
	Extends         string          `hcl:"extends,optional"`
	Abstract        bool            `hcl:"abstract,optional"`
	DefaultProperty string          `hcl:"default_property,optional"`
	Accessories     []*hclAccessory `hcl:"accessory,block"`
}

type hclAccessory struct {
	Name    string `hcl:"name,label"`
	Kind    string `hcl:"kind"`
	Content string `hcl:"content,optional"`
}

// Builtin returns the catalog shipped with the module.
func Builtin() *Catalog {
	c, err := ParseCatalog(builtinCatalog, "builtin.hcl")
	if err != nil {
		panic(fmt.Sprintf("metadata: builtin catalog is invalid: %v", err))
	}
	return c
}

// LoadCatalog reads and decodes a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(src, path)
}

// ParseCatalog decodes catalog source. filename is used in diagnostics.
func ParseCatalog(src []byte, filename string) (*Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", filename, diags)
	}

	var parsed hclCatalogFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode catalog %s: %w", filename, diags)
	}

	c := &Catalog{classes: make(map[string]*Class, len(parsed.Classes))}
	for _, hc := range parsed.Classes {
		if _, dup := c.classes[hc.Name]; dup {
			return nil, fmt.Errorf("%s: duplicate class %q", filename, hc.Name)
		}
		cls := &Class{
			Name:            hc.Name,
			Package:         hc.Package,
			Extends:         hc.Extends,
			Abstract:        hc.Abstract,
			DefaultProperty: hc.DefaultProperty,
		}
		for _, ha := range hc.Accessories {
			kind, err := parseAccessoryKind(ha.Kind)
			if err != nil {
				return nil, fmt.Errorf("%s: class %q accessory %q: %w", filename, hc.Name, ha.Name, err)
			}
			cls.Accessories = append(cls.Accessories, Accessory{Name: ha.Name, Kind: kind, Content: ha.Content})
		}
		c.classes[hc.Name] = cls
		c.order = append(c.order, hc.Name)
	}

	for _, name := range c.order {
		cls := c.classes[name]
		if cls.Extends != "" {
			if _, ok := c.classes[cls.Extends]; !ok {
				return nil, fmt.Errorf("%s: class %q extends unknown class %q", filename, name, cls.Extends)
			}
		}
		if c.hasCycle(name) {
			return nil, fmt.Errorf("%s: class %q has a cyclic super chain", filename, name)
		}
	}
	return c, nil
}

func parseAccessoryKind(s string) (AccessoryKind, error) {
	switch s {
	case "collection":
		return AccessoryCollection, nil
	case "single":
		return AccessorySingle, nil
	case "none":
		return AccessoryNone, nil
	default:
		return AccessoryNone, fmt.Errorf("unknown accessory kind %q (want collection, single or none)", s)
	}
}

func (c *Catalog) hasCycle(name string) bool {
	seen := map[string]bool{}
	for cls := c.classes[name]; cls != nil; cls = c.classes[cls.Extends] {
		if seen[cls.Name] {
			return true
		}
		seen[cls.Name] = true
	}
	return false
}

// Lookup returns the declaration of class.
func (c *Catalog) Lookup(class string) (*Class, bool) {
	cls, ok := c.classes[SimpleName(class)]
	return cls, ok
}

// Classes lists declared class names in declaration order.
func (c *Catalog) Classes() []string {
	return slices.Clone(c.order)
}

// chain walks class and its super classes.
func (c *Catalog) chain(class string, fn func(*Class) bool) {
	for cls := c.classes[SimpleName(class)]; cls != nil; cls = c.classes[cls.Extends] {
		if !fn(cls) {
			return
		}
	}
}

// Accessory implements Metadata.
func (c *Catalog) Accessory(class, property string) Accessory {
	found := Accessory{Name: property}
	c.chain(class, func(cls *Class) bool {
		for _, a := range cls.Accessories {
			if a.Name == property {
				found = a
				return false
			}
		}
		return true
	})
	return found
}

// DefaultProperty implements Metadata.
func (c *Catalog) DefaultProperty(class string) string {
	var name string
	c.chain(class, func(cls *Class) bool {
		name = cls.DefaultProperty
		return name == ""
	})
	return name
}

// IsAssignable implements Metadata.
func (c *Catalog) IsAssignable(class, target string) bool {
	target = SimpleName(target)
	if target == "" || target == "Object" {
		return true
	}
	ok := false
	if SimpleName(class) == target {
		return true
	}
	c.chain(class, func(cls *Class) bool {
		ok = cls.Name == target
		return !ok
	})
	return ok
}

var _ Metadata = (*Catalog)(nil)
