package fxom

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/agentic-research/fxom/internal/glue"
	"github.com/agentic-research/fxom/internal/metadata"
	"github.com/agentic-research/fxom/internal/writeback"
)

// DefaultCollection names the implicit collection of a class that declares
// no default property.
const DefaultCollection = "children"

// Document owns a markup tree and the node graph built over it. Every node
// belongs to exactly one document. Documents are not safe for concurrent use.
type Document struct {
	markup *glue.Document
	root   Object
	arena  *arena

	location  *url.URL
	context   any
	resources any
	inst      Instantiator
	md        metadata.Metadata
	fs        billy.Filesystem
	logger    *slog.Logger

	depth    int
	revision uint64
	saved    uint64

	includes *includeCache
	chain    []string
}

// Option configures a Document.
type Option func(*Document)

// WithInstantiator sets the component that turns instances into live objects.
func WithInstantiator(i Instantiator) Option {
	return func(d *Document) { d.inst = i }
}

// WithMetadata sets the class catalog. The built-in catalog is the default.
func WithMetadata(md metadata.Metadata) Option {
	return func(d *Document) { d.md = md }
}

// WithFilesystem sets where includes are read from and saves go to.
func WithFilesystem(fs billy.Filesystem) Option {
	return func(d *Document) { d.fs = fs }
}

// WithLogger sets the logger; the default discards.
func WithLogger(l *slog.Logger) Option {
	return func(d *Document) { d.logger = l }
}

// WithLocation sets the document location used to resolve relative paths.
func WithLocation(u *url.URL) Option {
	return func(d *Document) { d.location = u }
}

// WithContext sets the opaque context handed to the instantiator.
func WithContext(ctx any) Option {
	return func(d *Document) { d.context = ctx }
}

// WithResources sets the opaque resource bundle handed to the instantiator.
func WithResources(r any) Option {
	return func(d *Document) { d.resources = r }
}

// NewDocument returns an empty document.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		markup: glue.NewDocument(),
		arena:  newArena(),
		md:     metadata.Builtin(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.includes == nil {
		d.includes = newIncludeCache(defaultIncludeCacheSize)
	}
	return d
}

// Load builds a document from markup text.
func Load(text []byte, opts ...Option) (*Document, error) {
	d := NewDocument(opts...)
	if err := d.SetText(text); err != nil {
		return nil, err
	}
	d.saved = d.revision
	return d, nil
}

// Open reads name from fs and builds a document located there.
func Open(fs billy.Filesystem, name string, opts ...Option) (*Document, error) {
	data, err := util.ReadFile(fs, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	opts = append([]Option{WithFilesystem(fs), WithLocation(&url.URL{Path: name})}, opts...)
	return Load(data, opts...)
}

// SetText replaces the whole content. On a parse or structure error the
// document is left untouched.
func (d *Document) SetText(text []byte) error {
	gd, err := glue.Parse(text)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := d.adopt(gd); err != nil {
		return err
	}
	d.logger.Debug("document loaded", "location", d.locationPath(), "nodes", d.arena.live())
	return nil
}

func (d *Document) adopt(gd *glue.Document) error {
	b := &builder{doc: d, arena: newArena()}
	var root Object
	if e := gd.Root(); e != nil {
		var err error
		if root, err = b.object(e); err != nil {
			return err
		}
	}
	defer d.update()()
	d.markup, d.root, d.arena = gd, root, b.arena
	return nil
}

// Text serializes the markup.
func (d *Document) Text() []byte { return d.markup.Bytes() }

// Markup returns the underlying markup tree.
func (d *Document) Markup() *glue.Document { return d.markup }

// Save writes the text back to the document location.
func (d *Document) Save() error {
	if d.fs == nil {
		return ErrNoFilesystem
	}
	if d.location == nil || d.location.Path == "" {
		return ErrNoLocation
	}
	if err := writeback.WriteFile(d.fs, d.location.Path, d.Text()); err != nil {
		return err
	}
	d.saved = d.revision
	d.logger.Debug("document saved", "path", d.location.Path, "revision", d.revision)
	return nil
}

// SaveAs moves the document location to name and saves it there.
func (d *Document) SaveAs(name string) error {
	prev := d.location
	d.location = &url.URL{Path: name}
	if err := d.Save(); err != nil {
		d.location = prev
		return err
	}
	return nil
}

// Root returns the root object, nil for an empty document.
func (d *Document) Root() Object { return d.root }

// SetRoot installs o as root and returns the previous one, which stays owned
// by d. A nil o empties the document.
func (d *Document) SetRoot(o Object) Object {
	if o != nil {
		switch {
		case o.Document() != d:
			panic("fxom: root belongs to another document")
		case o.ParentProperty() != nil:
			panic("fxom: root is still in a collection")
		case o.Element() == nil || o.Element().Kind() != glue.KindElement:
			panic("fxom: root must be backed by an element")
		}
	}
	defer d.update()()
	prev := d.root
	var e *glue.Element
	if o != nil {
		e = o.Element()
	}
	d.markup.SetRoot(e)
	d.root = o
	return prev
}

// Location returns the document location, nil when unknown.
func (d *Document) Location() *url.URL { return d.location }

// SetLocation changes the location used for relative paths.
func (d *Document) SetLocation(u *url.URL) {
	defer d.update()()
	d.location = u
}

// Context returns the opaque context.
func (d *Document) Context() any { return d.context }

// Resources returns the opaque resource bundle.
func (d *Document) Resources() any { return d.resources }

// Metadata returns the class catalog.
func (d *Document) Metadata() metadata.Metadata { return d.md }

// Filesystem returns the filesystem, nil when none is configured.
func (d *Document) Filesystem() billy.Filesystem { return d.fs }

// Logger returns the document logger.
func (d *Document) Logger() *slog.Logger { return d.logger }

// Lookup resolves a handle of this document.
func (d *Document) Lookup(h Handle) (Node, error) { return d.arena.lookup(h) }

// NodeCount returns the number of live node slots.
func (d *Document) NodeCount() int { return d.arena.live() }

// ResolvePath resolves a path relative to the document location.
func (d *Document) ResolvePath(p string) string {
	if path.IsAbs(p) || d.location == nil {
		return path.Clean(p)
	}
	return path.Join(path.Dir(d.location.Path), p)
}

// BeginUpdate opens an update bracket. Brackets nest; the live objects are
// refreshed when the outermost one closes.
func (d *Document) BeginUpdate() { d.depth++ }

// EndUpdate closes an update bracket.
func (d *Document) EndUpdate() {
	if d.depth == 0 {
		panic("fxom: EndUpdate without BeginUpdate")
	}
	d.depth--
	if d.depth == 0 {
		d.revision++
		d.refresh()
	}
}

// IsUpdating reports whether an update bracket is open.
func (d *Document) IsUpdating() bool { return d.depth > 0 }

func (d *Document) update() func() {
	d.BeginUpdate()
	return d.EndUpdate
}

// Revision increases with every completed update.
func (d *Document) Revision() uint64 { return d.revision }

// IsDirty reports whether the document changed since it was loaded or saved.
func (d *Document) IsDirty() bool { return d.revision != d.saved }

// MarkSaved clears the dirty flag without writing.
func (d *Document) MarkSaved() { d.saved = d.revision }

// Refresh re-instantiates the live objects. Inside an update it is deferred
// to the closing bracket.
func (d *Document) Refresh() {
	if d.depth == 0 {
		d.refresh()
	}
}

func (d *Document) register(a *arena, n Node, e *glue.Element) {
	c := n.core()
	c.doc, c.elem = d, e
	c.handle = a.alloc(n)
}
