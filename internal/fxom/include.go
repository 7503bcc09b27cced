package fxom

import (
	"fmt"
	"net/url"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// MaxIncludeDepth bounds nested fx:include chains.
	MaxIncludeDepth = 16

	defaultIncludeCacheSize = 64
)

// include loads the document named by an fx:include and adopts its root
// object as the include's live value.
func (r *refresher) include(o *Intrinsic) {
	d := r.doc
	o.included, o.target = nil, nil
	src := o.Source()
	switch {
	case src == "":
		o.setFailure(fmt.Errorf("%w: include without source", ErrUnresolved))
		return
	case d.fs == nil:
		o.setFailure(ErrNoFilesystem)
		return
	}
	name := d.ResolvePath(src)
	if d.location != nil && name == d.location.Path || slices.Contains(d.chain, name) {
		o.setFailure(fmt.Errorf("%w: %s", ErrIncludeCycle, name))
		return
	}
	if len(d.chain) >= MaxIncludeDepth {
		o.setFailure(fmt.Errorf("%w: %s", ErrIncludeDepth, name))
		return
	}

	sub, ok := d.includes.get(name)
	if !ok {
		chain := append(slices.Clone(d.chain), d.locationPath())
		var err error
		sub, err = Open(d.fs, name,
			WithInstantiator(d.inst),
			WithMetadata(d.md),
			WithLogger(d.logger.With("include", name)),
			WithContext(d.context),
			WithResources(d.resources),
			withIncludeState(d.includes, chain),
		)
		if err != nil {
			d.logger.Warn("include failed", "source", src, "err", err)
			o.setFailure(fmt.Errorf("include %s: %w", src, err))
			return
		}
		d.includes.put(name, sub)
	}
	o.included = sub
	if sub.root == nil {
		o.setFailure(fmt.Errorf("%w: %s is empty", ErrUnresolved, name))
		return
	}
	o.target = sub.root
	if live, ok := sub.root.Live(); ok {
		o.setLive(live)
	} else {
		o.setFailure(fmt.Errorf("include %s: %w", src, sub.root.Failure()))
	}
}

func (d *Document) locationPath() string {
	if d.location == nil {
		return ""
	}
	return d.location.Path
}

func withIncludeState(c *includeCache, chain []string) Option {
	return func(d *Document) {
		d.includes = c
		d.chain = chain
	}
}

// InvalidateIncludes drops cached included documents so the next refresh
// reads them again.
func (d *Document) InvalidateIncludes() {
	d.includes.clear()
}

// IncludeLocation returns the URL an include source resolves to.
func (d *Document) IncludeLocation(source string) *url.URL {
	return &url.URL{Path: d.ResolvePath(source)}
}

// includeCache is a bounded LRU of loaded includes, shared by a document
// and everything it includes.
type includeCache struct {
	docs *lru.Cache[string, *Document]
}

func newIncludeCache(maxSize int) *includeCache {
	docs, err := lru.New[string, *Document](maxSize)
	if err != nil {
		panic(err) // only for a non-positive size
	}
	return &includeCache{docs: docs}
}

func (c *includeCache) get(key string) (*Document, bool) { return c.docs.Get(key) }

func (c *includeCache) put(key string, value *Document) { c.docs.Add(key, value) }

func (c *includeCache) clear() { c.docs.Purge() }
