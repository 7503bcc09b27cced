package fxom

import (
	"errors"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring"
)

// ErrStaleHandle is returned for a handle whose node left the document.
var ErrStaleHandle = errors.New("stale node handle")

// Handle identifies a node within its document. Handles are invalidated when
// the node moves to another document or the content is reloaded; the slot may
// then be reused under a new generation.
type Handle struct {
	epoch uint32
	index uint32
	gen   uint32
}

// Index is the slot index, usable as a bitmap member.
func (h Handle) Index() uint32 { return h.index }

// IsZero reports whether h was never assigned.
func (h Handle) IsZero() bool { return h.gen == 0 }

type slot struct {
	gen  uint32
	node Node
}

// arenaEpochs numbers arenas so that a handle never validates against an
// arena other than the one that issued it.
var arenaEpochs atomic.Uint32

// arena is the per-document slab of nodes. A reload replaces it.
type arena struct {
	epoch uint32
	slots []slot
	free  []uint32
}

func newArena() *arena {
	return &arena{epoch: arenaEpochs.Add(1)}
}

func (a *arena) alloc(n Node) Handle {
	var idx uint32
	if k := len(a.free); k > 0 {
		idx = a.free[k-1]
		a.free = a.free[:k-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot{})
	}
	s := &a.slots[idx]
	s.gen++
	s.node = n
	return Handle{epoch: a.epoch, index: idx, gen: s.gen}
}

func (a *arena) release(h Handle) {
	if !a.valid(h) {
		return
	}
	a.slots[h.index].node = nil
	a.slots[h.index].gen++
	a.free = append(a.free, h.index)
}

func (a *arena) valid(h Handle) bool {
	return !h.IsZero() && h.epoch == a.epoch && int(h.index) < len(a.slots) && a.slots[h.index].gen == h.gen && a.slots[h.index].node != nil
}

func (a *arena) lookup(h Handle) (Node, error) {
	if !a.valid(h) {
		return nil, ErrStaleHandle
	}
	return a.slots[h.index].node, nil
}

func (a *arena) live() int {
	return len(a.slots) - len(a.free)
}

// HandleSet is a set of nodes of one document, kept as a roaring bitmap of
// slot indices.
type HandleSet struct {
	bm *roaring.Bitmap
}

// NewHandleSet returns an empty set.
func NewHandleSet() *HandleSet {
	return &HandleSet{bm: roaring.New()}
}

// SubtreeSet returns the set holding n and every node below it.
func SubtreeSet(n Node) *HandleSet {
	s := NewHandleSet()
	s.AddSubtree(n)
	return s
}

// Add inserts a single node.
func (s *HandleSet) Add(n Node) {
	s.bm.Add(n.Handle().index)
}

// AddSubtree inserts n and its descendants, properties included.
func (s *HandleSet) AddSubtree(n Node) {
	walk(n, func(x Node) bool {
		s.bm.Add(x.Handle().index)
		return true
	})
}

// Contains reports membership. A nil set contains nothing.
func (s *HandleSet) Contains(n Node) bool {
	return s != nil && s.bm.Contains(n.Handle().index)
}

// Len returns the number of members.
func (s *HandleSet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.bm.GetCardinality())
}

// Bitmap exposes the underlying bitmap.
func (s *HandleSet) Bitmap() *roaring.Bitmap {
	return s.bm
}
