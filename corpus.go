package corpex

import "sync"

// ═══════════════════════════════════════════════════════════════════════════════
// CORPUS REGISTRY
// ═══════════════════════════════════════════════════════════════════════════════
// Document identifiers are externally assigned strings (spec: filename or
// record id). Roaring bitmaps only store uint32s, so every bitmap-backed
// index (the incidence matrix, the bigram index) needs a stable, dense
// string->uint32 mapping. Corpus is that mapping: Register records names,
// and Finalize assigns ids in sorted name order, so two builds over the
// same document name set produce identical ids and therefore byte-identical
// serialized bitmaps.
// ═══════════════════════════════════════════════════════════════════════════════

// Corpus maps document names to dense uint32 ids and back.
type Corpus struct {
	mu        sync.RWMutex
	nameToID  map[string]uint32
	idToName  []string
	finalized bool
}

// NewCorpus returns an empty, unfinalized Corpus.
func NewCorpus() *Corpus {
	return &Corpus{nameToID: make(map[string]uint32)}
}

// Register records a document name; its id is assigned later by Finalize.
// Registration must happen before Finalize.
func (c *Corpus) Register(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		panic("corpex: Corpus.Register called after Finalize")
	}
	if _, ok := c.nameToID[name]; ok {
		return
	}
	c.nameToID[name] = 0 // placeholder; real id assigned in Finalize
}

// Finalize sorts every registered name and assigns ids 0..n-1 in that order.
// Idempotent: calling it twice is a no-op.
func (c *Corpus) Finalize() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finalized {
		return
	}
	names := make([]string, 0, len(c.nameToID))
	for n := range c.nameToID {
		names = append(names, n)
	}
	sortStrings(names)
	c.idToName = names
	for id, n := range names {
		c.nameToID[n] = uint32(id)
	}
	c.finalized = true
}

// ID returns the dense id for a document name.
func (c *Corpus) ID(name string) (uint32, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.nameToID[name]
	return id, ok
}

// Name returns the document name for a dense id.
func (c *Corpus) Name(id uint32) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if int(id) >= len(c.idToName) {
		return "", false
	}
	return c.idToName[id], true
}

// Size returns the number of registered documents.
func (c *Corpus) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.idToName)
}

// Names returns every document name in id order (sorted order).
func (c *Corpus) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.idToName))
	copy(out, c.idToName)
	return out
}

// FromDictionary builds and finalizes a Corpus from every document name a
// Dictionary has seen, used when no explicit loader-provided registration
// happened (e.g. building straight from a Dictionary in tests).
func FromDictionary(dict *Dictionary) *Corpus {
	c := NewCorpus()
	for _, name := range dict.Documents() {
		c.Register(name)
	}
	c.Finalize()
	return c
}
