package corpex

import (
	"errors"
	"math"
	"math/rand"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SKIP LIST: ORDERED (DOCUMENT, OFFSET) POSTINGS
// ═══════════════════════════════════════════════════════════════════════════════
// The positional index stores every occurrence of a term as a Position in a
// per-term skip list, giving Find/FindLessThan/FindGreaterThan in O(log n)
// expected time without the overhead of a balanced tree; Last walks the
// bottom level and is O(n). Positions are immutable once built — the
// coordinate index is assembled once from a document stream and never
// mutated afterward, so this structure only needs Insert and the three Find
// variants the phrase/NEAR algorithms call; there is no Delete, no
// height-shrinking, and no general-purpose iterator, since nothing in the
// engine removes a posting. The only full walks of a term's postings are
// Last and the serializer's flattening of the bottom level.
// ═══════════════════════════════════════════════════════════════════════════════

const MaxHeight = 32

var (
	ErrKeyNotFound    = errors.New("key not found")
	ErrNoElementFound = errors.New("no element found")
)

// BOF and EOF bound every real (document, offset) pair: BOF < any position
// < EOF, so phrase/NEAR hops never need a special case for "no previous
// element" or "no next element" — they just compare against the sentinel.
const (
	BOF = math.MinInt64
	EOF = math.MaxInt64
)

// Position identifies one token occurrence: the document it occurs in and
// its 0-indexed offset within that document. Positions order first by
// DocumentID, then by Offset.
type Position struct {
	DocumentID int64
	Offset     int64
}

var (
	BOFDocument = Position{DocumentID: BOF, Offset: BOF}
	EOFDocument = Position{DocumentID: EOF, Offset: EOF}
)

// IsBeginning reports whether p is the BOF sentinel.
func (p *Position) IsBeginning() bool {
	return p.Offset == BOF
}

// IsEnd reports whether p is the EOF sentinel.
func (p *Position) IsEnd() bool {
	return p.Offset == EOF
}

// IsBefore reports whether p sorts strictly before other: by DocumentID
// first, then by Offset within the same document.
func (p *Position) IsBefore(other Position) bool {
	if p.DocumentID < other.DocumentID {
		return true
	}
	return p.DocumentID == other.DocumentID && p.Offset < other.Offset
}

// IsAfter reports whether p sorts strictly after other.
func (p *Position) IsAfter(other Position) bool {
	if p.DocumentID > other.DocumentID {
		return true
	}
	return p.DocumentID == other.DocumentID && p.Offset > other.Offset
}

// Equals reports whether p and other identify the same occurrence.
func (p *Position) Equals(other Position) bool {
	return p.DocumentID == other.DocumentID && p.Offset == other.Offset
}

// Node is one skip list entry: its Position and a tower of forward
// pointers, one per level the node was promoted to.
type Node struct {
	Key   Position
	Tower [MaxHeight]*Node
}

// SkipList is an ordered set of Positions supporting Insert and the
// Find/FindLessThan/FindGreaterThan lookups the coordinate index needs.
type SkipList struct {
	Head   *Node
	Height int
}

// NewSkipList returns an empty skip list.
func NewSkipList() *SkipList {
	return &SkipList{Head: &Node{}, Height: 1}
}

// Search walks from the highest populated level down to level 0, returning
// the node with an exact key match (nil if none) and the journey: at each
// level, the last node visited before overshooting key. Insert and the Find
// variants are built entirely on top of this journey.
func (sl *SkipList) Search(key Position) (*Node, [MaxHeight]*Node) {
	var journey [MaxHeight]*Node
	current := sl.Head

	for level := sl.Height - 1; level >= 0; level-- {
		current = sl.traverseLevel(current, key, level)
		journey[level] = current
	}

	next := current.Tower[0]
	if next != nil && next.Key.Equals(key) {
		return next, journey
	}
	return nil, journey
}

// traverseLevel advances from start along level as far as possible while
// staying strictly before target, returning the last node reached.
func (sl *SkipList) traverseLevel(start *Node, target Position, level int) *Node {
	current := start
	next := current.Tower[level]
	for next != nil && sl.shouldAdvance(next.Key, target) {
		current = next
		next = current.Tower[level]
	}
	return current
}

func (sl *SkipList) shouldAdvance(nodeKey, targetKey Position) bool {
	if nodeKey.Equals(targetKey) {
		return false
	}
	return nodeKey.IsBefore(targetKey)
}

// Find reports whether key exists, returning it and ErrKeyNotFound if not.
func (sl *SkipList) Find(key Position) (Position, error) {
	found, _ := sl.Search(key)
	if found == nil {
		return EOFDocument, ErrKeyNotFound
	}
	return found.Key, nil
}

// FindLessThan returns the largest stored position strictly less than key.
func (sl *SkipList) FindLessThan(key Position) (Position, error) {
	_, journey := sl.Search(key)

	predecessor := journey[0]
	if predecessor == nil || predecessor == sl.Head {
		return BOFDocument, ErrNoElementFound
	}
	return predecessor.Key, nil
}

// FindGreaterThan returns the smallest stored position strictly greater
// than key, whether or not key itself is present.
func (sl *SkipList) FindGreaterThan(key Position) (Position, error) {
	found, journey := sl.Search(key)

	if found != nil {
		if found.Tower[0] != nil {
			return found.Tower[0].Key, nil
		}
		return EOFDocument, ErrNoElementFound
	}

	predecessor := journey[0]
	if predecessor != nil && predecessor.Tower[0] != nil {
		return predecessor.Tower[0].Key, nil
	}
	return EOFDocument, ErrNoElementFound
}

// Insert adds key to the skip list, replacing the stored key if one already
// compares equal (DocumentID and Offset match exactly).
func (sl *SkipList) Insert(key Position) {
	found, journey := sl.Search(key)
	if found != nil {
		found.Key = key
		return
	}

	height := sl.randomHeight()
	newNode := &Node{Key: key}
	sl.linkNode(newNode, journey, height)

	if height > sl.Height {
		sl.Height = height
	}
}

// linkNode splices node into the list at every level below height, using
// journey's per-level predecessors (falling back to Head where a level has
// none).
func (sl *SkipList) linkNode(node *Node, journey [MaxHeight]*Node, height int) {
	for level := 0; level < height; level++ {
		predecessor := journey[level]
		if predecessor == nil {
			predecessor = sl.Head
		}
		node.Tower[level] = predecessor.Tower[level]
		predecessor.Tower[level] = node
	}
}

// Last returns the largest stored position, or EOFDocument if the list is
// empty.
func (sl *SkipList) Last() Position {
	if sl.Head.Tower[0] == nil {
		return EOFDocument
	}
	current := sl.Head
	for next := current.Tower[0]; next != nil; next = next.Tower[0] {
		current = next
	}
	return current.Key
}

// randomHeight draws a tower height from a geometric distribution (50%
// chance to stop at each level), the standard coin-flip construction that
// keeps a skip list's expected search cost at O(log n).
func (sl *SkipList) randomHeight() int {
	height := 1
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for rng.Float64() < 0.5 && height < MaxHeight {
		height++
	}
	return height
}
