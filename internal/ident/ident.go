// Package ident provides the process-lifetime identifier interner and the
// dense Name minter that every later pipeline stage (topology, resolve,
// check) builds its handles on top of. Every Ident and Name is only
// meaningful relative to the Names instance that minted it; callers must
// never mix handles from two different instances.
package ident

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Ident is an interned handle to a source lexeme. Two Idents compare equal
// iff the underlying text is identical.
type Ident uint32

// Label is an Ident used to tag a record or variant field. Labels are
// compared by interned-handle equality, i.e. structurally on the source
// text, case-sensitive and NFC-preserved as received from the lexer.
type Label = Ident

// SourceId is a small integer handle standing in for a source file path, so
// that Span and the rest of the pipeline stay cheap to copy and compare.
// Names.SourceName resolves it back to a display string for diagnostics.
type SourceId uint32

// Name is a dense integer id denoting one globally unique binding site. It
// is minted exactly once, by Names.Name, and never reused.
type Name uint32

// ScopeKind discriminates the three shapes a ScopeName can take.
type ScopeKind uint8

const (
	// ScopeTopLevel roots a scope at the top of one source file.
	ScopeTopLevel ScopeKind = iota
	// ScopeItem roots a scope at a particular named item (its body scope).
	ScopeItem
	// ScopeAnonymous roots a scope with no name of its own, such as a
	// lambda or a let body; it is only reachable via Qualified.Parent
	// chains and disambiguated by a counter.
	ScopeAnonymous
)

// ScopeName is the tagged variant {TopLevel(SourceId), Item(Name),
// Anonymous(n)} describing where a Name's enclosing scope is rooted.
type ScopeName struct {
	Kind   ScopeKind
	Source SourceId // valid when Kind == ScopeTopLevel
	Item   Name     // valid when Kind == ScopeItem
	Anon   uint32   // valid when Kind == ScopeAnonymous
}

func TopLevel(src SourceId) ScopeName { return ScopeName{Kind: ScopeTopLevel, Source: src} }
func ItemScope(n Name) ScopeName      { return ScopeName{Kind: ScopeItem, Item: n} }
func Anonymous(n uint32) ScopeName    { return ScopeName{Kind: ScopeAnonymous, Anon: n} }

func (s ScopeName) String() string {
	switch s.Kind {
	case ScopeTopLevel:
		return fmt.Sprintf("toplevel(%d)", s.Source)
	case ScopeItem:
		return fmt.Sprintf("item(%d)", s.Item)
	default:
		return fmt.Sprintf("anon(%d)", s.Anon)
	}
}

// Qualified is the fully qualified form of a Name: the scope it was minted
// in plus the Ident it was minted for.
type Qualified struct {
	Parent ScopeName
	Ident  Ident
}

// Names is the process-wide interner and Name minter. Interning is
// dedup'd under a mutex (the common case: repeated lexeme lookups); Name
// minting never needs to dedup, so it only needs an atomic counter plus a
// concurrent reverse map, letting multiple sources mint names in parallel
// without contending on interning.
type Names struct {
	mu      sync.Mutex
	byText  map[string]Ident
	byIdent []string

	counter atomic.Uint64
	byName  sync.Map // Name -> Qualified

	srcMu   sync.Mutex
	sources []string
}

// NewNames constructs an empty interner.
func NewNames() *Names {
	return &Names{byText: make(map[string]Ident)}
}

// Intern returns the Ident for s, minting a new one if s has not been seen
// by this instance before.
func (n *Names) Intern(s string) Ident {
	n.mu.Lock()
	defer n.mu.Unlock()

	if id, ok := n.byText[s]; ok {
		return id
	}

	id := Ident(len(n.byIdent))
	n.byIdent = append(n.byIdent, s)
	n.byText[s] = id
	return id
}

// MakeLabel interns s as a field Label; field labels and value/type
// identifiers share one interner, since a Label is only an Ident used in a
// different position.
func (n *Names) MakeLabel(s string) Label { return n.Intern(s) }

// GetIdent resolves an Ident back to its source text.
func (n *Names) GetIdent(id Ident) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.byIdent[id]
}

// Name mints a fresh Name bound in parent's scope for the given Ident and
// records the Qualified triple. This is the only operation that mints
// Names; it is safe to call concurrently from multiple goroutines compiling
// distinct sources.
func (n *Names) Name(parent ScopeName, id Ident) Name {
	next := Name(n.counter.Add(1))
	n.byName.Store(next, Qualified{Parent: parent, Ident: id})
	return next
}

// GetName resolves a Name back to the Qualified triple it was minted with.
func (n *Names) GetName(name Name) Qualified {
	v, ok := n.byName.Load(name)
	if !ok {
		panic(fmt.Sprintf("ident: unknown name %d", name))
	}
	return v.(Qualified)
}

// AddSource registers a display name for a new source file and returns its
// SourceId.
func (n *Names) AddSource(display string) SourceId {
	n.srcMu.Lock()
	defer n.srcMu.Unlock()
	id := SourceId(len(n.sources))
	n.sources = append(n.sources, display)
	return id
}

// SourceName resolves a SourceId back to its display name.
func (n *Names) SourceName(id SourceId) string {
	n.srcMu.Lock()
	defer n.srcMu.Unlock()
	return n.sources[id]
}

// NameText is a convenience combining GetName and GetIdent: the source
// spelling a Name was minted from.
func (n *Names) NameText(name Name) string {
	return n.GetIdent(n.GetName(name).Ident)
}
