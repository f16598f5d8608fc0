// Package symbols interns identifier text into identity-unique handles,
// shared across the AST and every environment frame's binding keys.
//
// Grounded on pkg/ident's tested contract (Normalize/Equal/Map give
// case-folded, identity-stable lookup keys for DWScript identifiers).
// ECMAScript identifiers are case-sensitive, so normalization here is
// NFC text normalization per ECMA-262 §12.6 ("source text is assumed
// to be a sequence of Unicode code points ... interpreted as UTF-16")
// rather than case folding — the one substantive change from the
// teacher's case-insensitive Normalize.
package symbols

import (
	"sync"

	"golang.org/x/text/unicode/norm"
)

// Symbol is an identity-unique handle for an interned identifier. Two
// Symbols compare equal (by value) if and only if they name the same
// NFC-normalized identifier text.
type Symbol uint32

// Interner normalizes and interns identifier strings into Symbols. It is
// safe for concurrent reads once populated; writes (new identifiers seen
// for the first time) take a lock, matching spec.md §5's "interned
// symbol and property-name tables are shared and must be safe for
// concurrent read (but writes occur only during program start)."
type Interner struct {
	mu     sync.RWMutex
	byName map[string]Symbol
	names  []string
}

// NewInterner creates an empty interner.
func NewInterner() *Interner {
	return &Interner{byName: make(map[string]Symbol)}
}

// Intern normalizes name to NFC and returns its Symbol, creating one if
// this is the first time the name has been seen.
func (in *Interner) Intern(name string) Symbol {
	normalized := norm.NFC.String(name)

	in.mu.RLock()
	if sym, ok := in.byName[normalized]; ok {
		in.mu.RUnlock()
		return sym
	}
	in.mu.RUnlock()

	in.mu.Lock()
	defer in.mu.Unlock()
	if sym, ok := in.byName[normalized]; ok {
		return sym
	}
	sym := Symbol(len(in.names))
	in.names = append(in.names, normalized)
	in.byName[normalized] = sym
	return sym
}

// Name returns the normalized text a Symbol was interned from.
func (in *Interner) Name(sym Symbol) string {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(sym) >= len(in.names) {
		return ""
	}
	return in.names[sym]
}

// Lookup returns the Symbol for name without interning it, reporting
// whether it has already been seen.
func (in *Interner) Lookup(name string) (Symbol, bool) {
	normalized := norm.NFC.String(name)
	in.mu.RLock()
	defer in.mu.RUnlock()
	sym, ok := in.byName[normalized]
	return sym, ok
}

// Well-known symbols interned once into every Interner so reserved
// bindings (this/super/new.target/arguments) compare by identity rather
// than by repeated string interning (spec.md §4.4: "this/super/new.target
// are reserved symbols").
var (
	wellKnownOnce sync.Once
	wellKnown     *Interner
)

// Shared returns a process-wide interner pre-populated with the reserved
// binding names. Most callers should use a per-realm Interner instead;
// Shared exists for tests and small embedding scenarios that don't need
// realm isolation.
func Shared() *Interner {
	wellKnownOnce.Do(func() {
		wellKnown = NewInterner()
		for _, name := range []string{"this", "super", "new.target", "arguments"} {
			wellKnown.Intern(name)
		}
	})
	return wellKnown
}
