// Package credentials decides which channels may publish in the current run
// and hands their secrets to publishers as explicit values.
package credentials

import (
	"os"
	"sort"
)

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Channel is anything that names the environment variables it needs.
type Channel interface {
	RequiredEnv() []string
}

// Set maps an environment variable name to its value.
// Values are never logged; use Names for diagnostics.
type Set map[string]string

// Get returns the value of key, or "" when absent.
func (s Set) Get(key string) string {
	return s[key]
}

// Names returns the variable names in the set, sorted.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Gate evaluates channel eligibility against the process environment.
// It does not cache: every call reads the environment again.
type Gate struct {
	lookup LookupFunc
}

// NewGate creates a Gate. A nil lookup reads the process environment.
func NewGate(lookup LookupFunc) *Gate {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Gate{lookup: lookup}
}

// IsEligible reports whether every variable ch requires is set and
// non-empty. A channel requiring nothing is always eligible.
func (g *Gate) IsEligible(ch Channel) bool {
	_, ok := g.Resolve(ch.RequiredEnv()...)
	return ok
}

// Resolve returns the values of vars. ok is false if any of them is unset
// or empty, in which case the returned set is nil.
func (g *Gate) Resolve(vars ...string) (Set, bool) {
	set := make(Set, len(vars))
	for _, v := range vars {
		val, ok := g.lookup(v)
		if !ok || val == "" {
			return nil, false
		}
		set[v] = val
	}
	return set, true
}

// Missing returns the variables of ch that are unset or empty, in the order
// ch declares them.
func (g *Gate) Missing(ch Channel) []string {
	var missing []string
	for _, v := range ch.RequiredEnv() {
		if val, ok := g.lookup(v); !ok || val == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

// MapLookup returns a LookupFunc backed by m.
func MapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
