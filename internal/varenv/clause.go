package varenv

import (
	"sort"
	"strings"

	"github.com/shivasurya/code-pathfinder/sast-engine/internal/assertion"
)

// Clause is one conjunct of the scope's path-condition CNF: a disjunction
// of (path -> possible assertions) pairs, e.g. "$x is int OR $y is null"
// (spec §4.3 "Clause / CNF simplification"). Possibilities map a path to
// the set of assertion strings that would satisfy this disjunct for that
// path; a clause is satisfied if any path's actual type matches any one of
// its listed possibilities.
type Clause struct {
	Possibilities map[string][]*assertion.Assertion
	// Generated marks a clause synthesized by the reconciler (e.g. from
	// negating a prior clause) rather than coming directly from a source
	// condition. SimplifyClauses does not consult it.
	Generated bool
	// Redundant marks a clause proven always-true given other active
	// clauses, so it can be dropped without changing the conjunction.
	Redundant bool
	// Impossible marks a clause whose possibilities can never be
	// satisfied (empty disjunction), signaling unreachable code.
	Impossible bool
}

// NewClause builds a single-path, single-assertion clause — the common
// case of one condition naming one variable.
func NewClause(path string, a *assertion.Assertion) *Clause {
	return &Clause{Possibilities: map[string][]*assertion.Assertion{path: {a}}}
}

// Negate returns the logical negation of a single-path clause (De
// Morgan's over one conjunct is just negating every possibility), used
// when entering the "else" arm of a condition. Multi-path clauses negate
// to a conjunction the caller must re-split into separate Clauses; this
// returns nil for that case and the caller falls back to conservative
// (no narrowing) handling, matching the reconciler's practice of
// skipping only the comparisons it cannot cheaply invert.
func (c *Clause) Negate() []*Clause {
	if len(c.Possibilities) != 1 {
		return nil
	}
	var out []*Clause
	for path, assertions := range c.Possibilities {
		for _, a := range assertions {
			neg := a.Negated()
			if neg == nil {
				return nil
			}
			out = append(out, NewClause(path, neg))
		}
	}
	return out
}

// Key returns a deterministic string identifying the clause's content,
// used to dedup clauses in ScopeContext.
func (c *Clause) Key() string {
	paths := make([]string, 0, len(c.Possibilities))
	for p := range c.Possibilities {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	var sb strings.Builder
	for _, p := range paths {
		sb.WriteString(p)
		sb.WriteByte(':')
		for _, a := range c.Possibilities[p] {
			sb.WriteString(a.String())
			sb.WriteByte('|')
		}
		sb.WriteByte(';')
	}
	return sb.String()
}

// SimplifyClauses removes duplicate clauses (same Key) from a conjunction,
// and marks any clause with an empty possibility set as impossible (spec
// §4.3 "CNF simplification"). It does not attempt full resolution/absorption
// and does not consult the Generated or Redundant flags.
func SimplifyClauses(clauses []*Clause) []*Clause {
	seen := make(map[string]struct{}, len(clauses))
	out := make([]*Clause, 0, len(clauses))
	for _, c := range clauses {
		for _, assertions := range c.Possibilities {
			if len(assertions) == 0 {
				c.Impossible = true
			}
		}
		key := c.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}
