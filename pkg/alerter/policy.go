package alerter

import (
	"sort"
	"strings"
)

// Policy decides which failure kinds produce an alert.
//
// A non-empty whitelist exempts its kinds. A non-empty blacklist limits alerts
// to its kinds. The whitelist is checked first and always wins.
type Policy struct {
	whitelist map[string]struct{}
	blacklist map[string]struct{}
}

// NewPolicy builds a Policy that owns its own sets. Blank names are ignored.
func NewPolicy(whitelist, blacklist []string) Policy {
	return Policy{whitelist: toSet(whitelist), blacklist: toSet(blacklist)}
}

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// Allow reports whether a failure of the given kind should be alerted.
func (p Policy) Allow(kind string) bool {
	return p.AllowKinds([]string{kind})
}

// AllowKinds is Allow for a failure that carries several kinds (an error
// chain). A kind anywhere in the chain counts as a member.
func (p Policy) AllowKinds(kinds []string) bool {
	if len(p.whitelist) > 0 && anyIn(kinds, p.whitelist) {
		return false
	}
	return len(p.blacklist) == 0 || anyIn(kinds, p.blacklist)
}

func anyIn(kinds []string, set map[string]struct{}) bool {
	for _, k := range kinds {
		if _, ok := set[k]; ok {
			return true
		}
	}
	return false
}

// Whitelist returns the exempt kinds, sorted.
func (p Policy) Whitelist() []string { return sortedKeys(p.whitelist) }

// Blacklist returns the alert-only kinds, sorted.
func (p Policy) Blacklist() []string { return sortedKeys(p.blacklist) }

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
