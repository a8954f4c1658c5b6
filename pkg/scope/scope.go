package scope

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Unbounded is the textual form of an open endpoint.
const Unbounded = "*"

var (
	// ErrInvalidScope is returned when a scope string does not follow the scope grammar
	ErrInvalidScope = errors.New("invalid scope")

	scopePattern = regexp.MustCompile(`^(\*|-?\d+)(-(\*|-?\d+))?(,(\*|-?\d+)(-(\*|-?\d+))?)*$`)
	itemPattern  = regexp.MustCompile(`^(\*|-?\d+)(?:-(\*|-?\d+))?$`)
)

// All is the scope accepting every value.
var All = Set{{Min: math.Inf(-1), Max: math.Inf(1)}}

// Interval is a closed range [Min, Max]. Either end may be infinite.
type Interval struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the interval.
func (i Interval) Contains(v float64) bool {
	return i.Min <= v && v <= i.Max
}

// Encloses reports whether other lies entirely inside the interval.
func (i Interval) Encloses(other Interval) bool {
	return i.Min <= other.Min && i.Max >= other.Max
}

// String returns the interval in scope notation.
func (i Interval) String() string {
	lo, hi := formatBound(i.Min), formatBound(i.Max)
	switch {
	case math.IsInf(i.Min, -1) && math.IsInf(i.Max, 1):
		return Unbounded
	case i.Min == i.Max:
		return lo
	default:
		return lo + "-" + hi
	}
}

func formatBound(v float64) string {
	if math.IsInf(v, 0) {
		return Unbounded
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Set is a normalized scope: intervals sorted by Min, pairwise disjoint,
// with no interval starting at or before the end of its predecessor.
// Only Parse and MustParse build normalized sets.
type Set []Interval

// Parse compiles a scope string into a normalized Set.
// An empty string is the same as "*".
func Parse(text string) (Set, error) {
	if text == "" {
		text = Unbounded
	}
	if !scopePattern.MatchString(text) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, text)
	}

	items := strings.Split(text, ",")
	set := make(Set, 0, len(items))
	for _, item := range items {
		interval, err := parseItem(item)
		if err != nil {
			return nil, err
		}
		set = append(set, interval)
	}

	return normalize(set), nil
}

// MustParse is like Parse but panics if the scope is invalid.
func MustParse(text string) Set {
	set, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return set
}

func parseItem(item string) (Interval, error) {
	m := itemPattern.FindStringSubmatch(item)
	if m == nil {
		return Interval{}, fmt.Errorf("%w: range item %q", ErrInvalidScope, item)
	}

	var lo, hi float64
	if m[1] == Unbounded {
		lo = math.Inf(-1)
	} else {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: range item %q: %v", ErrInvalidScope, item, err)
		}
		lo = v
	}

	switch {
	case m[2] == Unbounded:
		hi = math.Inf(1)
	case m[2] == "" && math.IsInf(lo, -1):
		// a lone "*" is open on both sides
		hi = math.Inf(1)
	case m[2] == "":
		hi = lo
	default:
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: range item %q: %v", ErrInvalidScope, item, err)
		}
		hi = v
	}

	if lo > hi {
		lo, hi = hi, lo
	}
	return Interval{Min: lo, Max: hi}, nil
}

// normalize sorts the intervals by Min and merges overlapping or touching ones in place.
func normalize(set Set) Set {
	sort.Slice(set, func(a, b int) bool {
		return set[a].Min < set[b].Min
	})

	merged := set[:0]
	for _, cur := range set {
		if n := len(merged); n > 0 && cur.Min <= merged[n-1].Max {
			if cur.Max > merged[n-1].Max {
				merged[n-1].Max = cur.Max
			}
			continue
		}
		merged = append(merged, cur)
	}
	return merged
}

// Covers reports whether every interval of emitted lies inside a single
// interval of s. Both sets must be normalized.
func (s Set) Covers(emitted Set) bool {
	left, right := 0, 0
	for right < len(emitted) {
		if left >= len(s) {
			return false
		}

		accepted, r := s[left], emitted[right]
		if accepted.Max < r.Min {
			left++
			continue
		}
		if !accepted.Encloses(r) {
			// partial overlap is a mismatch
			return false
		}
		// the same accepted interval may cover the next emitted one too
		right++
	}
	return true
}

// Contains reports whether v lies inside one of the set's intervals.
func (s Set) Contains(v float64) bool {
	for _, i := range s {
		if i.Contains(v) {
			return true
		}
		if i.Min > v {
			break
		}
	}
	return false
}

// IsAll reports whether the set accepts every value.
func (s Set) IsAll() bool {
	return len(s) == 1 && math.IsInf(s[0].Min, -1) && math.IsInf(s[0].Max, 1)
}

// Equal reports whether both sets hold the same intervals.
func (s Set) Equal(other Set) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// String returns the canonical scope notation of the set.
func (s Set) String() string {
	parts := make([]string, len(s))
	for i, interval := range s {
		parts[i] = interval.String()
	}
	return strings.Join(parts, ",")
}
