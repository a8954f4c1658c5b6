// Package topic parses the "<path>[:<scope>]" patterns accepted by every
// emitter operation.
//
// A path is one or more dot separated segments. A segment is either the
// wildcard "*" or a letter followed by letters, digits, '_' or '-':
//
//	"orders"            single segment
//	"orders.created"    literal path
//	"orders.*"          wildcard in the last segment
//	"*.urgent:1-10"     wildcard path with a scope
//
// The scope part is compiled with package scope; when it is omitted the
// pattern accepts (or carries) every value.
package topic

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rmacdonaldsmith/scopebus/pkg/scope"
)

const (
	// Wildcard matches exactly one segment.
	Wildcard = "*"

	// Separator joins path segments.
	Separator = "."

	// ScopeSeparator splits the path from the scope.
	ScopeSeparator = ":"
)

// ErrInvalidPattern is returned when a pattern is empty or its path does not follow the path grammar
var ErrInvalidPattern = errors.New("invalid pattern")

var segmentPattern = regexp.MustCompile(`^(\*|[A-Za-z][\w-]*)$`)

// Pattern is a parsed "<path>[:<scope>]" string.
type Pattern struct {
	// Raw is the pattern exactly as given
	Raw string

	// Path is the dotted path part
	Path string

	// Segments is Path split on Separator
	Segments []string

	// ScopeText is the scope part, "*" when omitted
	ScopeText string

	// Scope is the compiled scope
	Scope scope.Set

	// Scoped reports whether the pattern carried a scope other than "*"
	Scoped bool
}

// Parse validates raw and compiles its scope.
// It returns ErrInvalidPattern for a bad path and scope.ErrInvalidScope for a bad scope.
func Parse(raw string) (Pattern, error) {
	if raw == "" {
		return Pattern{}, fmt.Errorf("%w: pattern must not be empty", ErrInvalidPattern)
	}

	path, scopeText, scoped := strings.Cut(raw, ScopeSeparator)
	segments, ok := splitPath(path)
	if !ok {
		return Pattern{}, fmt.Errorf("%w: path %q in %q", ErrInvalidPattern, path, raw)
	}

	if !scoped || scopeText == "" {
		scopeText = scope.Unbounded
	}
	set, err := scope.Parse(scopeText)
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: %w", raw, err)
	}

	return Pattern{
		Raw:       raw,
		Path:      path,
		Segments:  segments,
		ScopeText: scopeText,
		Scope:     set,
		Scoped:    scoped && scopeText != scope.Unbounded,
	}, nil
}

// MustParse is like Parse but panics if raw is invalid.
func MustParse(raw string) Pattern {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidPath reports whether path follows the path grammar.
func ValidPath(path string) bool {
	_, ok := splitPath(path)
	return ok
}

func splitPath(path string) ([]string, bool) {
	if path == "" {
		return nil, false
	}
	segments := strings.Split(path, Separator)
	for _, seg := range segments {
		if !segmentPattern.MatchString(seg) {
			return nil, false
		}
	}
	return segments, true
}

// HasWildcard reports whether any segment is the wildcard.
func (p Pattern) HasWildcard() bool {
	for _, seg := range p.Segments {
		if seg == Wildcard {
			return true
		}
	}
	return false
}

// String returns the raw pattern.
func (p Pattern) String() string {
	return p.Raw
}
