package topic

import (
	"errors"
	"testing"

	"github.com/rmacdonaldsmith/scopebus/pkg/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	p, err := Parse("orders.created:1-10")
	require.NoError(t, err)

	assert.Equal(t, "orders.created:1-10", p.Raw)
	assert.Equal(t, "orders.created", p.Path)
	assert.Equal(t, []string{"orders", "created"}, p.Segments)
	assert.Equal(t, "1-10", p.ScopeText)
	assert.Equal(t, scope.MustParse("1-10"), p.Scope)
	assert.True(t, p.Scoped)
	assert.False(t, p.HasWildcard())
}

func TestParse_DefaultScope(t *testing.T) {
	for _, raw := range []string{"orders", "orders:", "orders:*"} {
		p, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, "*", p.ScopeText, raw)
		assert.True(t, p.Scope.IsAll(), raw)
		assert.False(t, p.Scoped, raw)
	}
}

func TestParse_ValidPaths(t *testing.T) {
	for _, raw := range []string{"a", "*", "a.b.c", "a.*", "*.b", "*.*", "Orders_v2.item-added", "x1.y2"} {
		p, err := Parse(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, raw, p.Path)
	}

	assert.True(t, MustParse("orders.*").HasWildcard())
}

func TestParse_InvalidPattern(t *testing.T) {
	for _, raw := range []string{"", ":1", "1abc", "a..b", "a.", ".a", "a.b*", "a b", "**", "a.**", "-a", "_a"} {
		_, err := Parse(raw)
		if !errors.Is(err, ErrInvalidPattern) {
			t.Errorf("Parse(%q) expected ErrInvalidPattern, got %v", raw, err)
		}
	}
}

func TestParse_InvalidScope(t *testing.T) {
	for _, raw := range []string{"a:x", "a:1-", "a:1:2", "a:1,,2"} {
		_, err := Parse(raw)
		if !errors.Is(err, scope.ErrInvalidScope) {
			t.Errorf("Parse(%q) expected ErrInvalidScope, got %v", raw, err)
		}
		if errors.Is(err, ErrInvalidPattern) {
			t.Errorf("Parse(%q) should not report ErrInvalidPattern", raw)
		}
	}
}

func TestValidPath(t *testing.T) {
	assert.True(t, ValidPath("a.b"))
	assert.False(t, ValidPath("a.b:1"))
	assert.False(t, ValidPath(""))
}
