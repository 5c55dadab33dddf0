package varenv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenizeSimplePath(t *testing.T) {
	tokens := Tokenize("$x")
	assert.Equal(t, []Token{{Kind: TokenRoot, Value: "$x"}}, tokens)
}

func TestTokenizePropertyAccess(t *testing.T) {
	tokens := Tokenize("$x->prop")
	assert.Equal(t, []Token{
		{Kind: TokenRoot, Value: "$x"},
		{Kind: TokenPropertyOp, Value: "->"},
		{Kind: TokenName, Value: "prop"},
	}, tokens)
}

func TestTokenizeBracketAccess(t *testing.T) {
	tokens := Tokenize("$x['a']")
	assert.Equal(t, []Token{
		{Kind: TokenRoot, Value: "$x"},
		{Kind: TokenBracket, Value: "'a'"},
	}, tokens)
}

func TestTokenizeStaticAccess(t *testing.T) {
	tokens := Tokenize("Foo::$bar")
	assert.Equal(t, []Token{
		{Kind: TokenRoot, Value: "Foo"},
		{Kind: TokenStaticOp, Value: "::"},
		{Kind: TokenName, Value: "$bar"},
	}, tokens)
}

func TestTokenizeNestedBrackets(t *testing.T) {
	tokens := Tokenize("$x['a']['b']")
	assert.Len(t, tokens, 3)
	assert.Equal(t, "'a'", tokens[1].Value)
	assert.Equal(t, "'b'", tokens[2].Value)
}

func TestGetValueForKeyBracket(t *testing.T) {
	key, ok := GetValueForKey("$x['a']")
	assert.True(t, ok)
	assert.Equal(t, "a", key)
}

func TestGetValueForKeyProperty(t *testing.T) {
	key, ok := GetValueForKey("$x->prop")
	assert.True(t, ok)
	assert.Equal(t, "prop", key)
}

func TestGetValueForKeyRootHasNone(t *testing.T) {
	_, ok := GetValueForKey("$x")
	assert.False(t, ok)
}

func TestParentPath(t *testing.T) {
	parent, ok := ParentPath("$x['a']['b']")
	assert.True(t, ok)
	assert.Equal(t, "$x['a']", parent)

	parent, ok = ParentPath("$x->a")
	assert.True(t, ok)
	assert.Equal(t, "$x", parent)

	_, ok = ParentPath("$x")
	assert.False(t, ok)
}
