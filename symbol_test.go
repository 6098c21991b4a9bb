package casso

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSymbolKindAndOrdering(t *testing.T) {
	ext := newSymbol(1, External)
	require.True(t, ext.IsValid())
	require.EqualValues(t, External, ext.Kind())
	require.True(t, ext.external())
	require.False(t, ext.restricted())

	slack := newSymbol(1, Slack)
	require.EqualValues(t, Slack, slack.Kind())
	require.True(t, slack.restricted())

	dummy := newSymbol(2, Dummy)
	require.True(t, dummy.dummy())
	require.False(t, dummy.restricted())

	require.False(t, InvalidSymbol.IsValid())
	require.EqualValues(t, Invalid, InvalidSymbol.Kind())
}

func TestSymbolOrdersByIDThenKind(t *testing.T) {
	a := newSymbol(1, Dummy)
	b := newSymbol(2, External)

	// id dominates kind in ordering, regardless of how the kinds compare.
	require.Less(t, a, b)

	c := newSymbol(5, External)
	d := newSymbol(5, Dummy)
	require.Less(t, c, d)
}

func TestSymbolKindString(t *testing.T) {
	require.Equal(t, "External", External.String())
	require.Equal(t, "Dummy", Dummy.String())
	require.Equal(t, "Unknown", SymbolKind(99).String())
}
