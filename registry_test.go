package casso

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarRegistryRegisterAndLookup(t *testing.T) {
	reg := newVarRegistry()
	v := NewVariable()
	sym := newSymbol(1, External)

	e := reg.register(v, sym)
	require.True(t, math.IsNaN(e.lastValue))

	got, ok := reg.entry(v)
	require.True(t, ok)
	require.Equal(t, sym, got.symbol)

	backVar, ok := reg.variableFor(sym)
	require.True(t, ok)
	require.Equal(t, v, backVar)
}

func TestVarRegistryRefcounting(t *testing.T) {
	reg := newVarRegistry()
	v := NewVariable()
	sym := newSymbol(1, External)

	e := reg.register(v, sym)
	e.refcount = 1

	reg.incref(v)
	require.EqualValues(t, 2, e.refcount)

	require.False(t, reg.decref(v))
	require.EqualValues(t, 1, e.refcount)

	require.True(t, reg.decref(v))
	_, ok := reg.entry(v)
	require.False(t, ok)
	_, ok = reg.variableFor(sym)
	require.False(t, ok)
}

func TestVarRegistryReset(t *testing.T) {
	reg := newVarRegistry()
	v := NewVariable()
	reg.register(v, newSymbol(1, External))

	reg.reset()

	_, ok := reg.entry(v)
	require.False(t, ok)
}

func TestVarRegistryDecrefUnknownIsNoop(t *testing.T) {
	reg := newVarRegistry()
	require.False(t, reg.decref(NewVariable()))
}
