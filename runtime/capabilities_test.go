// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilitySendable(t *testing.T) {
	require.True(t, Iso.Sendable())
	require.True(t, Val.Sendable())
	require.True(t, Tag.Sendable())
	require.False(t, Ref.Sendable())
}

func TestCapabilityMutableUnique(t *testing.T) {
	require.True(t, Iso.Mutable())
	require.True(t, Iso.Unique())
	require.False(t, Val.Mutable())
	require.False(t, Val.Unique())
	require.True(t, Ref.Mutable())
	require.False(t, Ref.Unique())
}

func TestTrackedIsoToVal(t *testing.T) {
	tracked := NewTracked(42, Iso)
	val, err := tracked.ToVal()
	require.NoError(t, err)
	require.Equal(t, Val, val.Cap())
	require.Equal(t, 42, val.Get())
}

func TestTrackedToValRejectsNonIso(t *testing.T) {
	tracked := NewTracked(42, Val)
	_, err := tracked.ToVal()
	require.Error(t, err)
}

func TestShareRefusesIso(t *testing.T) {
	tracked := NewTracked("hello", Iso)
	_, ok := Share(tracked, func(s string) string { return s })
	require.False(t, ok)
}

func TestShareClonesVal(t *testing.T) {
	tracked := NewTracked("hello", Val)
	shared, ok := Share(tracked, func(s string) string { return s })
	require.True(t, ok)
	require.Equal(t, tracked.Get(), shared.Get())
	require.Equal(t, Val, shared.Cap())
}
