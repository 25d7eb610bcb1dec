// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package set

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetBasics(t *testing.T) {
	s := Of(1, 2, 3)
	require.Equal(t, 3, s.Len())
	require.True(t, s.Contains(2))
	require.False(t, s.Contains(4))

	s.Add(4)
	require.Equal(t, 4, s.Len())

	s.Remove(1)
	require.False(t, s.Contains(1))
}

func TestSetOverlaps(t *testing.T) {
	a := Of("x", "y")
	b := Of("y", "z")
	require.True(t, a.Overlaps(b))

	c := Of("q")
	require.False(t, a.Overlaps(c))
}
