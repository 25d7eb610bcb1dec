// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	older := &Application{Name: "leanr", Major: 0, Minor: 1, Patch: 0}
	newer := &Application{Name: "leanr", Major: 0, Minor: 2, Patch: 0}

	require.Equal(t, -1, older.Compare(newer))
	require.Equal(t, 1, newer.Compare(older))
	require.Equal(t, 0, older.Compare(older))
}

func TestString(t *testing.T) {
	require.Equal(t, "leanr/0.1.0", Current.String())
}
