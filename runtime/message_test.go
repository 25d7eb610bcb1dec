// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsoMessagePayload(t *testing.T) {
	msg := IsoMessage(42)
	require.Equal(t, 42, msg.Payload())
	require.Equal(t, Iso, msg.Cap())
	require.Greater(t, msg.Timestamp(), int64(0))
}

func TestValMessageShare(t *testing.T) {
	msg := ValMessage("hello")
	shared, ok := ShareMessage(msg, func(s string) string { return s })
	require.True(t, ok)
	require.Equal(t, msg.Payload(), shared.Payload())
}

func TestIsoMessageCannotShare(t *testing.T) {
	msg := IsoMessage("hello")
	_, ok := ShareMessage(msg, func(s string) string { return s })
	require.False(t, ok)
}
