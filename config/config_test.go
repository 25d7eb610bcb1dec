// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leanr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime:\n  worker_threads: 4\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 4, cfg.Runtime.WorkerThreads)
	require.Equal(t, Default().Runtime.Mailbox, cfg.Runtime.Mailbox)
	require.Equal(t, Default().Kernel, cfg.Kernel)
}

func TestLoadRejectsInvalidWatermarks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leanr.yaml")
	require.NoError(t, os.WriteFile(path, []byte("runtime:\n  mailbox:\n    capacity: 10\n    high_water: 12\n    low_water: 2\n"), 0o644))

	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalidMailboxWatermarks)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidateRejectsZeroConversionFuel(t *testing.T) {
	cfg := Default()
	cfg.Kernel.ConversionFuel = 0
	require.ErrorIs(t, cfg.Validate(), ErrInvalidConversionFuel)
}
