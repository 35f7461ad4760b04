package main

import (
	"bytes"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexZinkM/nano-wallet/internal/crypto"
	"github.com/AlexZinkM/nano-wallet/internal/store"
	"github.com/AlexZinkM/nano-wallet/internal/vault"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDeriveCommand(t *testing.T) {
	out, err := run(t, "derive", "3E8ABFC17DC5DE84B18935BB40FEB67FB409724B902E028736120AED3092DAEF", "-n", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0\txrb_38ncappfy6i6mmz5kx93e6rh88tnx9ne68g644u88u9wjqwr3ua5jdrhqgxm", lines[0])
	assert.Equal(t, "1\txrb_36p4xfxn365i9h7oxta6tdmu53zndrm45r3x9ag9naa3mxnnpn3p6tjfqzqm", lines[1])

	_, err = run(t, "derive", "not-hex")
	assert.Error(t, err)
}

func TestAddressCommand(t *testing.T) {
	out, err := run(t, "address", "nano_38ncappfy6i6mmz5kx93e6rh88tnx9ne68g644u88u9wjqwr3ua5jdrhqgxm")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "xrb_38ncappfy6i6mmz5kx93e6rh88tnx9ne68g644u88u9wjqwr3ua5jdrhqgxm\n"))

	_, err = run(t, "address", "xrb_1111")
	assert.Error(t, err)
}

func TestWorkCommand(t *testing.T) {
	out, err := run(t, "work", strings.Repeat("AB", 32), "--threshold", "fff0000000000000", "--threads", "2")
	require.NoError(t, err)
	work, _, ok := strings.Cut(strings.TrimSpace(out), "\t")
	require.True(t, ok)
	assert.Len(t, work, 16)
}

func TestBackupRestoreFile(t *testing.T) {
	ctx := t.Context()
	seed, err := hex.DecodeString("3E8ABFC17DC5DE84B18935BB40FEB67FB409724B902E028736120AED3092DAEF")
	require.NoError(t, err)
	password := []byte("hunter2")
	backupPassword := []byte("offsite")

	source := vault.New(store.NewMemoryStore(), vault.WithKDF(crypto.KDFScrypt))
	require.NoError(t, source.CreateSeed(ctx, seed, password))

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, writeBackup(ctx, source, password, backupPassword, path))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(backupFilePerm), info.Mode().Perm())
	assert.Error(t, writeBackup(ctx, source, password, backupPassword, path), "existing backups are not overwritten")

	target := vault.New(store.NewMemoryStore(), vault.WithKDF(crypto.KDFScrypt))
	_, err = restoreBackup(ctx, target, path, []byte("guess"), password)
	assert.ErrorIs(t, err, vault.ErrBackupPassword)

	address, err := restoreBackup(ctx, target, path, backupPassword, []byte("new password"))
	require.NoError(t, err)
	assert.Equal(t, "xrb_38ncappfy6i6mmz5kx93e6rh88tnx9ne68g644u88u9wjqwr3ua5jdrhqgxm", address)

	restored, err := target.Unlock(ctx, []byte("new password"))
	require.NoError(t, err)
	assert.Equal(t, seed, restored)

	_, err = restoreBackup(ctx, target, path, backupPassword, password)
	assert.ErrorIs(t, err, vault.ErrSeedExists)
}
