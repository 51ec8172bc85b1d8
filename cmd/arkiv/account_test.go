// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/arkiv-network/arkiv-go/account"
)

// The standard development account and its mnemonic.
const (
	devPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
	devMnemonic   = "test test test test test test test test test test test junk"
)

func runAccountImport(t *testing.T, args ...string) error {
	t.Helper()
	app := &cli.App{Commands: []*cli.Command{&AccountImport}}
	return app.Run(append([]string{"arkiv", "account-import"}, args...))
}

func TestAccountImport_PrivateKeyRoundTripsThroughTheKeystore(t *testing.T) {
	if testing.Short() {
		t.Skip("keystore encryption is slow")
	}
	path := filepath.Join(t.TempDir(), "key.json")

	err := runAccountImport(t,
		"--private-key", devPrivateKey, "--password", "secret", "--name", "imported", path)
	require.NoError(t, err)

	keyjson, err := os.ReadFile(path)
	require.NoError(t, err)
	acc, err := account.FromKeystore("imported", keyjson, "secret")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(devAddress), acc.Address())
}

func TestAccountImport_DerivesTheKeyFromAMnemonic(t *testing.T) {
	if testing.Short() {
		t.Skip("keystore encryption is slow")
	}
	path := filepath.Join(t.TempDir(), "key.json")

	err := runAccountImport(t, "--mnemonic", devMnemonic, "--password", "secret", path)
	require.NoError(t, err)

	keyjson, err := os.ReadFile(path)
	require.NoError(t, err)
	acc, err := account.FromKeystore("dev", keyjson, "secret")
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(devAddress), acc.Address())
}

func TestAccountImport_RequiresAKeySource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")

	err := runAccountImport(t, "--password", "secret", path)
	require.ErrorContains(t, err, "no key to import")
	require.NoFileExists(t, path)
}

func TestAccountImport_RefusesToOverwriteExistingFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte("occupied"), 0600))

	err := runAccountImport(t, "--private-key", devPrivateKey, "--password", "secret", path)
	require.ErrorContains(t, err, "already exists")
}
