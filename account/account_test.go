// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package account

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

// Key pair of the first well-known development account used by common
// Ethereum tooling.
const (
	devPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	devAddress    = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

func TestNamedAccount_New_ProducesDistinctKeys(t *testing.T) {
	first, err := New("first")
	require.NoError(t, err)
	second, err := New("second")
	require.NoError(t, err)

	require.NotEqual(t, first.Address(), second.Address())
	require.Equal(t, "first", first.Name())
}

func TestNamedAccount_FromPrivateKey_DerivesKnownAddress(t *testing.T) {
	acc, err := FromPrivateKey("dev", devPrivateKey)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress(devAddress), acc.Address())
}

func TestNamedAccount_FromPrivateKey_AcceptsHexPrefix(t *testing.T) {
	plain, err := FromPrivateKey("a", devPrivateKey)
	require.NoError(t, err)
	prefixed, err := FromPrivateKey("b", "0x"+devPrivateKey)
	require.NoError(t, err)
	require.Equal(t, plain.Address(), prefixed.Address())
}

func TestNamedAccount_FromPrivateKey_RejectsInvalidKey(t *testing.T) {
	_, err := FromPrivateKey("broken", "not-a-key")
	require.ErrorContains(t, err, "invalid private key")
}

func TestNamedAccount_NameIsTrimmed(t *testing.T) {
	acc, err := FromPrivateKey("  padded name  ", devPrivateKey)
	require.NoError(t, err)
	require.Equal(t, "padded name", acc.Name())
}

func TestNamedAccount_EmptyNamesAreRejected(t *testing.T) {
	for _, name := range []string{"", "   ", "\t\n"} {
		_, err := FromPrivateKey(name, devPrivateKey)
		require.ErrorIs(t, err, ErrEmptyName)
	}
}

func TestNamedAccount_SameKeyUnderDifferentNames(t *testing.T) {
	alice, err := FromPrivateKey("alice", devPrivateKey)
	require.NoError(t, err)
	bob, err := FromPrivateKey("bob", devPrivateKey)
	require.NoError(t, err)

	require.Equal(t, alice.Address(), bob.Address())
	require.NotEqual(t, alice.Name(), bob.Name())
}

func TestNamedAccount_String_ContainsNameAndAddress(t *testing.T) {
	acc, err := FromPrivateKey("dev", devPrivateKey)
	require.NoError(t, err)
	require.Equal(t, "dev ("+devAddress+")", acc.String())
}

func TestNamedAccount_SignTx_SignaturesRecoverToAccountAddress(t *testing.T) {
	acc, err := FromPrivateKey("dev", devPrivateKey)
	require.NoError(t, err)

	chainID := big.NewInt(1337)
	to := common.HexToAddress("0x0000000000000000000000000000000060138453")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     7,
		GasTipCap: big.NewInt(1),
		GasFeeCap: big.NewInt(100),
		Gas:       21000,
		To:        &to,
		Value:     new(big.Int),
	})

	signed, err := acc.SignTx(tx, chainID)
	require.NoError(t, err)

	sender, err := types.Sender(types.LatestSignerForChainID(chainID), signed)
	require.NoError(t, err)
	require.Equal(t, acc.Address(), sender)
}

func TestNamedAccount_KeystoreRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("keystore encryption uses production scrypt parameters")
	}

	original, err := FromPrivateKey("vault", devPrivateKey)
	require.NoError(t, err)

	keyjson, err := original.ExportKeystore("correct horse battery staple")
	require.NoError(t, err)

	restored, err := FromKeystore("restored", keyjson, "correct horse battery staple")
	require.NoError(t, err)
	require.Equal(t, original.Address(), restored.Address())
	require.Equal(t, "restored", restored.Name())
}

func TestNamedAccount_FromKeystore_RejectsWrongPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("keystore encryption uses production scrypt parameters")
	}

	original, err := FromPrivateKey("vault", devPrivateKey)
	require.NoError(t, err)

	keyjson, err := original.ExportKeystore("right")
	require.NoError(t, err)

	_, err = FromKeystore("restored", keyjson, "wrong")
	require.ErrorContains(t, err, "failed to decrypt keystore")
}
