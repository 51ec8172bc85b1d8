// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package account provides named signing accounts for the Arkiv client.
//
// A NamedAccount pairs an ECDSA private key with a human-readable name so
// that applications juggling several keys can refer to them by name instead
// of by address. Accounts can be created at random, imported from raw keys,
// derived from a mnemonic phrase, or loaded from encrypted keystore files.
package account

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

var (
	// ErrEmptyName is returned when an account is created with an empty or
	// whitespace-only name.
	ErrEmptyName = errors.New("account name must be a non-empty string")
)

// NamedAccount is a locally held signing key with an associated name.
type NamedAccount struct {
	name    string
	key     *ecdsa.PrivateKey
	address common.Address
}

// New creates an account with a fresh random private key.
func New(name string) (*NamedAccount, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate private key: %w", err)
	}
	return FromKey(name, key)
}

// FromKey wraps an existing private key in a named account.
func FromKey(name string, key *ecdsa.PrivateKey) (*NamedAccount, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, ErrEmptyName
	}
	return &NamedAccount{
		name:    trimmed,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// FromPrivateKey creates a named account from a hex-encoded private key,
// with or without a 0x prefix.
func FromPrivateKey(name, hexkey string) (*NamedAccount, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(hexkey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return FromKey(name, key)
}

// FromMnemonic derives a named account from a BIP-39 mnemonic phrase. An
// empty path selects DefaultDerivationPath, the standard Ethereum account
// path. The passphrase is the optional BIP-39 extension passphrase, not a
// wallet encryption password.
func FromMnemonic(name, mnemonic, passphrase, path string) (*NamedAccount, error) {
	if path == "" {
		path = DefaultDerivationPath
	}
	seed, err := seedFromMnemonic(mnemonic, passphrase)
	if err != nil {
		return nil, err
	}
	key, err := deriveKey(seed, path)
	if err != nil {
		return nil, err
	}
	return FromKey(name, key)
}

// FromKeystore decrypts a go-ethereum keystore JSON blob and wraps the
// contained key in a named account.
func FromKeystore(name string, keyjson []byte, password string) (*NamedAccount, error) {
	key, err := keystore.DecryptKey(keyjson, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
	}
	return FromKey(name, key.PrivateKey)
}

// Name returns the trimmed account name.
func (a *NamedAccount) Name() string {
	return a.name
}

// Address returns the account address.
func (a *NamedAccount) Address() common.Address {
	return a.address
}

// PrivateKey returns the account's private key.
func (a *NamedAccount) PrivateKey() *ecdsa.PrivateKey {
	return a.key
}

// SignTx signs a transaction with the account key for the given chain.
func (a *NamedAccount) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), a.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction with account %q: %w", a.name, err)
	}
	return signed, nil
}

// ExportKeystore encrypts the account key into go-ethereum keystore JSON
// using the standard scrypt parameters.
func (a *NamedAccount) ExportKeystore(password string) ([]byte, error) {
	key := &keystore.Key{
		Id:         uuid.New(),
		Address:    a.address,
		PrivateKey: a.key,
	}
	keyjson, err := keystore.EncryptKey(key, password, keystore.StandardScryptN, keystore.StandardScryptP)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt keystore: %w", err)
	}
	return keyjson, nil
}

func (a *NamedAccount) String() string {
	return fmt.Sprintf("%s (%s)", a.name, a.address.Hex())
}
