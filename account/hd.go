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
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/pbkdf2"
)

// DefaultDerivationPath is the standard derivation path for the first
// Ethereum account of a mnemonic, m/44'/60'/0'/0/0.
const DefaultDerivationPath = "m/44'/60'/0'/0/0"

// hardenedOffset marks the first hardened child index in BIP-32 derivation.
const hardenedOffset = 0x80000000

var errInvalidMnemonic = errors.New("invalid mnemonic phrase")

// seedFromMnemonic converts a BIP-39 mnemonic and optional passphrase into
// the 64-byte wallet seed. Only the structural shape of the phrase is
// validated; wordlist membership is the caller's concern.
func seedFromMnemonic(mnemonic, passphrase string) ([]byte, error) {
	words := strings.Fields(mnemonic)
	if len(words) < 12 || len(words) > 24 || len(words)%3 != 0 {
		return nil, fmt.Errorf("%w: expected 12 to 24 words, got %d", errInvalidMnemonic, len(words))
	}
	normalized := strings.Join(words, " ")
	seed := pbkdf2.Key([]byte(normalized), []byte("mnemonic"+passphrase), 2048, 64, sha512.New)
	return seed, nil
}

// deriveKey walks the BIP-32 derivation path starting from the master key of
// the given seed and returns the private key at its end. Paths follow
// accounts.ParseDerivationPath semantics: absolute with an m/ prefix,
// relative to m/44'/60'/0'/0 without one.
func deriveKey(seed []byte, path string) (*ecdsa.PrivateKey, error) {
	indices, err := accounts.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid derivation path %q: %w", path, err)
	}

	// Master key per BIP-32: HMAC-SHA512 keyed with "Bitcoin seed".
	mac := hmac.New(sha512.New, []byte("Bitcoin seed"))
	mac.Write(seed)
	sum := mac.Sum(nil)
	secret := new(big.Int).SetBytes(sum[:32])
	chainCode := sum[32:]

	order := crypto.S256().Params().N
	if secret.Sign() == 0 || secret.Cmp(order) >= 0 {
		return nil, errors.New("invalid master key derived from seed")
	}

	for _, index := range indices {
		secret, chainCode, err = deriveChild(secret, chainCode, index)
		if err != nil {
			return nil, err
		}
	}

	return crypto.ToECDSA(paddedBytes(secret))
}

// deriveChild computes one BIP-32 child key derivation step.
func deriveChild(secret *big.Int, chainCode []byte, index uint32) (*big.Int, []byte, error) {
	var data []byte
	if index >= hardenedOffset {
		// Hardened: 0x00 || ser256(k_par) || ser32(i)
		data = append([]byte{0x00}, paddedBytes(secret)...)
	} else {
		// Normal: serP(K_par) || ser32(i)
		key, err := crypto.ToECDSA(paddedBytes(secret))
		if err != nil {
			return nil, nil, err
		}
		data = crypto.CompressPubkey(&key.PublicKey)
	}
	data = binary.BigEndian.AppendUint32(data, index)

	mac := hmac.New(sha512.New, chainCode)
	mac.Write(data)
	sum := mac.Sum(nil)

	order := crypto.S256().Params().N
	child := new(big.Int).SetBytes(sum[:32])
	if child.Cmp(order) >= 0 {
		return nil, nil, fmt.Errorf("derived child key %d is out of range", index)
	}
	child.Add(child, secret)
	child.Mod(child, order)
	if child.Sign() == 0 {
		return nil, nil, fmt.Errorf("derived child key %d is zero", index)
	}
	return child, sum[32:], nil
}

// paddedBytes serialises a key scalar into exactly 32 bytes.
func paddedBytes(value *big.Int) []byte {
	return value.FillBytes(make([]byte, 32))
}
