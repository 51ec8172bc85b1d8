// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package entity defines the data model of the Arkiv storage network: entity
// keys, annotations, metadata, and the operation batches that are encoded
// into storage transactions.
package entity

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// KeyLength is the length of an entity key in bytes.
const KeyLength = 32

// Key is the unique identifier of an entity. Keys are assigned by the node
// when an entity is created and are carried as uint256 words in the storage
// contract's event topics.
type Key [KeyLength]byte

// KeyFromHex parses a key from a hex string, with or without a 0x prefix.
func KeyFromHex(s string) (Key, error) {
	raw := strings.TrimPrefix(s, "0x")
	data, err := hex.DecodeString(raw)
	if err != nil {
		return Key{}, fmt.Errorf("invalid entity key %q: %w", s, err)
	}
	if len(data) != KeyLength {
		return Key{}, fmt.Errorf("invalid entity key length %d, want %d", len(data), KeyLength)
	}
	var key Key
	copy(key[:], data)
	return key, nil
}

// KeyFromHash converts a 32-byte hash into an entity key.
func KeyFromHash(h common.Hash) Key {
	return Key(h)
}

// KeyFromUint256 converts a uint256 word, as found in event topics, into an
// entity key.
func KeyFromUint256(v *uint256.Int) Key {
	return Key(v.Bytes32())
}

// Hash returns the key as a go-ethereum hash, the form used as an RPC
// parameter.
func (k Key) Hash() common.Hash {
	return common.Hash(k)
}

// Uint256 returns the key interpreted as a big-endian uint256 word.
func (k Key) Uint256() *uint256.Int {
	return new(uint256.Int).SetBytes(k[:])
}

// Hex returns the 0x-prefixed hex representation of the key.
func (k Key) Hex() string {
	return "0x" + hex.EncodeToString(k[:])
}

func (k Key) String() string {
	return k.Hex()
}

// MarshalText renders the key as 0x-prefixed hex, the form used in JSON-RPC
// responses.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.Hex()), nil
}

// UnmarshalText parses a key from its hex representation.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := KeyFromHex(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// StringAnnotation is a string-valued attribute attached to an entity.
type StringAnnotation struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NumericAnnotation is a numeric attribute attached to an entity. Values are
// unsigned since the network only supports non-negative numbers.
type NumericAnnotation struct {
	Key   string `json:"key"`
	Value uint64 `json:"value"`
}

// Annotations is a convenience representation of a mixed set of annotations.
// Supported value types are strings and non-negative integers.
type Annotations map[string]any

// Split separates mixed annotations into the string and numeric lists used
// on the wire. Entries are ordered by key so that the resulting encoding is
// deterministic. Negative integers and unsupported value types are rejected.
func (a Annotations) Split() ([]StringAnnotation, []NumericAnnotation, error) {
	var (
		strs []StringAnnotation
		nums []NumericAnnotation
	)
	keys := make([]string, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		switch value := a[key].(type) {
		case string:
			strs = append(strs, StringAnnotation{Key: key, Value: value})
		case uint64:
			nums = append(nums, NumericAnnotation{Key: key, Value: value})
		case uint:
			nums = append(nums, NumericAnnotation{Key: key, Value: uint64(value)})
		case int:
			if value < 0 {
				return nil, nil, fmt.Errorf("%w: %s = %d", ErrNegativeAnnotation, key, value)
			}
			nums = append(nums, NumericAnnotation{Key: key, Value: uint64(value)})
		case int64:
			if value < 0 {
				return nil, nil, fmt.Errorf("%w: %s = %d", ErrNegativeAnnotation, key, value)
			}
			nums = append(nums, NumericAnnotation{Key: key, Value: uint64(value)})
		default:
			return nil, nil, fmt.Errorf("unsupported annotation value type %T for key %q", value, key)
		}
	}
	return strs, nums, nil
}

// MergeAnnotations combines string and numeric annotation lists back into a
// single map, the inverse of Annotations.Split.
func MergeAnnotations(strs []StringAnnotation, nums []NumericAnnotation) Annotations {
	merged := make(Annotations, len(strs)+len(nums))
	for _, annotation := range strs {
		merged[annotation.Key] = annotation.Value
	}
	for _, annotation := range nums {
		merged[annotation.Key] = annotation.Value
	}
	return merged
}

// MetaData describes the state the node keeps for an active entity. The JSON
// field names follow the golembase_getEntityMetaData response format.
type MetaData struct {
	ExpiresAtBlock      uint64              `json:"expiresAtBlock"`
	StringAnnotations   []StringAnnotation  `json:"stringAnnotations"`
	NumericAnnotations  []NumericAnnotation `json:"numericAnnotations"`
	Owner               common.Address      `json:"owner"`
	CreatedAtBlock      uint64              `json:"createdAtBlock"`
	LastModifiedAtBlock uint64              `json:"lastModifiedAtBlock"`
	TransactionIndex    uint64              `json:"transactionIndex"`
	OperationIndex      uint64              `json:"operationIndex"`
}

// Entity is a full entity record: its key, payload, annotations, and the
// node-maintained metadata.
type Entity struct {
	Key         Key
	Payload     []byte
	Annotations Annotations
	MetaData    MetaData
}
