// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package entity

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// StorageAddress is the address of the storage contract processing entity
// operations. It is fixed by the network.
var StorageAddress = common.HexToAddress("0x0000000000000000000000000000000060138453")

var (
	// ErrNoOperations is returned when an empty operation batch is encoded
	// or submitted.
	ErrNoOperations = errors.New("at least one operation must be provided")

	// ErrNegativeAnnotation is returned when a numeric annotation carries a
	// negative value.
	ErrNegativeAnnotation = errors.New("numeric annotation values must be non-negative")
)

// Create adds a new entity holding the given payload for BTL blocks.
//
// The field order of the operation structs defines the RLP layout of the
// storage transaction and must not be changed.
type Create struct {
	BTL                uint64
	Payload            []byte
	StringAnnotations  []StringAnnotation
	NumericAnnotations []NumericAnnotation
}

// Update replaces the payload, annotations, and lifetime of an entity.
type Update struct {
	Key                Key
	BTL                uint64
	Payload            []byte
	StringAnnotations  []StringAnnotation
	NumericAnnotations []NumericAnnotation
}

// Delete removes an entity.
type Delete struct {
	Key Key
}

// Extend prolongs the lifetime of an entity by a number of blocks.
type Extend struct {
	Key            Key
	NumberOfBlocks uint64
}

// Operations is a batch of entity operations submitted as a single storage
// transaction. The node processes all operations of a batch atomically.
type Operations struct {
	Creates    []Create
	Updates    []Update
	Deletes    []Delete
	Extensions []Extend
}

// Empty reports whether the batch contains no operations.
func (o Operations) Empty() bool {
	return len(o.Creates) == 0 && len(o.Updates) == 0 &&
		len(o.Deletes) == 0 && len(o.Extensions) == 0
}

// Encode serialises the batch into the calldata of a storage transaction.
// The wire format is an RLP list of four lists, creates, updates, deletes,
// and extensions, in this order.
func (o Operations) Encode() ([]byte, error) {
	if o.Empty() {
		return nil, ErrNoOperations
	}
	data, err := rlp.EncodeToBytes(o)
	if err != nil {
		return nil, err
	}
	return data, nil
}
