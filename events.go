// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package arkiv

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"

	"github.com/arkiv-network/arkiv-go/entity"
)

// Topic hashes of the storage contract's entity lifecycle events.
var (
	createdTopic  = crypto.Keccak256Hash([]byte("GolemBaseStorageEntityCreated(uint256,uint256)"))
	updatedTopic  = crypto.Keccak256Hash([]byte("GolemBaseStorageEntityUpdated(uint256,uint256)"))
	deletedTopic  = crypto.Keccak256Hash([]byte("GolemBaseStorageEntityDeleted(uint256)"))
	extendedTopic = crypto.Keccak256Hash([]byte("GolemBaseStorageEntityBTLExtended(uint256,uint256,uint256)"))
)

// EventKind distinguishes the entity lifecycle events of the storage
// contract.
type EventKind int

const (
	EntityCreated EventKind = iota
	EntityUpdated
	EntityDeleted
	EntityExtended
)

func (k EventKind) String() string {
	switch k {
	case EntityCreated:
		return "created"
	case EntityUpdated:
		return "updated"
	case EntityDeleted:
		return "deleted"
	case EntityExtended:
		return "extended"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a decoded entity lifecycle event. ExpiresAtBlock is set for
// created and updated events, the old/new pair for extension events.
type Event struct {
	Kind              EventKind
	Key               entity.Key
	ExpiresAtBlock    uint64
	OldExpiresAtBlock uint64
	NewExpiresAtBlock uint64
	Raw               types.Log // < the undecoded source log
}

// CreateResult reports one successful create operation of a storage
// transaction.
type CreateResult struct {
	Key            entity.Key
	ExpiresAtBlock uint64
}

// UpdateResult reports one successful update operation of a storage
// transaction.
type UpdateResult struct {
	Key            entity.Key
	ExpiresAtBlock uint64
}

// DeleteResult reports one successful delete operation of a storage
// transaction.
type DeleteResult struct {
	Key entity.Key
}

// ExtendResult reports one successful lifetime extension of a storage
// transaction.
type ExtendResult struct {
	Key               entity.Key
	OldExpiresAtBlock uint64
	NewExpiresAtBlock uint64
}

// Receipt summarises a mined storage transaction, listing the outcome of
// every operation of the batch in the order the node processed them.
type Receipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	Creates     []CreateResult
	Updates     []UpdateResult
	Deletes     []DeleteResult
	Extensions  []ExtendResult
}

// parseReceipt decodes the storage contract's logs of a mined transaction
// into per-operation results. Logs of other contracts are ignored.
func parseReceipt(receipt *types.Receipt) (*Receipt, error) {
	result := &Receipt{
		TxHash:      receipt.TxHash,
		BlockNumber: receipt.BlockNumber.Uint64(),
	}
	for _, log := range receipt.Logs {
		decoded, ok, err := parseLog(*log)
		if err != nil {
			return nil, fmt.Errorf("failed to decode log %d of transaction %s: %w", log.Index, receipt.TxHash, err)
		}
		if !ok {
			continue
		}
		switch decoded.Kind {
		case EntityCreated:
			result.Creates = append(result.Creates, CreateResult{Key: decoded.Key, ExpiresAtBlock: decoded.ExpiresAtBlock})
		case EntityUpdated:
			result.Updates = append(result.Updates, UpdateResult{Key: decoded.Key, ExpiresAtBlock: decoded.ExpiresAtBlock})
		case EntityDeleted:
			result.Deletes = append(result.Deletes, DeleteResult{Key: decoded.Key})
		case EntityExtended:
			result.Extensions = append(result.Extensions, ExtendResult{
				Key:               decoded.Key,
				OldExpiresAtBlock: decoded.OldExpiresAtBlock,
				NewExpiresAtBlock: decoded.NewExpiresAtBlock,
			})
		}
	}
	return result, nil
}

// parseLog decodes one log of the storage contract. The second return value
// is false for logs of other contracts or unknown events.
func parseLog(log types.Log) (Event, bool, error) {
	if log.Address != entity.StorageAddress || len(log.Topics) < 2 {
		return Event{}, false, nil
	}
	decoded := Event{
		Key: entity.KeyFromHash(log.Topics[1]),
		Raw: log,
	}
	switch log.Topics[0] {
	case createdTopic:
		decoded.Kind = EntityCreated
	case updatedTopic:
		decoded.Kind = EntityUpdated
	case deletedTopic:
		decoded.Kind = EntityDeleted
		return decoded, true, nil
	case extendedTopic:
		decoded.Kind = EntityExtended
		words, err := dataWords(log.Data, 2)
		if err != nil {
			return Event{}, false, err
		}
		decoded.OldExpiresAtBlock = words[0]
		decoded.NewExpiresAtBlock = words[1]
		return decoded, true, nil
	default:
		return Event{}, false, nil
	}
	// Created and updated events carry the expiration block as the single
	// data word.
	words, err := dataWords(log.Data, 1)
	if err != nil {
		return Event{}, false, err
	}
	decoded.ExpiresAtBlock = words[0]
	return decoded, true, nil
}

// dataWords splits ABI-encoded event data into the expected number of
// uint256 words, reduced to uint64 block numbers.
func dataWords(data []byte, count int) ([]uint64, error) {
	if len(data) != count*32 {
		return nil, fmt.Errorf("unexpected event data length %d, want %d", len(data), count*32)
	}
	words := make([]uint64, count)
	for i := range words {
		word := new(uint256.Int).SetBytes(data[i*32 : (i+1)*32])
		if !word.IsUint64() {
			return nil, fmt.Errorf("event data word %d overflows uint64", i)
		}
		words[i] = word.Uint64()
	}
	return words, nil
}

// WatchEntities subscribes to the storage contract's entity lifecycle events
// and forwards decoded events to sink until the subscription is cancelled.
// The connection must be a subscription-capable transport such as WebSocket.
func (c *Client) WatchEntities(ctx context.Context, sink chan<- Event) (ethereum.Subscription, error) {
	logs := make(chan types.Log, 16)
	sub, err := c.eth.SubscribeFilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{entity.StorageAddress},
	}, logs)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to entity events: %w", err)
	}
	return event.NewSubscription(func(quit <-chan struct{}) error {
		defer sub.Unsubscribe()
		for {
			select {
			case log := <-logs:
				decoded, ok, err := parseLog(log)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				select {
				case sink <- decoded:
				case err := <-sub.Err():
					return err
				case <-quit:
					return nil
				}
			case err := <-sub.Err():
				return err
			case <-quit:
				return nil
			}
		}
	}), nil
}
