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
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/arkiv-network/arkiv-go/entity"
	"github.com/arkiv-network/arkiv-go/query"
)

// SearchResult is one entity matched by a query: its key and its current
// payload.
type SearchResult struct {
	Key     entity.Key `json:"key"`
	Payload []byte     `json:"value"`
}

// GetStorageValue retrieves the payload of an entity.
func (c *Client) GetStorageValue(ctx context.Context, key entity.Key) ([]byte, error) {
	var payload []byte
	if err := c.caller.CallContext(ctx, &payload, "golembase_getStorageValue", key.Hash()); err != nil {
		return nil, fmt.Errorf("failed to get storage value of %s: %w", key, err)
	}
	return payload, nil
}

// GetEntityMetaData retrieves the node-maintained metadata of an entity.
func (c *Client) GetEntityMetaData(ctx context.Context, key entity.Key) (entity.MetaData, error) {
	var meta entity.MetaData
	if err := c.caller.CallContext(ctx, &meta, "golembase_getEntityMetaData", key.Hash()); err != nil {
		return entity.MetaData{}, fmt.Errorf("failed to get metadata of %s: %w", key, err)
	}
	return meta, nil
}

// GetEntity retrieves a full entity record, composing its payload and
// metadata and merging the annotation lists back into a single map.
func (c *Client) GetEntity(ctx context.Context, key entity.Key) (entity.Entity, error) {
	meta, err := c.GetEntityMetaData(ctx, key)
	if err != nil {
		return entity.Entity{}, err
	}
	payload, err := c.GetStorageValue(ctx, key)
	if err != nil {
		return entity.Entity{}, err
	}
	return entity.Entity{
		Key:         key,
		Payload:     payload,
		Annotations: entity.MergeAnnotations(meta.StringAnnotations, meta.NumericAnnotations),
		MetaData:    meta,
	}, nil
}

// Exists reports whether an entity with the given key is currently active.
// Transport failures are reported as errors; a missing entity is not an
// error.
func (c *Client) Exists(ctx context.Context, key entity.Key) (bool, error) {
	_, err := c.GetEntityMetaData(ctx, key)
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, err
}

// QueryEntities returns all entities matching an annotation query
// expression.
func (c *Client) QueryEntities(ctx context.Context, q query.Expr) ([]SearchResult, error) {
	return c.QueryEntitiesRaw(ctx, q.String())
}

// QueryEntitiesRaw returns all entities matching a query given directly in
// the node's query language. An empty query is rejected with ErrEmptyQuery
// before it reaches the node.
func (c *Client) QueryEntitiesRaw(ctx context.Context, q string) ([]SearchResult, error) {
	if strings.TrimSpace(q) == "" {
		return nil, ErrEmptyQuery
	}
	var results []SearchResult
	if err := c.caller.CallContext(ctx, &results, "golembase_queryEntities", q); err != nil {
		return nil, fmt.Errorf("failed to query entities with %q: %w", q, err)
	}
	return results, nil
}

// GetEntityCount returns the number of active entities on the network.
func (c *Client) GetEntityCount(ctx context.Context) (uint64, error) {
	var count uint64
	if err := c.caller.CallContext(ctx, &count, "golembase_getEntityCount"); err != nil {
		return 0, fmt.Errorf("failed to get entity count: %w", err)
	}
	return count, nil
}

// GetAllEntityKeys returns the keys of all active entities.
func (c *Client) GetAllEntityKeys(ctx context.Context) ([]entity.Key, error) {
	var keys []entity.Key
	if err := c.caller.CallContext(ctx, &keys, "golembase_getAllEntityKeys"); err != nil {
		return nil, fmt.Errorf("failed to get entity keys: %w", err)
	}
	return keys, nil
}

// GetEntitiesOfOwner returns the keys of all entities owned by an address.
func (c *Client) GetEntitiesOfOwner(ctx context.Context, owner common.Address) ([]entity.Key, error) {
	var keys []entity.Key
	if err := c.caller.CallContext(ctx, &keys, "golembase_getEntitiesOfOwner", owner); err != nil {
		return nil, fmt.Errorf("failed to get entities of %s: %w", owner, err)
	}
	return keys, nil
}

// GetEntitiesToExpireAtBlock returns the keys of all entities whose lifetime
// ends at the given block.
func (c *Client) GetEntitiesToExpireAtBlock(ctx context.Context, block uint64) ([]entity.Key, error) {
	var keys []entity.Key
	if err := c.caller.CallContext(ctx, &keys, "golembase_getEntitiesToExpireAtBlock", block); err != nil {
		return nil, fmt.Errorf("failed to get entities expiring at block %d: %w", block, err)
	}
	return keys, nil
}
