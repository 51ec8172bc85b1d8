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
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/arkiv-network/arkiv-go/entity"
	"github.com/arkiv-network/arkiv-go/query"
)

func testKey(t *testing.T) entity.Key {
	t.Helper()
	key, err := entity.KeyFromHex("0x1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef")
	require.NoError(t, err)
	return key
}

func TestClient_GetStorageValue_ReturnsThePayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getStorageValue", key.Hash()).
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*[]byte) = []byte("Hello, Arkiv!")
			return nil
		})

	payload, err := client.GetStorageValue(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, []byte("Hello, Arkiv!"), payload)
}

func TestClient_GetStorageValue_WrapsRPCErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getStorageValue", key.Hash()).
		Return(fmt.Errorf("connection refused"))

	_, err := client.GetStorageValue(context.Background(), key)
	require.ErrorContains(t, err, "failed to get storage value")
	require.ErrorContains(t, err, "connection refused")
}

func TestClient_GetEntityMetaData_DecodesTheResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)
	owner := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntityMetaData", key.Hash()).
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*entity.MetaData) = entity.MetaData{
				ExpiresAtBlock:     1200,
				Owner:              owner,
				StringAnnotations:  []entity.StringAnnotation{{Key: "type", Value: "Greeting"}},
				NumericAnnotations: []entity.NumericAnnotation{{Key: "version", Value: 1}},
			}
			return nil
		})

	meta, err := client.GetEntityMetaData(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, uint64(1200), meta.ExpiresAtBlock)
	require.Equal(t, owner, meta.Owner)
}

func TestClient_GetEntity_ComposesValueAndMetaData(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)
	owner := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntityMetaData", key.Hash()).
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*entity.MetaData) = entity.MetaData{
				ExpiresAtBlock:     1200,
				Owner:              owner,
				StringAnnotations:  []entity.StringAnnotation{{Key: "type", Value: "Greeting"}},
				NumericAnnotations: []entity.NumericAnnotation{{Key: "version", Value: 1}},
			}
			return nil
		})
	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getStorageValue", key.Hash()).
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*[]byte) = []byte("Hello world!")
			return nil
		})

	record, err := client.GetEntity(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, key, record.Key)
	require.Equal(t, []byte("Hello world!"), record.Payload)
	require.Equal(t, entity.Annotations{"type": "Greeting", "version": uint64(1)}, record.Annotations)
	require.Equal(t, owner, record.MetaData.Owner)
}

func TestClient_Exists_TrueForActiveEntities(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntityMetaData", key.Hash()).
		Return(nil)

	exists, err := client.Exists(context.Background(), key)
	require.NoError(t, err)
	require.True(t, exists)
}

func TestClient_Exists_FalseForMissingEntities(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntityMetaData", key.Hash()).
		Return(fmt.Errorf("entity not found"))

	exists, err := client.Exists(context.Background(), key)
	require.NoError(t, err)
	require.False(t, exists)
}

func TestClient_Exists_PropagatesTransportErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntityMetaData", key.Hash()).
		Return(fmt.Errorf("connection reset"))

	_, err := client.Exists(context.Background(), key)
	require.ErrorContains(t, err, "connection reset")
}

func TestClient_QueryEntities_RendersTheExpression(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_queryEntities", `type = "Greeting" && version = 1`).
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*[]SearchResult) = []SearchResult{{Key: key, Payload: []byte("Hello world!")}}
			return nil
		})

	results, err := client.QueryEntities(context.Background(),
		query.And(query.Eq("type", "Greeting"), query.EqNum("version", 1)))
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, key, results[0].Key)
	require.Equal(t, []byte("Hello world!"), results[0].Payload)
}

func TestClient_QueryEntities_RejectsEmptyQueries(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}

	// No RPC call may be issued for a query that renders empty.
	_, err := client.QueryEntities(context.Background(), query.And())
	require.ErrorIs(t, err, ErrEmptyQuery)

	_, err = client.QueryEntitiesRaw(context.Background(), "  ")
	require.ErrorIs(t, err, ErrEmptyQuery)
}

func TestClient_GetEntityCount_ReturnsTheCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntityCount").
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*uint64) = 42
			return nil
		})

	count, err := client.GetEntityCount(context.Background())
	require.NoError(t, err)
	require.Equal(t, uint64(42), count)
}

func TestClient_GetAllEntityKeys_ReturnsTheKeys(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	key := testKey(t)

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getAllEntityKeys").
		DoAndReturn(func(_ context.Context, result any, _ string, _ ...any) error {
			*result.(*[]entity.Key) = []entity.Key{key}
			return nil
		})

	keys, err := client.GetAllEntityKeys(context.Background())
	require.NoError(t, err)
	require.Equal(t, []entity.Key{key}, keys)
}

func TestClient_GetEntitiesOfOwner_PassesTheAddress(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}
	owner := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntitiesOfOwner", owner).
		Return(nil)

	_, err := client.GetEntitiesOfOwner(context.Background(), owner)
	require.NoError(t, err)
}

func TestClient_GetEntitiesToExpireAtBlock_PassesTheBlockNumber(t *testing.T) {
	ctrl := gomock.NewController(t)
	caller := NewMockCaller(ctrl)
	client := &Client{caller: caller}

	caller.EXPECT().
		CallContext(gomock.Any(), gomock.Any(), "golembase_getEntitiesToExpireAtBlock", uint64(1200)).
		Return(nil)

	_, err := client.GetEntitiesToExpireAtBlock(context.Background(), 1200)
	require.NoError(t, err)
}
