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
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/arkiv-network/arkiv-go/entity"
)

// TxOptions allows callers to override fee and nonce parameters of a storage
// transaction. Fields left at their zero value are filled in from the node.
// The transaction's target address, value, and calldata are always owned by
// the SDK and cannot be overridden.
type TxOptions struct {
	Nonce     *uint64  // < nil selects the pending nonce of the signer
	GasLimit  uint64   // < 0 estimates gas against the node
	GasTipCap *big.Int // < nil asks the node for a suggested tip
	GasFeeCap *big.Int // < nil derives the cap from the head base fee
}

// CreateEntity creates a single entity holding the given payload and
// annotations for btl blocks and waits until the transaction is mined. It
// returns the key assigned to the new entity and the transaction hash.
func (c *Client) CreateEntity(ctx context.Context, payload []byte, annotations entity.Annotations, btl uint64) (entity.Key, common.Hash, error) {
	strs, nums, err := annotations.Split()
	if err != nil {
		return entity.Key{}, common.Hash{}, err
	}
	ops := entity.Operations{
		Creates: []entity.Create{{
			BTL:                btl,
			Payload:            payload,
			StringAnnotations:  strs,
			NumericAnnotations: nums,
		}},
	}
	receipt, err := c.ExecuteOperations(ctx, ops, nil)
	if err != nil {
		return entity.Key{}, common.Hash{}, err
	}
	if len(receipt.Creates) == 0 {
		return entity.Key{}, common.Hash{}, fmt.Errorf("transaction %s produced no creation event", receipt.TxHash)
	}
	return receipt.Creates[0].Key, receipt.TxHash, nil
}

// UpdateEntity replaces the payload, annotations, and lifetime of an entity
// and waits until the transaction is mined.
func (c *Client) UpdateEntity(ctx context.Context, key entity.Key, payload []byte, annotations entity.Annotations, btl uint64) (common.Hash, error) {
	strs, nums, err := annotations.Split()
	if err != nil {
		return common.Hash{}, err
	}
	ops := entity.Operations{
		Updates: []entity.Update{{
			Key:                key,
			BTL:                btl,
			Payload:            payload,
			StringAnnotations:  strs,
			NumericAnnotations: nums,
		}},
	}
	receipt, err := c.ExecuteOperations(ctx, ops, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

// DeleteEntity removes an entity and waits until the transaction is mined.
func (c *Client) DeleteEntity(ctx context.Context, key entity.Key) (common.Hash, error) {
	ops := entity.Operations{Deletes: []entity.Delete{{Key: key}}}
	receipt, err := c.ExecuteOperations(ctx, ops, nil)
	if err != nil {
		return common.Hash{}, err
	}
	return receipt.TxHash, nil
}

// ExtendEntity prolongs the lifetime of an entity by the given number of
// blocks and waits until the transaction is mined. It returns the new
// expiration block as reported by the network.
func (c *Client) ExtendEntity(ctx context.Context, key entity.Key, blocks uint64) (uint64, common.Hash, error) {
	ops := entity.Operations{Extensions: []entity.Extend{{Key: key, NumberOfBlocks: blocks}}}
	receipt, err := c.ExecuteOperations(ctx, ops, nil)
	if err != nil {
		return 0, common.Hash{}, err
	}
	if len(receipt.Extensions) == 0 {
		return 0, common.Hash{}, fmt.Errorf("transaction %s produced no extension event", receipt.TxHash)
	}
	return receipt.Extensions[0].NewExpiresAtBlock, receipt.TxHash, nil
}

// SendOperations signs and submits a batch of entity operations without
// waiting for it to be mined.
func (c *Client) SendOperations(ctx context.Context, ops entity.Operations, opts *TxOptions) (common.Hash, error) {
	tx, err := c.sendOperations(ctx, ops, opts)
	if err != nil {
		return common.Hash{}, err
	}
	return tx.Hash(), nil
}

// ExecuteOperations signs and submits a batch of entity operations, waits
// until the transaction is mined, and decodes the per-operation results from
// the storage contract's event log.
func (c *Client) ExecuteOperations(ctx context.Context, ops entity.Operations, opts *TxOptions) (*Receipt, error) {
	tx, err := c.sendOperations(ctx, ops, opts)
	if err != nil {
		return nil, err
	}
	mined, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, fmt.Errorf("failed waiting for transaction %s: %w", tx.Hash(), err)
	}
	if mined.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("%w: transaction %s reverted in block %d",
			ErrTransactionFailed, tx.Hash(), mined.BlockNumber.Uint64())
	}
	return parseReceipt(mined)
}

func (c *Client) sendOperations(ctx context.Context, ops entity.Operations, opts *TxOptions) (*types.Transaction, error) {
	signer := c.CurrentSigner()
	if signer == nil {
		return nil, ErrNoSigner
	}
	data, err := ops.Encode()
	if err != nil {
		return nil, err
	}
	chainID, err := c.ChainID(ctx)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &TxOptions{}
	}

	nonce := uint64(0)
	if opts.Nonce != nil {
		nonce = *opts.Nonce
	} else {
		nonce, err = c.eth.PendingNonceAt(ctx, signer.Address())
		if err != nil {
			return nil, fmt.Errorf("failed to get nonce for %s: %w", signer.Address(), err)
		}
	}

	tip := opts.GasTipCap
	if tip == nil {
		tip, err = c.eth.SuggestGasTipCap(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get gas tip suggestion: %w", err)
		}
	}

	feeCap := opts.GasFeeCap
	if feeCap == nil {
		head, err := c.eth.HeaderByNumber(ctx, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to get chain head: %w", err)
		}
		if head.BaseFee == nil {
			return nil, fmt.Errorf("node reports no base fee, set an explicit gas fee cap")
		}
		// Standard fee cap heuristic: twice the current base fee plus the
		// tip, keeping the transaction valid across moderate fee growth.
		feeCap = new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
	}

	gas := opts.GasLimit
	if gas == 0 {
		gas, err = c.eth.EstimateGas(ctx, ethereum.CallMsg{
			From:      signer.Address(),
			To:        &entity.StorageAddress,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Data:      data,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to estimate gas: %w", err)
		}
	}

	tx := newStorageTx(chainID, nonce, tip, feeCap, gas, data)
	signed, err := signer.SignTx(tx, chainID)
	if err != nil {
		return nil, err
	}
	if err := c.eth.SendTransaction(ctx, signed); err != nil {
		return nil, fmt.Errorf("failed to send storage transaction: %w", err)
	}
	return signed, nil
}

// newStorageTx assembles the unsigned dynamic-fee transaction carrying an
// encoded operation batch. The target and value are fixed by the network:
// all batches go to the storage address and transfer no funds.
func newStorageTx(chainID *big.Int, nonce uint64, tip, feeCap *big.Int, gas uint64, data []byte) *types.Transaction {
	return types.NewTx(&types.DynamicFeeTx{
		ChainID:   chainID,
		Nonce:     nonce,
		GasTipCap: tip,
		GasFeeCap: feeCap,
		Gas:       gas,
		To:        &entity.StorageAddress,
		Value:     new(big.Int),
		Data:      data,
	})
}
