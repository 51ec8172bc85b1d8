// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package arkiv is a client SDK for the Arkiv storage network. It extends a
// regular go-ethereum client with entity management: creating, updating,
// querying, and deleting annotated binary records with a block-based
// lifetime.
//
// The design principle is that whatever works with the underlying Ethereum
// client also works here. The full client surface remains reachable through
// Client.Eth and Client.RPC; the SDK only adds the entity operations on top.
package arkiv

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"golang.org/x/exp/maps"

	"github.com/arkiv-network/arkiv-go/account"
)

//go:generate mockgen -source client.go -destination caller_mocks.go -package arkiv

// Caller abstracts the JSON-RPC connection used for entity queries. It is
// satisfied by rpc.Client.
type Caller interface {
	// CallContext performs a JSON-RPC call with the given method and
	// arguments, unmarshalling the response into result.
	CallContext(ctx context.Context, result any, method string, args ...any) error
}

// Client is a connection to an Arkiv node. It wraps an Ethereum client and
// adds entity operations plus a registry of named signing accounts.
//
// A Client is safe for concurrent use.
type Client struct {
	rpc    *rpc.Client
	eth    *ethclient.Client
	caller Caller

	mu       sync.Mutex
	accounts map[string]*account.NamedAccount
	signer   *account.NamedAccount // < current signer, may be nil
	chainID  *big.Int              // < lazily resolved, nil until first use
}

// Dial connects to an Arkiv node at the given URL. The supported transports
// are those of the underlying RPC client; entity event subscriptions require
// a WebSocket endpoint. The first account, if any, becomes the current
// signer; all provided accounts are registered by name.
func Dial(ctx context.Context, rawurl string, accounts ...*account.NamedAccount) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rawurl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", rawurl, err)
	}
	return NewClient(rpcClient, accounts...), nil
}

// NewClient creates a client on top of an established RPC connection. The
// first account, if any, becomes the current signer.
func NewClient(rpcClient *rpc.Client, accounts ...*account.NamedAccount) *Client {
	client := &Client{
		rpc:      rpcClient,
		eth:      ethclient.NewClient(rpcClient),
		caller:   rpcClient,
		accounts: make(map[string]*account.NamedAccount),
	}
	for _, acc := range accounts {
		client.accounts[acc.Name()] = acc
	}
	if len(accounts) > 0 {
		client.signer = accounts[0]
	}
	return client
}

// Eth returns the underlying Ethereum client for plain chain interactions.
func (c *Client) Eth() *ethclient.Client {
	return c.eth
}

// RPC returns the underlying RPC connection.
func (c *Client) RPC() *rpc.Client {
	return c.rpc
}

// Close shuts down the underlying RPC connection.
func (c *Client) Close() {
	if c.rpc != nil {
		c.rpc.Close()
	}
}

// RegisterAccount adds an account to the client's registry, replacing any
// account previously registered under the same name. The current signer is
// not changed.
func (c *Client) RegisterAccount(acc *account.NamedAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[acc.Name()] = acc
}

// SwitchTo makes the account registered under the given name the current
// signer. If no such account exists, ErrAccountNotFound is returned and the
// current signer remains unchanged.
func (c *Client) SwitchTo(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	acc, found := c.accounts[name]
	if !found {
		return fmt.Errorf("%w: %q", ErrAccountNotFound, name)
	}
	c.signer = acc
	return nil
}

// CurrentSigner returns the account currently used for signing storage
// transactions, or nil if none is configured.
func (c *Client) CurrentSigner() *account.NamedAccount {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.signer
}

// AccountNames lists the names of all registered accounts in sorted order.
func (c *Client) AccountNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := maps.Keys(c.accounts)
	sort.Strings(names)
	return names
}

// ChainID returns the chain ID of the connected network, caching the result
// after the first successful call.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	c.mu.Lock()
	cached := c.chainID
	c.mu.Unlock()
	if cached != nil {
		return cached, nil
	}
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve chain ID: %w", err)
	}
	c.mu.Lock()
	c.chainID = id
	c.mu.Unlock()
	return id, nil
}
