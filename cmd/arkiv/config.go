// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/urfave/cli/v2"

	arkiv "github.com/arkiv-network/arkiv-go"
	"github.com/arkiv-network/arkiv-go/account"
)

var (
	rpcFlag = cli.StringFlag{
		Name:  "rpc",
		Usage: "URL of the Arkiv node to connect to",
	}
	keystoreFlag = cli.StringFlag{
		Name:  "keystore",
		Usage: "path of the keystore file holding the signing key",
	}
	passwordFlag = cli.StringFlag{
		Name:  "password",
		Usage: "password of the keystore file",
	}
	privateKeyFlag = cli.StringFlag{
		Name:  "private-key",
		Usage: "hex-encoded signing key, an alternative to a keystore file",
	}
	mnemonicFlag = cli.StringFlag{
		Name:  "mnemonic",
		Usage: "BIP-39 mnemonic phrase to derive the signing key from",
	}
	derivationPathFlag = cli.StringFlag{
		Name:  "derivation-path",
		Usage: "derivation path of the mnemonic account, defaults to " + account.DefaultDerivationPath,
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "name of the signing account",
		Value: "default",
	}
)

// config carries the connection and signing settings of the tool. Every
// field can be provided through the environment and overridden with flags.
type config struct {
	RPCURL           string `env:"RPC_URL"`
	WSURL            string `env:"WS_URL"`
	PrivateKey       string `env:"PRIVATE_KEY"`
	Keystore         string `env:"KEYSTORE"`
	KeystorePassword string `env:"KEYSTORE_PASSWORD"`
}

// loadConfig reads the environment and applies command line overrides.
func loadConfig(ctx *cli.Context) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if url := ctx.String(rpcFlag.Name); url != "" {
		cfg.RPCURL = url
	}
	if path := ctx.String(keystoreFlag.Name); path != "" {
		cfg.Keystore = path
	}
	if password := ctx.String(passwordFlag.Name); password != "" {
		cfg.KeystorePassword = password
	}
	if key := ctx.String(privateKeyFlag.Name); key != "" {
		cfg.PrivateKey = key
	}
	if cfg.RPCURL == "" {
		return config{}, fmt.Errorf("no node URL configured, use --%s or RPC_URL", rpcFlag.Name)
	}
	return cfg, nil
}

// signerFromConfig loads the signing account selected by the configuration,
// preferring an explicit private key over a keystore file. It returns nil if
// neither is configured; read-only commands work without a signer.
func signerFromConfig(ctx *cli.Context, cfg config) (*account.NamedAccount, error) {
	name := ctx.String(nameFlag.Name)
	if cfg.PrivateKey != "" {
		return account.FromPrivateKey(name, cfg.PrivateKey)
	}
	if cfg.Keystore != "" {
		keyjson, err := os.ReadFile(cfg.Keystore)
		if err != nil {
			return nil, fmt.Errorf("failed to read keystore file: %w", err)
		}
		return account.FromKeystore(name, keyjson, cfg.KeystorePassword)
	}
	return nil, nil
}

// connect dials the configured node and registers the configured signer.
func connect(ctx *cli.Context) (*arkiv.Client, error) {
	return connectURL(ctx, func(cfg config) string { return cfg.RPCURL })
}

// connectWS dials the WebSocket endpoint if one is configured, falling back
// to the regular node URL. Event subscriptions need a WebSocket transport.
func connectWS(ctx *cli.Context) (*arkiv.Client, error) {
	return connectURL(ctx, func(cfg config) string {
		if cfg.WSURL != "" {
			return cfg.WSURL
		}
		return cfg.RPCURL
	})
}

func connectURL(ctx *cli.Context, pick func(config) string) (*arkiv.Client, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	signer, err := signerFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if signer != nil {
		return arkiv.Dial(ctx.Context, pick(cfg), signer)
	}
	return arkiv.Dial(ctx.Context, pick(cfg))
}
