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

	"github.com/arkiv-network/arkiv-go/account"
)

// AccountCreate generates a fresh signing account and stores it as an
// encrypted keystore file.
var AccountCreate = cli.Command{
	Name:      "account-create",
	Usage:     "generates a new account and writes it to a keystore file",
	ArgsUsage: "<keystore-file>",
	Flags: []cli.Flag{
		&nameFlag,
		&passwordFlag,
	},
	Action: accountCreate,
}

// AccountImport converts an existing private key or mnemonic into an
// encrypted keystore file.
var AccountImport = cli.Command{
	Name:      "account-import",
	Usage:     "imports a private key or mnemonic into a keystore file",
	ArgsUsage: "<keystore-file>",
	Flags: []cli.Flag{
		&nameFlag,
		&passwordFlag,
		&privateKeyFlag,
		&mnemonicFlag,
		&derivationPathFlag,
	},
	Action: accountImport,
}

// AccountShow prints the address of the configured signing account.
var AccountShow = cli.Command{
	Name:  "account-show",
	Usage: "prints the configured signing account",
	Flags: []cli.Flag{
		&nameFlag,
		&keystoreFlag,
		&passwordFlag,
		&privateKeyFlag,
	},
	Action: accountShow,
}

func accountCreate(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("missing keystore file parameter")
	}
	path := ctx.Args().First()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("keystore file %s already exists", path)
	}

	acc, err := account.New(ctx.String(nameFlag.Name))
	if err != nil {
		return err
	}
	keyjson, err := acc.ExportKeystore(ctx.String(passwordFlag.Name))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, keyjson, 0600); err != nil {
		return fmt.Errorf("failed to write keystore file: %w", err)
	}

	fmt.Printf("created account %s\n", acc)
	fmt.Printf("keystore written to %s\n", path)
	return nil
}

func accountImport(ctx *cli.Context) error {
	if ctx.Args().Len() != 1 {
		return fmt.Errorf("missing keystore file parameter")
	}
	path := ctx.Args().First()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("keystore file %s already exists", path)
	}

	acc, err := importedAccount(ctx)
	if err != nil {
		return err
	}
	keyjson, err := acc.ExportKeystore(ctx.String(passwordFlag.Name))
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, keyjson, 0600); err != nil {
		return fmt.Errorf("failed to write keystore file: %w", err)
	}

	fmt.Printf("imported account %s\n", acc)
	fmt.Printf("keystore written to %s\n", path)
	return nil
}

// importedAccount builds the account to import, preferring an explicit
// private key over a mnemonic.
func importedAccount(ctx *cli.Context) (*account.NamedAccount, error) {
	name := ctx.String(nameFlag.Name)
	if key := ctx.String(privateKeyFlag.Name); key != "" {
		return account.FromPrivateKey(name, key)
	}
	if mnemonic := ctx.String(mnemonicFlag.Name); mnemonic != "" {
		return account.FromMnemonic(name, mnemonic, "", ctx.String(derivationPathFlag.Name))
	}
	return nil, fmt.Errorf("no key to import, use --%s or --%s",
		privateKeyFlag.Name, mnemonicFlag.Name)
}

func accountShow(ctx *cli.Context) error {
	// The RPC URL is not needed here, so this bypasses loadConfig's URL
	// check and only merges the key settings.
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	if key := ctx.String(privateKeyFlag.Name); key != "" {
		cfg.PrivateKey = key
	}
	if path := ctx.String(keystoreFlag.Name); path != "" {
		cfg.Keystore = path
	}
	if password := ctx.String(passwordFlag.Name); password != "" {
		cfg.KeystorePassword = password
	}

	signer, err := signerFromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	if signer == nil {
		return fmt.Errorf("no signing key configured, use --%s or --%s",
			privateKeyFlag.Name, keystoreFlag.Name)
	}
	fmt.Println(signer)
	return nil
}
