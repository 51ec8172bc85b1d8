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

	"github.com/urfave/cli/v2"
)

// Run using
//  go run ./cmd/arkiv <command> <flags>

func main() {
	app := &cli.App{
		Name:  "arkiv",
		Usage: "Arkiv entity storage toolbox",
		Commands: []*cli.Command{
			&AccountCreate,
			&AccountImport,
			&AccountShow,
			&EntityCreate,
			&EntityGet,
			&EntityUpdate,
			&EntityDelete,
			&EntityExtend,
			&EntityExists,
			&EntityQuery,
			&EntityCount,
			&EntityKeys,
			&EntityWatch,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
