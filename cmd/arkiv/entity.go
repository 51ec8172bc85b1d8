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
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"

	arkiv "github.com/arkiv-network/arkiv-go"
	"github.com/arkiv-network/arkiv-go/entity"
)

var (
	payloadFlag = cli.StringFlag{
		Name:  "payload",
		Usage: "payload of the entity",
	}
	payloadFileFlag = cli.StringFlag{
		Name:  "payload-file",
		Usage: "file to read the entity payload from, overrides --payload",
	}
	annotationFlag = cli.StringSliceFlag{
		Name:  "annotation",
		Usage: "annotation in key=value form; all-digit values are numeric",
	}
	btlFlag = cli.Uint64Flag{
		Name:  "btl",
		Usage: "number of blocks the entity lives for",
		Value: 0,
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Usage: "restrict the key listing to entities of this address",
	}
)

var connectionFlags = []cli.Flag{
	&rpcFlag,
	&keystoreFlag,
	&passwordFlag,
	&privateKeyFlag,
	&nameFlag,
}

// EntityCreate creates a new entity on the network.
var EntityCreate = cli.Command{
	Name:  "entity-create",
	Usage: "creates an entity and prints its assigned key",
	Flags: append([]cli.Flag{&payloadFlag, &payloadFileFlag, &annotationFlag, &btlFlag}, connectionFlags...),
	Action: func(ctx *cli.Context) error {
		client, err := connect(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		payload, err := payloadFromFlags(ctx)
		if err != nil {
			return err
		}
		annotations, err := annotationsFromFlags(ctx)
		if err != nil {
			return err
		}

		key, txHash, err := client.CreateEntity(ctx.Context, payload, annotations, ctx.Uint64(btlFlag.Name))
		if err != nil {
			return err
		}
		fmt.Printf("entity key: %s\n", key)
		fmt.Printf("transaction: %s\n", txHash)
		return nil
	},
}

// EntityGet fetches and prints an entity.
var EntityGet = cli.Command{
	Name:      "entity-get",
	Usage:     "fetches an entity by key",
	ArgsUsage: "<entity-key>",
	Flags:     connectionFlags,
	Action: func(ctx *cli.Context) error {
		client, key, err := connectWithKey(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		record, err := client.GetEntity(ctx.Context, key)
		if err != nil {
			return err
		}
		fmt.Printf("key:         %s\n", record.Key)
		fmt.Printf("owner:       %s\n", record.MetaData.Owner)
		fmt.Printf("expires at:  block %d\n", record.MetaData.ExpiresAtBlock)
		fmt.Printf("payload:     %q\n", record.Payload)
		for key, value := range record.Annotations {
			fmt.Printf("annotation:  %s = %v\n", key, value)
		}
		return nil
	},
}

// EntityUpdate replaces the payload and annotations of an entity.
var EntityUpdate = cli.Command{
	Name:      "entity-update",
	Usage:     "updates an entity's payload, annotations, and lifetime",
	ArgsUsage: "<entity-key>",
	Flags:     append([]cli.Flag{&payloadFlag, &payloadFileFlag, &annotationFlag, &btlFlag}, connectionFlags...),
	Action: func(ctx *cli.Context) error {
		client, key, err := connectWithKey(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		payload, err := payloadFromFlags(ctx)
		if err != nil {
			return err
		}
		annotations, err := annotationsFromFlags(ctx)
		if err != nil {
			return err
		}

		txHash, err := client.UpdateEntity(ctx.Context, key, payload, annotations, ctx.Uint64(btlFlag.Name))
		if err != nil {
			return err
		}
		fmt.Printf("transaction: %s\n", txHash)
		return nil
	},
}

// EntityDelete removes an entity.
var EntityDelete = cli.Command{
	Name:      "entity-delete",
	Usage:     "deletes an entity by key",
	ArgsUsage: "<entity-key>",
	Flags:     connectionFlags,
	Action: func(ctx *cli.Context) error {
		client, key, err := connectWithKey(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		txHash, err := client.DeleteEntity(ctx.Context, key)
		if err != nil {
			return err
		}
		fmt.Printf("transaction: %s\n", txHash)
		return nil
	},
}

// EntityExtend prolongs the lifetime of an entity.
var EntityExtend = cli.Command{
	Name:      "entity-extend",
	Usage:     "extends the lifetime of an entity",
	ArgsUsage: "<entity-key>",
	Flags:     append([]cli.Flag{&btlFlag}, connectionFlags...),
	Action: func(ctx *cli.Context) error {
		client, key, err := connectWithKey(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		expiresAt, txHash, err := client.ExtendEntity(ctx.Context, key, ctx.Uint64(btlFlag.Name))
		if err != nil {
			return err
		}
		fmt.Printf("new expiration: block %d\n", expiresAt)
		fmt.Printf("transaction: %s\n", txHash)
		return nil
	},
}

// EntityExists checks whether an entity is active.
var EntityExists = cli.Command{
	Name:      "entity-exists",
	Usage:     "checks whether an entity exists",
	ArgsUsage: "<entity-key>",
	Flags:     connectionFlags,
	Action: func(ctx *cli.Context) error {
		client, key, err := connectWithKey(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		exists, err := client.Exists(ctx.Context, key)
		if err != nil {
			return err
		}
		fmt.Println(exists)
		return nil
	},
}

// EntityQuery searches entities by annotation query.
var EntityQuery = cli.Command{
	Name:      "entity-query",
	Usage:     "searches entities with an annotation query",
	ArgsUsage: `<query, e.g. 'type = "Greeting" && version = 1'>`,
	Flags:     connectionFlags,
	Action: func(ctx *cli.Context) error {
		if ctx.Args().Len() != 1 {
			return fmt.Errorf("missing query parameter")
		}
		client, err := connect(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		results, err := client.QueryEntitiesRaw(ctx.Context, ctx.Args().First())
		if err != nil {
			return err
		}
		for _, result := range results {
			fmt.Printf("%s %q\n", result.Key, result.Payload)
		}
		fmt.Printf("%d entities matched\n", len(results))
		return nil
	},
}

// EntityCount prints the total number of active entities.
var EntityCount = cli.Command{
	Name:  "entity-count",
	Usage: "prints the number of active entities",
	Flags: connectionFlags,
	Action: func(ctx *cli.Context) error {
		client, err := connect(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		count, err := client.GetEntityCount(ctx.Context)
		if err != nil {
			return err
		}
		fmt.Println(count)
		return nil
	},
}

// EntityKeys lists entity keys, optionally restricted to one owner.
var EntityKeys = cli.Command{
	Name:  "entity-keys",
	Usage: "lists entity keys, all or per owner",
	Flags: append([]cli.Flag{&ownerFlag}, connectionFlags...),
	Action: func(ctx *cli.Context) error {
		client, err := connect(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		var keys []entity.Key
		if owner := ctx.String(ownerFlag.Name); owner != "" {
			if !common.IsHexAddress(owner) {
				return fmt.Errorf("invalid owner address %q", owner)
			}
			keys, err = client.GetEntitiesOfOwner(ctx.Context, common.HexToAddress(owner))
		} else {
			keys, err = client.GetAllEntityKeys(ctx.Context)
		}
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

// EntityWatch streams entity lifecycle events; requires a WebSocket node
// URL.
var EntityWatch = cli.Command{
	Name:  "entity-watch",
	Usage: "streams entity events until interrupted",
	Flags: connectionFlags,
	Action: func(ctx *cli.Context) error {
		client, err := connectWS(ctx)
		if err != nil {
			return err
		}
		defer client.Close()

		events := make(chan arkiv.Event, 16)
		sub, err := client.WatchEntities(ctx.Context, events)
		if err != nil {
			return err
		}
		defer sub.Unsubscribe()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

		for {
			select {
			case event := <-events:
				switch event.Kind {
				case arkiv.EntityExtended:
					fmt.Printf("%s %s expires at block %d (was %d)\n",
						event.Kind, event.Key, event.NewExpiresAtBlock, event.OldExpiresAtBlock)
				case arkiv.EntityDeleted:
					fmt.Printf("%s %s\n", event.Kind, event.Key)
				default:
					fmt.Printf("%s %s expires at block %d\n", event.Kind, event.Key, event.ExpiresAtBlock)
				}
			case err := <-sub.Err():
				return err
			case <-interrupt:
				return nil
			}
		}
	},
}

// connectWithKey parses the entity key argument and dials the node.
func connectWithKey(ctx *cli.Context) (*arkiv.Client, entity.Key, error) {
	if ctx.Args().Len() != 1 {
		return nil, entity.Key{}, fmt.Errorf("missing entity key parameter")
	}
	key, err := entity.KeyFromHex(ctx.Args().First())
	if err != nil {
		return nil, entity.Key{}, err
	}
	client, err := connect(ctx)
	if err != nil {
		return nil, entity.Key{}, err
	}
	return client, key, nil
}

// payloadFromFlags resolves the entity payload from the command line.
func payloadFromFlags(ctx *cli.Context) ([]byte, error) {
	if path := ctx.String(payloadFileFlag.Name); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return data, nil
	}
	return []byte(ctx.String(payloadFlag.Name)), nil
}

// annotationsFromFlags parses repeated key=value annotation flags. Values
// consisting only of digits are treated as numeric annotations.
func annotationsFromFlags(ctx *cli.Context) (entity.Annotations, error) {
	annotations := entity.Annotations{}
	for _, raw := range ctx.StringSlice(annotationFlag.Name) {
		key, value, found := strings.Cut(raw, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid annotation %q, expected key=value", raw)
		}
		if number, err := strconv.ParseUint(value, 10, 64); err == nil {
			annotations[key] = number
		} else {
			annotations[key] = value
		}
	}
	return annotations, nil
}
