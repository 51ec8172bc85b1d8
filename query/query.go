// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package query builds annotation query expressions for the entity search
// RPC. Expressions compare annotation keys against string or numeric values
// and can be combined with && and ||, for example:
//
//	query.And(query.Eq("type", "Greeting"), query.EqNum("version", 1))
//
// renders as
//
//	type = "Greeting" && version = 1
package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Expr is a query expression that renders itself into the node's query
// language.
type Expr interface {
	fmt.Stringer
}

type comparison struct {
	key   string
	value string // already rendered
}

func (c comparison) String() string {
	return c.key + " = " + c.value
}

// Eq matches entities whose string annotation key equals value.
func Eq(key, value string) Expr {
	return comparison{key: key, value: quote(value)}
}

// EqNum matches entities whose numeric annotation key equals value.
func EqNum(key string, value uint64) Expr {
	return comparison{key: key, value: strconv.FormatUint(value, 10)}
}

// Owner matches entities owned by the given address.
func Owner(address common.Address) Expr {
	return comparison{key: "$owner", value: quote(address.Hex())}
}

type junction struct {
	operator string
	parts    []Expr
}

func (j junction) String() string {
	if len(j.parts) == 1 {
		return j.parts[0].String()
	}
	rendered := make([]string, len(j.parts))
	for i, part := range j.parts {
		// Nested junctions need parentheses to preserve precedence.
		if nested, ok := part.(junction); ok && len(nested.parts) > 1 {
			rendered[i] = "(" + nested.String() + ")"
		} else {
			rendered[i] = part.String()
		}
	}
	return strings.Join(rendered, " "+j.operator+" ")
}

// And combines expressions so that all of them must match. At least one
// expression must be given: a zero-operand junction renders as the empty
// string, which the search RPC rejects.
func And(parts ...Expr) Expr {
	return junction{operator: "&&", parts: parts}
}

// Or combines expressions so that at least one of them must match. At least
// one expression must be given: a zero-operand junction renders as the empty
// string, which the search RPC rejects.
func Or(parts ...Expr) Expr {
	return junction{operator: "||", parts: parts}
}

// quote renders a string literal with backslash escapes for quotes and
// backslashes.
func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `"` + escaped + `"`
}
