// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package query

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestEq_RendersQuotedStringComparison(t *testing.T) {
	require.Equal(t, `type = "Greeting"`, Eq("type", "Greeting").String())
}

func TestEq_EscapesQuotesAndBackslashes(t *testing.T) {
	require.Equal(t, `note = "say \"hi\""`, Eq("note", `say "hi"`).String())
	require.Equal(t, `path = "a\\b"`, Eq("path", `a\b`).String())
}

func TestEqNum_RendersUnquotedNumber(t *testing.T) {
	require.Equal(t, "version = 1", EqNum("version", 1).String())
	require.Equal(t, "count = 0", EqNum("count", 0).String())
}

func TestOwner_RendersOwnerComparison(t *testing.T) {
	address := common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	require.Equal(t, `$owner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"`, Owner(address).String())
}

func TestAnd_JoinsComparisons(t *testing.T) {
	expr := And(Eq("type", "Greeting"), EqNum("version", 1))
	require.Equal(t, `type = "Greeting" && version = 1`, expr.String())
}

func TestOr_JoinsComparisons(t *testing.T) {
	expr := Or(EqNum("version", 1), EqNum("version", 2))
	require.Equal(t, "version = 1 || version = 2", expr.String())
}

func TestJunctions_NestedExpressionsAreParenthesized(t *testing.T) {
	expr := And(
		Eq("type", "Greeting"),
		Or(EqNum("version", 1), EqNum("version", 2)),
	)
	require.Equal(t, `type = "Greeting" && (version = 1 || version = 2)`, expr.String())
}

func TestJunctions_SingleOperandNeedsNoOperator(t *testing.T) {
	require.Equal(t, `type = "Greeting"`, And(Eq("type", "Greeting")).String())
	require.Equal(t, `type = "Greeting"`, Or(Eq("type", "Greeting")).String())
}

func TestJunctions_ZeroOperandsRenderEmpty(t *testing.T) {
	require.Empty(t, And().String())
	require.Empty(t, Or().String())
}
