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
	"errors"
	"strings"
)

var (
	// ErrNoSigner is returned when a storage transaction is submitted
	// without a signing account configured on the client.
	ErrNoSigner = errors.New("no signing account configured")

	// ErrAccountNotFound is returned when switching to an account name that
	// has not been registered.
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionFailed is returned when a storage transaction was mined
	// but reverted.
	ErrTransactionFailed = errors.New("storage transaction failed")

	// ErrEmptyQuery is returned when an entity query renders as the empty
	// string, for example a zero-operand query.And().
	ErrEmptyQuery = errors.New("empty query expression")
)

// isNotFound reports whether an RPC error indicates a missing entity. The
// node reports missing entities as plain errors rather than null results, so
// matching on the message is the only option available to clients.
func isNotFound(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "not found")
}
