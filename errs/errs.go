// Package errs defines the structured error type shared across the wallet
// engine. It follows the Op/Kind/Err triple used by
// decred.org/dcrwallet/v2/errors (imported by the teacher's signer code as
// `decred.org/dcrwallet/v2/errors`), but adds the stable numeric codes and
// shortfall payload this wallet's SDK boundary requires.
package errs

import (
	"errors"
	"fmt"
)

// Kind enumerates the error categories the wallet surfaces across its SDK
// boundary.
type Kind int

const (
	// KindOther is the zero value; it should never be used deliberately.
	KindOther Kind = iota

	// KindInvalidArgument marks a malformed input caught at a boundary.
	KindInvalidArgument

	// KindInvalidAsset marks an unrecognized assetID.
	KindInvalidAsset

	// KindCreateTransaction marks a failed transaction composition.
	KindCreateTransaction

	// KindInsufficientBalance marks exhausted candidate UTXOs.
	KindInsufficientBalance

	// KindSign marks a missing signer or wrong password.
	KindSign

	// KindWalletNotContainTx marks a bootstrap mismatch between stored
	// transactions and the account's known public keys.
	KindWalletNotContainTx

	// KindJSONArrayError marks malformed SDK input.
	KindJSONArrayError

	// KindPathNotExist marks a missing filesystem path.
	KindPathNotExist
)

// Code returns the stable numeric code associated with k, as required by
// the SDK boundary (spec §7).
func (k Kind) Code() int {
	switch k {
	case KindInvalidArgument:
		return 20001
	case KindInvalidAsset:
		return 20002
	case KindCreateTransaction:
		return 20003
	case KindInsufficientBalance:
		return 20004
	case KindSign:
		return 20005
	case KindWalletNotContainTx:
		return 20006
	case KindJSONArrayError:
		return 20007
	case KindPathNotExist:
		return 20008
	default:
		return 20000
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindInvalidAsset:
		return "InvalidAsset"
	case KindCreateTransaction:
		return "CreateTransaction"
	case KindInsufficientBalance:
		return "InsufficientBalance"
	case KindSign:
		return "Sign"
	case KindWalletNotContainTx:
		return "WalletNotContainTx"
	case KindJSONArrayError:
		return "JsonArrayError"
	case KindPathNotExist:
		return "PathNotExist"
	default:
		return "Other"
	}
}

// Error is the structured error value returned across package boundaries.
// Op names the failing operation, Kind classifies the failure, Err carries
// the underlying cause (which may itself be an *Error, forming a chain),
// and Shortfall carries the decimal shortfall amount for
// KindInsufficientBalance.
type Error struct {
	Op        string
	Kind      Kind
	Err       error
	Shortfall string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Shortfall != "" {
		return fmt.Sprintf("%s: %s (need %s more)", e.Op, e.Kind, e.Shortfall)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

// Unwrap supports errors.Is/errors.As chaining through Err.
func (e *Error) Unwrap() error {
	return e.Err
}

// E builds an *Error from a mix of string (Op), Kind, and error arguments,
// mirroring the ergonomics of decred.org/dcrwallet/v2/errors.E.
func E(args ...interface{}) error {
	e := &Error{}
	for _, arg := range args {
		switch v := arg.(type) {
		case string:
			e.Op = v
		case Kind:
			e.Kind = v
		case error:
			e.Err = v
		}
	}
	return e
}

// WithShortfall attaches a decimal shortfall string to an
// KindInsufficientBalance error and returns it.
func WithShortfall(op string, shortfall string) error {
	return &Error{Op: op, Kind: KindInsufficientBalance, Shortfall: shortfall}
}

// Match reports whether err is an *Error of the given Kind.
func Match(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
