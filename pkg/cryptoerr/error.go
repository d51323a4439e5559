// Package cryptoerr defines the error kinds shared by the pkcrypt packages.
//
// Every failure surfaced by the toolkit is an Error whose Err field is one of
// the ErrorKind constants below, so callers can branch on the kind with
// errors.Is and still get a human-readable description:
//
//	root, err := gen.PrimitiveRoot(p)
//	if errors.Is(err, cryptoerr.ErrNoRootFound) {
//		// pick another prime and try again
//	}
package cryptoerr

import "fmt"

// ErrorKind identifies a kind of error.  It has full support for errors.Is
// and errors.As, so the caller can directly check against an error kind when
// determining the reason for an error.
type ErrorKind string

// These constants are used to identify a specific Error.
const (
	// ErrValidationFailed is returned when a point supplied to or derived by
	// a group operation does not satisfy its curve equation.
	ErrValidationFailed = ErrorKind("ErrValidationFailed")

	// ErrNoRootFound is returned when the primitive-root search exhausts its
	// candidates without finding a generator.
	ErrNoRootFound = ErrorKind("ErrNoRootFound")

	// ErrExhaustedRetries is returned when a bounded retry loop (prime search,
	// nonce resampling, factorisation) runs out of attempts.
	ErrExhaustedRetries = ErrorKind("ErrExhaustedRetries")

	// ErrNotInvertible is returned when a modular inverse is requested for a
	// value that is not coprime to the modulus.
	ErrNotInvertible = ErrorKind("ErrNotInvertible")

	// ErrInvalidParameter is returned when an input is outside the domain of
	// the operation.
	ErrInvalidParameter = ErrorKind("ErrInvalidParameter")

	// ErrInvalidEncoding is returned when hex or point encodings are malformed.
	ErrInvalidEncoding = ErrorKind("ErrInvalidEncoding")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

// Error identifies an error related to a cryptographic operation.  It has
// full support for errors.Is and errors.As, so the caller can ascertain the
// specific reason for the error by checking the underlying error.
type Error struct {
	Err         error
	Description string
}

// Error satisfies the error interface and prints human-readable errors.
func (e Error) Error() string {
	return e.Description
}

// Unwrap returns the underlying wrapped error.
func (e Error) Unwrap() error {
	return e.Err
}

// New creates an Error given a kind and a description.
func New(kind ErrorKind, desc string) Error {
	return Error{Err: kind, Description: desc}
}

// Newf creates an Error given a kind and a format specifier.
func Newf(kind ErrorKind, format string, args ...any) Error {
	return Error{Err: kind, Description: fmt.Sprintf(format, args...)}
}
