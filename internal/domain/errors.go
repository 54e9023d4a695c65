package domain

import (
	"errors"
	"fmt"
)

// Kind classifies failures surfaced to API callers.
type Kind string

const (
	KindValidation        Kind = "ValidationError"
	KindCustomerNotFound  Kind = "CustomerNotFound"
	KindProductNotFound   Kind = "ProductNotFound"
	KindOrderNotFound     Kind = "OrderNotFound"
	KindInsufficientStock Kind = "InsufficientStock"
	KindInvalidTransition Kind = "InvalidTransition"
	KindStoreUnavailable  Kind = "StoreUnavailable"
)

type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func (e *Error) Error() string { return string(e.Kind) + ": " + e.Detail }

func (e *Error) Unwrap() error { return e.Err }

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Detail: fmt.Sprintf(format, args...)}
}

func CustomerNotFound(id string) error {
	return &Error{Kind: KindCustomerNotFound, Detail: id}
}

func ProductNotFound(id string) error {
	return &Error{Kind: KindProductNotFound, Detail: id}
}

func SizeNotFound(id, size string) error {
	return &Error{Kind: KindProductNotFound, Detail: id + " size " + size}
}

func OrderNotFound(id string) error {
	return &Error{Kind: KindOrderNotFound, Detail: id}
}

// InsufficientStock names the product (and size, if any) the request could not be met from.
func InsufficientStock(available, requested int, product, size string) error {
	what := product
	if size != "" {
		what += " size " + size
	}
	return &Error{
		Kind:   KindInsufficientStock,
		Detail: fmt.Sprintf("available %d, requested %d, for %s", available, requested, what),
	}
}

func InvalidTransition(from, to OrderStatus) error {
	return &Error{Kind: KindInvalidTransition, Detail: fmt.Sprintf("cannot move order from %s to %s", from, to)}
}

func StoreUnavailable(err error) error {
	return &Error{Kind: KindStoreUnavailable, Detail: "storage call failed", Err: err}
}

// KindOf returns the kind of a domain error, or "" for anything else.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
