package domain

import "errors"

var (
	// ErrNonPositiveAmount is returned when a ledger entry would be created
	// with a zero or negative amount.
	ErrNonPositiveAmount = errors.New("transaction amount must be positive")

	// ErrNotRefundable is returned when an entry cannot be reversed, e.g. a
	// deposit with no paying party.
	ErrNotRefundable = errors.New("transaction has no payer to refund to")
)
