package waitlist

import "errors"

var (
	// ErrDuplicateEmail is returned by the store when the unique email
	// index rejects a create.
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrAlreadySubscribed is returned when the email belongs to a
	// confirmed subscription.
	ErrAlreadySubscribed = errors.New("email already subscribed and confirmed")

	// ErrEmailDelivery is returned when the opt-in email could not be sent.
	ErrEmailDelivery = errors.New("confirmation email delivery failed")

	// ErrMissingToken is returned when a confirm request carries no token.
	ErrMissingToken = errors.New("missing confirmation token")

	// ErrInvalidToken is returned for unknown, replaced, or already
	// redeemed tokens.
	ErrInvalidToken = errors.New("invalid confirmation token")
)
