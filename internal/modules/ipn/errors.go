package ipn

import "errors"

var (
	ErrMalformedRequest        = errors.New("malformed ipn request")
	ErrUnknownUser             = errors.New("not a valid user id")
	ErrUnknownCourse           = errors.New("not a valid course id")
	ErrUnknownInstance         = errors.New("not a valid instance id")
	ErrVerificationUnavailable = errors.New("could not access paypal to verify payment")
	ErrUnexpectedVerification  = errors.New("unexpected verification response")
	ErrCurrencyMismatch        = errors.New("currency does not match")
	ErrStatusNotAccepted       = errors.New("payment status not accepted")
	ErrDuplicateTransaction    = errors.New("transaction is being repeated")
	ErrBusinessMismatch        = errors.New("business email does not match")
	ErrInsufficientAmount      = errors.New("amount paid is not enough")
	ErrInvalidNotification     = errors.New("paypal reported the notification invalid")
)
