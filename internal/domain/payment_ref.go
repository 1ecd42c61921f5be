package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedCustom = errors.New("malformed custom field")

// PaymentRef is the payment context carried through PayPal's "custom"
// parameter as "<userid>-<courseid>-<instanceid>".
type PaymentRef struct {
	UserID     int64
	CourseID   int64
	InstanceID int64
}

func (r PaymentRef) Encode() string {
	return fmt.Sprintf("%d-%d-%d", r.UserID, r.CourseID, r.InstanceID)
}

// ParsePaymentRef requires exactly three positive integers.
func ParsePaymentRef(custom string) (PaymentRef, error) {
	parts := strings.Split(strings.TrimSpace(custom), "-")
	if len(parts) != 3 {
		return PaymentRef{}, fmt.Errorf("%w: %q has %d parts", ErrMalformedCustom, custom, len(parts))
	}
	ids := make([]int64, 3)
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil || id <= 0 {
			return PaymentRef{}, fmt.Errorf("%w: %q", ErrMalformedCustom, custom)
		}
		ids[i] = id
	}
	return PaymentRef{UserID: ids[0], CourseID: ids[1], InstanceID: ids[2]}, nil
}
