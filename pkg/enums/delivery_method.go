package enums

import "fmt"

// DeliveryMethod maps to the delivery_method enum in Postgres. Only push
// deliveries consume clinic credits; other channels bypass the ledger.
type DeliveryMethod string

const (
	DeliveryMethodPush  DeliveryMethod = "push"
	DeliveryMethodSMS   DeliveryMethod = "sms"
	DeliveryMethodEmail DeliveryMethod = "email"
)

var validDeliveryMethods = []DeliveryMethod{
	DeliveryMethodPush,
	DeliveryMethodSMS,
	DeliveryMethodEmail,
}

// String implements fmt.Stringer.
func (d DeliveryMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryMethod.
func (d DeliveryMethod) IsValid() bool {
	for _, candidate := range validDeliveryMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDeliveryMethod converts raw input into a DeliveryMethod.
func ParseDeliveryMethod(value string) (DeliveryMethod, error) {
	for _, candidate := range validDeliveryMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery method %q", value)
}
