package enums

import "fmt"

// CreditEventType maps to the credit_event_type enum in Postgres.
type CreditEventType string

const (
	CreditEventTypeDebit  CreditEventType = "debit"
	CreditEventTypeRefund CreditEventType = "refund"
	CreditEventTypeTopUp  CreditEventType = "top_up"
)

var validCreditEventTypes = []CreditEventType{
	CreditEventTypeDebit,
	CreditEventTypeRefund,
	CreditEventTypeTopUp,
}

// IsValid reports whether the value matches the canonical credit event enum.
func (t CreditEventType) IsValid() bool {
	for _, candidate := range validCreditEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseCreditEventType converts raw input into CreditEventType.
func ParseCreditEventType(value string) (CreditEventType, error) {
	for _, candidate := range validCreditEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid credit event type %q", value)
}
