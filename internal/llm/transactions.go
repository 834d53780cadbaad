package llm

import (
	"encoding/json"
	"fmt"
	"time"
)

// Categories is the closed set of transaction classification labels.
// The model is constrained to this list in the request schema and every
// response is checked against it again before leaving this package.
var Categories = []string{
	"Income",
	"Housing",
	"Transportation",
	"Food & Dining",
	"Personal Care & Health",
	"Entertainment & Lifestyle",
	"Education & Development",
	"Debt & Loans",
	"Children/Dependents",
	"Miscellaneous/Other",
}

// TransactionEntry is one inferred financial transaction.
// Amount stays a string on purpose: it preserves the statement's original
// formatting and precision instead of coercing locale-formatted monetary
// text into a float.
type TransactionEntry struct {
	TransactionDate     time.Time `json:"transaction_date"`
	TransactionDetail   string    `json:"transaction_detail"`
	Amount              string    `json:"amount"`
	Currency            string    `json:"currency"`
	Category            string    `json:"category"`
	ServiceSubscription *string   `json:"service_subscription,omitempty"`
	ReceiverName        *string   `json:"receiver_name,omitempty"`
}

// TransactionHistory is the ordered output of one inference call.
// Order is whatever the model produced; callers must not assume the
// entries are date-sorted.
type TransactionHistory struct {
	Transactions []TransactionEntry `json:"transactions"`
}

// dateLayouts are the timestamp shapes models actually produce for
// transaction_date, most specific first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts the date formats models return (ISO date or full
// timestamp) instead of requiring strict RFC3339.
func (e *TransactionEntry) UnmarshalJSON(data []byte) error {
	type alias TransactionEntry
	aux := struct {
		TransactionDate string `json:"transaction_date"`
		*alias
	}{alias: (*alias)(e)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	parsed, err := ParseTransactionDate(aux.TransactionDate)
	if err != nil {
		return err
	}
	e.TransactionDate = parsed
	return nil
}

// ParseTransactionDate parses a model-produced date string.
func ParseTransactionDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable transaction_date %q", s)
}

// ValidCategory reports whether name is a member of the closed category set.
func ValidCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}

// Validate checks the invariants that must hold for a persisted entry.
func (e *TransactionEntry) Validate() error {
	if e.TransactionDate.IsZero() {
		return fmt.Errorf("transaction entry: missing transaction_date")
	}
	if e.TransactionDetail == "" {
		return fmt.Errorf("transaction entry: missing transaction_detail")
	}
	if e.Amount == "" {
		return fmt.Errorf("transaction entry: missing amount")
	}
	if e.Currency == "" {
		return fmt.Errorf("transaction entry: missing currency")
	}
	if !ValidCategory(e.Category) {
		return fmt.Errorf("transaction entry: category %q is not in the allowed set %v", e.Category, Categories)
	}
	return nil
}
