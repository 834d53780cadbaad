package llm

import (
	"errors"
	"strings"
	"testing"
	"time"
)

const validObjectResponse = `{
  "transactions": [
    {
      "transaction_date": "2024-01-15",
      "transaction_detail": "Grocery store",
      "amount": "-42.50",
      "currency": "EUR",
      "category": "Food & Dining",
      "service_subscription": null,
      "receiver_name": "REWE Markt"
    }
  ]
}`

func TestCleanModelJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "already clean",
			raw:  `{"transactions": []}`,
			want: `{"transactions": []}`,
		},
		{
			name: "json fence",
			raw:  "```json\n{\"transactions\": []}\n```",
			want: `{"transactions": []}`,
		},
		{
			name: "bare fence",
			raw:  "```\n[{\"a\": 1}]\n```",
			want: `[{"a": 1}]`,
		},
		{
			name: "prose around object",
			raw:  "Here is the result:\n{\"transactions\": []}\nLet me know if you need more.",
			want: `{"transactions": []}`,
		},
		{
			name: "prose around array",
			raw:  "Sure! [1, 2, 3] is the answer.",
			want: `[1, 2, 3]`,
		},
		{
			name: "no json at all",
			raw:  "I could not find any transactions.",
			want: "I could not find any transactions.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanModelJSON(tt.raw); got != tt.want {
				t.Errorf("cleanModelJSON(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeResponseWrapsBareArray(t *testing.T) {
	got, err := normalizeResponse(`[{"transaction_date": "2024-01-15"}]`)
	if err != nil {
		t.Fatalf("normalizeResponse: %v", err)
	}
	if !strings.HasPrefix(string(got), `{"transactions":`) {
		t.Errorf("expected wrapped form, got %s", got)
	}
}

func TestNormalizeResponseRejectsScalar(t *testing.T) {
	if _, err := normalizeResponse(`"just a string"`); err == nil {
		t.Fatal("expected error for scalar top-level value")
	}
}

func TestDecodeHistoryValid(t *testing.T) {
	history, err := decodeHistory("gemini", validObjectResponse)
	if err != nil {
		t.Fatalf("decodeHistory: %v", err)
	}
	if len(history.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(history.Transactions))
	}
	entry := history.Transactions[0]
	want := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	if !entry.TransactionDate.Equal(want) {
		t.Errorf("date = %v, want %v", entry.TransactionDate, want)
	}
	if entry.Category != "Food & Dining" {
		t.Errorf("category = %q", entry.Category)
	}
	if entry.ServiceSubscription != nil {
		t.Errorf("expected nil subscription, got %q", *entry.ServiceSubscription)
	}
	if entry.ReceiverName == nil || *entry.ReceiverName != "REWE Markt" {
		t.Errorf("unexpected receiver %v", entry.ReceiverName)
	}
}

func TestDecodeHistoryBareArray(t *testing.T) {
	raw := `[{"transaction_date": "2024-01-15", "transaction_detail": "Coffee", "amount": "-3.20", "currency": "EUR", "category": "Food & Dining"}]`
	history, err := decodeHistory("openai", raw)
	if err != nil {
		t.Fatalf("decodeHistory: %v", err)
	}
	if len(history.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(history.Transactions))
	}
}

func TestDecodeHistoryRejectsBadCategory(t *testing.T) {
	raw := `{"transactions": [{"transaction_date": "2024-01-15", "transaction_detail": "Coffee", "amount": "-3.20", "currency": "EUR", "category": "Snacks"}]}`
	_, err := decodeHistory("gemini", raw)
	if err == nil {
		t.Fatal("expected schema failure for unknown category")
	}
	var infErr *InferenceError
	if !errors.As(err, &infErr) {
		t.Fatalf("expected *InferenceError, got %T", err)
	}
	if infErr.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", infErr.Provider)
	}
}

func TestDecodeHistoryRejectsMissingRequiredField(t *testing.T) {
	raw := `{"transactions": [{"transaction_detail": "Coffee", "amount": "-3.20", "currency": "EUR", "category": "Food & Dining"}]}`
	if _, err := decodeHistory("gemini", raw); err == nil {
		t.Fatal("expected schema failure for missing transaction_date")
	}
}

func TestDecodeHistoryEmptyResponse(t *testing.T) {
	var infErr *InferenceError
	_, err := decodeHistory("openai", "   ")
	if !errors.As(err, &infErr) {
		t.Fatalf("expected *InferenceError, got %v", err)
	}
}
