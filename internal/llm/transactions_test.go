package llm

import (
	"testing"
	"time"
)

func TestParseTransactionDate(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseTransactionDate(tt.input)
		if err != nil {
			t.Errorf("ParseTransactionDate(%q): %v", tt.input, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("ParseTransactionDate(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseTransactionDateRejectsGarbage(t *testing.T) {
	for _, input := range []string{"", "15/01/2024", "yesterday"} {
		if _, err := ParseTransactionDate(input); err == nil {
			t.Errorf("ParseTransactionDate(%q) should fail", input)
		}
	}
}

func TestValidCategory(t *testing.T) {
	for _, c := range Categories {
		if !ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = false", c)
		}
	}
	for _, c := range []string{"", "food & dining", "Snacks"} {
		if ValidCategory(c) {
			t.Errorf("ValidCategory(%q) = true", c)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := TransactionEntry{
		TransactionDate:   time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		TransactionDetail: "Coffee",
		Amount:            "-3.20",
		Currency:          "EUR",
		Category:          "Food & Dining",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid entry rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*TransactionEntry)
	}{
		{"zero date", func(e *TransactionEntry) { e.TransactionDate = time.Time{} }},
		{"empty detail", func(e *TransactionEntry) { e.TransactionDetail = "" }},
		{"empty amount", func(e *TransactionEntry) { e.Amount = "" }},
		{"empty currency", func(e *TransactionEntry) { e.Currency = "" }},
		{"bad category", func(e *TransactionEntry) { e.Category = "Snacks" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := valid
			tt.mutate(&entry)
			if err := entry.Validate(); err == nil {
				t.Error("expected validation failure")
			}
		})
	}
}
