package prompts

import (
	"errors"
	"strings"
	"testing"
)

func TestLoadAndGet(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	system, err := lib.Get("transaction_extraction")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !strings.Contains(system, "transactions") {
		t.Errorf("prompt should mention transactions, got %q", system)
	}
}

func TestGetUnknownListsAvailable(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = lib.Get("nonexistent_prompt")
	if err == nil {
		t.Fatal("expected error for unknown prompt")
	}

	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected *NotFoundError, got %T", err)
	}
	if nfErr.ID != "nonexistent_prompt" {
		t.Errorf("ID = %q", nfErr.ID)
	}
	if len(nfErr.Available) == 0 {
		t.Error("error should list available prompt ids")
	}
	if !strings.Contains(err.Error(), "transaction_extraction") {
		t.Errorf("message should name available prompts, got %v", err)
	}
}

func TestIDsSorted(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	ids := lib.IDs()
	if len(ids) < 2 {
		t.Fatalf("expected at least 2 prompts, got %v", ids)
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("ids not sorted: %v", ids)
		}
	}
}

func TestInfo(t *testing.T) {
	lib, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p, err := lib.Info("transaction_extraction")
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if p.Name == "" || p.Description == "" || p.SystemPrompt == "" {
		t.Errorf("incomplete prompt metadata %+v", p)
	}
}
