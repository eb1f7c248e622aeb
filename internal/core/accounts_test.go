package core_test

import (
	"testing"

	"pharmacy-ledger/internal/core"
)

func TestFindAccount(t *testing.T) {
	customers := []core.Account{
		{ID: "c1", Name: "Asha Rao", Phone: "9998887770"},
		{ID: "c2", Name: "Ravi Kumar", Phone: "8887776660"},
	}
	distributors := []core.Account{
		{ID: "d1", Name: "MedPlus Agencies", GSTIN: "27AAACM1234A1Z5"},
	}

	tests := []struct {
		name    string
		kind    core.AccountKind
		in      []core.Account
		cand    string
		contact string
		want    int
	}{
		{"case-insensitive name", core.AccountCustomer, customers, "asha rao", "", 0},
		{"phone match", core.AccountCustomer, customers, "A. Rao", "8887776660", 1},
		{"gstin match", core.AccountDistributor, distributors, "Med+", "27AAACM1234A1Z5", 0},
		{"phone ignored for distributor field", core.AccountDistributor, distributors, "", "9998887770", -1},
		{"no match", core.AccountCustomer, customers, "Unknown", "1112223334", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.FindAccount(tt.kind, tt.in, tt.cand, tt.contact); got != tt.want {
				t.Errorf("FindAccount = %d, want %d", got, tt.want)
			}
		})
	}
}

// Two accounts sharing a name resolve to the first: documented policy.
func TestFindAccount_FirstMatchWins(t *testing.T) {
	accounts := []core.Account{
		{ID: "c1", Name: "Asha Rao"},
		{ID: "c2", Name: "Asha Rao", Phone: "1234500000"},
	}
	if got := core.FindAccount(core.AccountCustomer, accounts, "Asha Rao", ""); got != 0 {
		t.Errorf("FindAccount = %d, want first match 0", got)
	}
}

func TestResolveAccount_WalkInNeverCreated(t *testing.T) {
	out, idx, isNew := core.ResolveAccount(core.AccountCustomer, core.WalkInCustomerName, "", nil)
	if len(out) != 0 || idx != -1 || isNew {
		t.Errorf("walk-in with no phone must not create an account: len=%d idx=%d isNew=%v", len(out), idx, isNew)
	}

	out, idx, isNew = core.ResolveAccount(core.AccountCustomer, "", "", nil)
	if len(out) != 0 || idx != -1 || isNew {
		t.Errorf("empty name with no phone must not create an account: len=%d idx=%d isNew=%v", len(out), idx, isNew)
	}
}

func TestResolveAccount_WalkInWithPhoneIsCreated(t *testing.T) {
	out, idx, isNew := core.ResolveAccount(core.AccountCustomer, core.WalkInCustomerName, "9012345678", nil)
	if idx != 0 || !isNew {
		t.Fatalf("expected creation, got idx=%d isNew=%v", idx, isNew)
	}
	if out[idx].Phone != "9012345678" {
		t.Errorf("phone not stored: %q", out[idx].Phone)
	}
}

func TestResolveAccount_NamedCustomerCreated(t *testing.T) {
	out, idx, isNew := core.ResolveAccount(core.AccountCustomer, "Asha Rao", "", nil)
	if idx != 0 || !isNew {
		t.Fatalf("expected creation, got idx=%d isNew=%v", idx, isNew)
	}
	if out[idx].ID == "" {
		t.Error("created account has no identity")
	}
}

func TestResolveAccount_DistributorAlwaysCreated(t *testing.T) {
	out, idx, isNew := core.ResolveAccount(core.AccountDistributor, "MedPlus Agencies", "27AAACM1234A1Z5", nil)
	if idx != 0 || !isNew {
		t.Fatalf("expected creation, got idx=%d isNew=%v", idx, isNew)
	}
	if out[idx].GSTIN != "27AAACM1234A1Z5" {
		t.Errorf("gstin not stored: %q", out[idx].GSTIN)
	}
}

func TestResolveAccount_ExistingNotDuplicated(t *testing.T) {
	existing := []core.Account{{ID: "c1", Name: "Asha Rao", Phone: "9998887770"}}
	out, idx, isNew := core.ResolveAccount(core.AccountCustomer, "ASHA RAO", "", existing)
	if len(out) != 1 || idx != 0 || isNew {
		t.Errorf("expected match on existing account: len=%d idx=%d isNew=%v", len(out), idx, isNew)
	}
}
