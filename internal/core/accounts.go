package core

import (
	"strings"

	"github.com/google/uuid"
)

// NormalizeName is the single normalization used for every natural-key
// name comparison in the system.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindAccount returns the index of the first account matching the
// candidate name (case-insensitive) or the exact contact value (phone
// for customers, GSTIN for distributors), or -1.
//
// First match wins. Two real-world entities sharing a name silently
// resolve to the same account; that is a documented limitation pending a
// disambiguation UI, not an accident.
func FindAccount(kind AccountKind, accounts []Account, name, contact string) int {
	normName := NormalizeName(name)
	for i, a := range accounts {
		if normName != "" && NormalizeName(a.Name) == normName {
			return i
		}
		if contact == "" {
			continue
		}
		if kind == AccountDistributor {
			if a.GSTIN == contact {
				return i
			}
		} else if a.Phone == contact {
			return i
		}
	}
	return -1
}

// ResolveAccount finds or lazily creates the counterparty account for an
// event. It returns the (possibly grown) collection, the index of the
// resolved account, and whether it was created on this call.
//
// Distributors are always created on a miss. Customers are created only
// when the candidate has a non-default name or a phone number: a literal
// walk-in customer with no phone is never persisted, and the event then
// proceeds with no account linkage (index -1).
func ResolveAccount(kind AccountKind, name, contact string, accounts []Account) ([]Account, int, bool) {
	if i := FindAccount(kind, accounts, name, contact); i >= 0 {
		return accounts, i, false
	}

	if kind == AccountCustomer {
		anonymous := name == "" || NormalizeName(name) == NormalizeName(WalkInCustomerName)
		if anonymous && contact == "" {
			return accounts, -1, false
		}
	}

	acc := Account{ID: uuid.NewString(), Name: name}
	if kind == AccountDistributor {
		acc.GSTIN = contact
	} else {
		acc.Phone = contact
	}
	accounts = append(accounts, acc)
	return accounts, len(accounts) - 1, true
}
