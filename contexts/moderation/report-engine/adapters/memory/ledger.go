package memory

import (
	"context"
	"sync"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"
)

// AccountBook is an in-process implementation of the external value-transfer
// ledger. It exists for local wiring and for conservation checks in tests; a
// production deployment points the Ledger port at the real settlement system.
type AccountBook struct {
	mu       sync.RWMutex
	balances map[entities.Principal]entities.Amount
}

func NewAccountBook() *AccountBook {
	return &AccountBook{
		balances: make(map[entities.Principal]entities.Amount),
	}
}

// Credit mints balance for a principal. Seeding helper, not part of the port.
func (b *AccountBook) Credit(principal entities.Principal, amount entities.Amount) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[principal] += amount
}

func (b *AccountBook) Balance(principal entities.Principal) entities.Amount {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[principal]
}

func (b *AccountBook) Transfer(
	_ context.Context,
	from entities.Principal,
	to entities.Principal,
	amount entities.Amount,
) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[from] < amount {
		return domainerrors.ErrInsufficientFunds
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}
