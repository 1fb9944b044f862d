package memory

import (
	"context"
	"math/bits"
	"strings"

	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"
)

// Ledger is the in-process currency ledger.
type Ledger struct {
	store *Store
}

func NewLedger(store *Store) Ledger {
	return Ledger{store: store}
}

func (l Ledger) Mint(ctx context.Context, amount uint64, recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return turf.ErrInvalidOwner
	}
	if amount == 0 {
		return nil
	}
	return l.store.write(ctx, func() error {
		sum, carry := bits.Add64(l.store.balances[recipient], amount, 0)
		if carry != 0 {
			return turf.ErrIncomeOverflow
		}
		l.store.balances[recipient] = sum
		return nil
	})
}

func (l Ledger) Burn(ctx context.Context, amount uint64, payer string) error {
	if amount == 0 {
		return nil
	}
	return l.store.write(ctx, func() error {
		bal := l.store.balances[payer]
		if bal < amount {
			return ports.ErrInsufficientFunds
		}
		l.store.balances[payer] = bal - amount
		return nil
	})
}

func (l Ledger) Transfer(ctx context.Context, amount uint64, from, to string) error {
	if strings.TrimSpace(to) == "" {
		return turf.ErrInvalidOwner
	}
	if amount == 0 || from == to {
		return nil
	}
	return l.store.write(ctx, func() error {
		bal := l.store.balances[from]
		if bal < amount {
			return ports.ErrInsufficientFunds
		}
		sum, carry := bits.Add64(l.store.balances[to], amount, 0)
		if carry != 0 {
			return turf.ErrIncomeOverflow
		}
		l.store.balances[from] = bal - amount
		l.store.balances[to] = sum
		return nil
	})
}

func (l Ledger) BalanceOf(ctx context.Context, account string) (uint64, error) {
	var out uint64
	err := l.store.read(ctx, func() error {
		out = l.store.balances[account]
		return nil
	})
	return out, err
}
