package gormrepo

import (
	"context"
	"errors"
	"math/bits"
	"strings"
	"time"

	"turfcontrol/internal/adapter/repo/gorm/model"
	"turfcontrol/internal/app/ports"
	"turfcontrol/internal/domain/turf"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepo keeps currency balances in ledger_balances. Every call locks the
// rows it touches, so it must run inside the caller's transaction to be atomic
// with the ledger mutation that caused it.
type LedgerRepo struct {
	db *gorm.DB
}

func NewLedgerRepo(db *gorm.DB) LedgerRepo {
	return LedgerRepo{db: db}
}

func (r LedgerRepo) Mint(ctx context.Context, amount uint64, recipient string) error {
	if strings.TrimSpace(recipient) == "" {
		return turf.ErrInvalidOwner
	}
	if amount == 0 {
		return nil
	}
	db := getDBFromCtx(ctx, r.db)
	bal, err := r.lockBalance(db, recipient)
	if err != nil {
		return err
	}
	sum, carry := bits.Add64(bal, amount, 0)
	if carry != 0 {
		return turf.ErrIncomeOverflow
	}
	return r.put(db, recipient, sum)
}

func (r LedgerRepo) Burn(ctx context.Context, amount uint64, payer string) error {
	if amount == 0 {
		return nil
	}
	db := getDBFromCtx(ctx, r.db)
	bal, err := r.lockBalance(db, payer)
	if err != nil {
		return err
	}
	if bal < amount {
		return ports.ErrInsufficientFunds
	}
	return r.put(db, payer, bal-amount)
}

func (r LedgerRepo) Transfer(ctx context.Context, amount uint64, from, to string) error {
	if strings.TrimSpace(to) == "" {
		return turf.ErrInvalidOwner
	}
	if amount == 0 || from == to {
		return nil
	}
	db := getDBFromCtx(ctx, r.db)
	// Lock in account order.
	first, second := from, to
	if second < first {
		first, second = second, first
	}
	balances := map[string]uint64{}
	for _, acct := range []string{first, second} {
		bal, err := r.lockBalance(db, acct)
		if err != nil {
			return err
		}
		balances[acct] = bal
	}
	if balances[from] < amount {
		return ports.ErrInsufficientFunds
	}
	sum, carry := bits.Add64(balances[to], amount, 0)
	if carry != 0 {
		return turf.ErrIncomeOverflow
	}
	if err := r.put(db, from, balances[from]-amount); err != nil {
		return err
	}
	return r.put(db, to, sum)
}

func (r LedgerRepo) BalanceOf(ctx context.Context, account string) (uint64, error) {
	var m model.LedgerBalance
	err := getDBFromCtx(ctx, r.db).Where(&model.LedgerBalance{Account: account}).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parseAmount(m.Balance)
}

func (r LedgerRepo) lockBalance(db *gorm.DB, account string) (uint64, error) {
	var m model.LedgerBalance
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where(&model.LedgerBalance{Account: account}).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parseAmount(m.Balance)
}

func (r LedgerRepo) put(db *gorm.DB, account string, balance uint64) error {
	m := model.LedgerBalance{
		Account:   account,
		Balance:   formatAmount(balance),
		UpdatedAt: time.Now().UTC(),
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}},
		DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
	}).Create(&m).Error
}
