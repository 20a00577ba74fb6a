package postgresadapter

import (
	"context"
	"errors"

	"tribunal/contexts/moderation/report-engine/domain/entities"
	domainerrors "tribunal/contexts/moderation/report-engine/domain/errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountModel struct {
	Principal string `gorm:"column:principal;primaryKey;size:128"`
	Balance   uint64 `gorm:"column:balance;not null;default:0"`
}

func (accountModel) TableName() string { return "moderation_accounts" }

// Transfer moves tokens between accounts inside one database transaction. The
// debit requires a sufficient balance, so a failed guard rolls back the whole
// transfer with no partial write.
func (r *Repository) Transfer(ctx context.Context, from, to entities.Principal, amount entities.Amount) error {
	if amount == 0 {
		return nil
	}
	err := r.conn(ctx).Transaction(func(tx *gorm.DB) error {
		debit := tx.Model(&accountModel{}).
			Where("principal = ?", string(from)).
			Where("balance >= ?", uint64(amount)).
			Update("balance", gorm.Expr("balance - ?", uint64(amount)))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return domainerrors.ErrInsufficientFunds
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "principal"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance": gorm.Expr("moderation_accounts.balance + ?", uint64(amount)),
			}),
		}).Create(&accountModel{Principal: string(to), Balance: uint64(amount)}).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrInsufficientFunds) {
			return err
		}
		return r.logError("moderation_repo_transfer_failed", err,
			"from", string(from),
			"to", string(to),
			"amount", uint64(amount),
		)
	}
	return nil
}

// Credit mints balance onto an account. Used by operational tooling to fund
// principals; the engine itself only moves existing balance.
func (r *Repository) Credit(ctx context.Context, principal entities.Principal, amount entities.Amount) error {
	if amount == 0 {
		return nil
	}
	err := r.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "principal"}},
		DoUpdates: clause.Assignments(map[string]any{
			"balance": gorm.Expr("moderation_accounts.balance + ?", uint64(amount)),
		}),
	}).Create(&accountModel{Principal: string(principal), Balance: uint64(amount)}).Error
	if err != nil {
		return r.logError("moderation_repo_credit_failed", err, "principal", string(principal))
	}
	return nil
}

// Balance reads an account balance, zero when the account is unknown.
func (r *Repository) Balance(ctx context.Context, principal entities.Principal) (entities.Amount, error) {
	var row accountModel
	err := r.conn(ctx).Where("principal = ?", string(principal)).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, r.logError("moderation_repo_balance_failed", err, "principal", string(principal))
	}
	return entities.Amount(row.Balance), nil
}
