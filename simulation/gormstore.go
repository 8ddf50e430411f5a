package simulation

import (
	"context"
	"fmt"

	"github.com/Ham-irza/resell-hub/models"
	"github.com/Ham-irza/resell-hub/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the MySQL-backed Store. Per-purchase mutual exclusion is a
// conditional update keyed on the previously read sales state; wallet mutations
// take a FOR UPDATE lock on the owner row so payouts serialize with withdrawals
// and commissions on the same user.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Purchase(ctx context.Context, id uint) (models.Purchase, error) {
	var p models.Purchase
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return models.Purchase{}, err
	}
	return p, nil
}

func (s *GormStore) ActivePurchases(ctx context.Context) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := s.db.WithContext(ctx).
		Where("status = ?", models.PurchaseActive).
		Order("id ASC").
		Find(&rows).Error
	return rows, err
}

// CommitAdvance persists the advanced sales state, and when payout is non-nil,
// credits the owner's wallet and writes the profit_payout ledger entry in the same
// transaction. RowsAffected == 0 on the conditional update means another evaluator
// committed first; the caller gets ErrConflict and retries from fresh state.
func (s *GormStore) CommitAdvance(ctx context.Context, prev, next models.Purchase, prog Progress, payout *Payout) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Purchase{}).
			Where("id = ? AND status = ? AND items_sold = ? AND last_processed_at = ?",
				prev.ID, models.PurchaseActive, prev.ItemsSold, prev.LastProcessedAt).
			Updates(map[string]interface{}{
				"items_sold":         next.ItemsSold,
				"accumulated_return": next.AccumulatedReturn,
				"status":             next.Status,
				"last_processed_at":  next.LastProcessedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if payout != nil {
			var user models.User
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, payout.UserID).Error; err != nil {
				return err
			}
			newBalance := utils.RoundMoney(user.WalletBalance + payout.Amount)
			if err := tx.Model(&user).Update("wallet_balance", newBalance).Error; err != nil {
				return err
			}

			desc := fmt.Sprintf("Cycle complete: %s (%d items sold)", payout.ItemName, payout.TotalStock)
			entry := models.Transaction{
				UserID:      payout.UserID,
				Type:        models.TxProfitPayout,
				Amount:      payout.Amount,
				Status:      models.TxApproved,
				Description: &desc,
				ReferenceID: utils.GenerateReferenceID(payout.UserID),
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}

			note := models.Notification{
				UserID:  payout.UserID,
				Message: fmt.Sprintf("All %d items of %q sold! Payout of PKR %.2f added to your wallet.", payout.TotalStock, payout.ItemName, payout.Amount),
			}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
			return nil
		}

		if prog.UnitsSold > 0 {
			note := models.Notification{
				UserID:  next.UserID,
				Message: fmt.Sprintf("You sold %d item(s) of %q. %d of %d sold so far.", prog.UnitsSold, next.ItemName, next.ItemsSold, next.TotalStock),
			}
			if err := tx.Create(&note).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
