package admins

import (
	"errors"
	"testing"

	"github.com/Ham-irza/resell-hub/models"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

func pendingWithdrawal(amount float64) models.Transaction {
	return models.Transaction{
		ID:     1,
		UserID: 7,
		Type:   models.TxWithdrawal,
		Amount: amount,
		Status: models.TxPending,
	}
}

func TestSettleWithdrawalApprove(t *testing.T) {
	entry := pendingWithdrawal(2000)
	owner := models.User{ID: 7, WalletBalance: 1000}

	refund, err := settleWithdrawal(&entry, &owner, "approve")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refund != 0 {
		t.Fatalf("approve returned refund %.2f, want 0", refund)
	}
	if entry.Status != models.TxApproved {
		t.Fatalf("status = %s, want %s", entry.Status, models.TxApproved)
	}
	if owner.WalletBalance != 1000 {
		t.Fatalf("approve touched the wallet: %.2f", owner.WalletBalance)
	}
}

func TestSettleWithdrawalRejectRefunds(t *testing.T) {
	entry := pendingWithdrawal(2000)
	owner := models.User{ID: 7, WalletBalance: 1000}

	refund, err := settleWithdrawal(&entry, &owner, "reject")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if refund != 2000 {
		t.Fatalf("refund = %.2f, want 2000", refund)
	}
	if entry.Status != models.TxRejected {
		t.Fatalf("status = %s, want %s", entry.Status, models.TxRejected)
	}
	if owner.WalletBalance != 3000 {
		t.Fatalf("balance after refund = %.2f, want 3000", owner.WalletBalance)
	}
}

// A withdrawal settles exactly once: any second decision, regardless of
// direction, is refused and mutates nothing.
func TestSettleWithdrawalSecondDecisionRefused(t *testing.T) {
	cases := []struct {
		name   string
		first  string
		second string
	}{
		{"approve then approve", "approve", "approve"},
		{"approve then reject", "approve", "reject"},
		{"reject then reject", "reject", "reject"},
		{"reject then approve", "reject", "approve"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			entry := pendingWithdrawal(2000)
			owner := models.User{ID: 7, WalletBalance: 1000}

			if _, err := settleWithdrawal(&entry, &owner, tc.first); err != nil {
				t.Fatalf("first decision failed: %v", err)
			}
			statusAfterFirst := entry.Status
			balanceAfterFirst := owner.WalletBalance

			refund, err := settleWithdrawal(&entry, &owner, tc.second)
			if !errors.Is(err, errNotPending) {
				t.Fatalf("second decision error = %v, want %v", err, errNotPending)
			}
			if refund != 0 {
				t.Fatalf("second decision returned refund %.2f", refund)
			}
			if entry.Status != statusAfterFirst {
				t.Fatalf("second decision changed status to %s", entry.Status)
			}
			if owner.WalletBalance != balanceAfterFirst {
				t.Fatalf("second decision changed balance to %.2f", owner.WalletBalance)
			}
		})
	}
}

func TestIsDuplicateEntry(t *testing.T) {
	dup := &mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'Starter' for key 'plans.name'"}
	if !isDuplicateEntry(dup) {
		t.Fatal("MySQL error 1062 not detected as duplicate")
	}
	if !isDuplicateEntry(gorm.ErrDuplicatedKey) {
		t.Fatal("gorm.ErrDuplicatedKey not detected as duplicate")
	}
	deadlock := &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"}
	if isDuplicateEntry(deadlock) {
		t.Fatal("non-duplicate MySQL error reported as duplicate")
	}
	if isDuplicateEntry(errors.New("connection refused")) {
		t.Fatal("plain error reported as duplicate")
	}
}
