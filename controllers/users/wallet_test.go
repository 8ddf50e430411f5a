package users

import (
	"errors"
	"testing"

	"github.com/Ham-irza/resell-hub/models"
)

func TestDebitForWithdrawal(t *testing.T) {
	cases := []struct {
		name        string
		balance     float64
		amount      float64
		wantErr     error
		wantBalance float64
	}{
		{"sufficient balance deducts", 3000, 1000, nil, 2000},
		{"exact balance allowed", 3000, 3000, nil, 0},
		{"insufficient balance", 3000, 5000, errInsufficientBalance, 3000},
		{"below minimum", 3000, 100, errBelowMinimum, 3000},
		{"rounding applied", 1000.56, 500.55, nil, 500.01},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			user := models.User{WalletBalance: tc.balance}
			err := debitForWithdrawal(&user, tc.amount, 500)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("debitForWithdrawal() error = %v, want %v", err, tc.wantErr)
			}
			if user.WalletBalance != tc.wantBalance {
				t.Fatalf("wallet balance = %.2f, want %.2f", user.WalletBalance, tc.wantBalance)
			}
		})
	}
}

// A failed withdrawal must leave the wallet exactly as it was, otherwise a
// retry after an error would double-deduct.
func TestDebitForWithdrawalFailureLeavesWalletUntouched(t *testing.T) {
	user := models.User{WalletBalance: 3000}

	if err := debitForWithdrawal(&user, 5000, 500); !errors.Is(err, errInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if user.WalletBalance != 3000 {
		t.Fatalf("wallet mutated on rejected withdrawal: %.2f", user.WalletBalance)
	}

	// The same request succeeds once the balance covers it.
	user.WalletBalance = 6000
	if err := debitForWithdrawal(&user, 5000, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if user.WalletBalance != 1000 {
		t.Fatalf("balance after withdrawal = %.2f, want 1000", user.WalletBalance)
	}
}
