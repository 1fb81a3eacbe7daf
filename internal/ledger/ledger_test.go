package ledger

import (
	"errors"
	"testing"
)

func newTestAccount() *Account {
	return NewAccount(NewMemoryStore())
}

// ============================================================================
// Deposits and withdrawals
// ============================================================================

func TestDepositCreditsAvailable(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 15_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Deposit(2, 5_000); err != nil {
		t.Fatal(err)
	}
	if a.Available() != 20_000 || a.Held() != 0 || a.Total() != 20_000 {
		t.Errorf("balances = %d/%d/%d, want 20000/0/20000",
			a.Available(), a.Held(), a.Total())
	}
}

func TestWithdrawDebitsAvailable(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 20_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Withdraw(2, 15_000); err != nil {
		t.Fatal(err)
	}
	if a.Available() != 5_000 || a.Total() != 5_000 {
		t.Errorf("balances = %d/%d, want 5000/5000", a.Available(), a.Total())
	}
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	err := a.Withdraw(2, 10_001)
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("Withdraw err = %v, want ErrInsufficientFunds", err)
	}
	if a.Available() != 10_000 {
		t.Errorf("failed withdrawal mutated balance: %d", a.Available())
	}
	// The rejected withdrawal must not burn its transaction id.
	if err := a.Withdraw(2, 10_000); err != nil {
		t.Errorf("retry with same tx after rejection: %v", err)
	}
}

func TestDuplicateTransactionID(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Deposit(1, 10_000); !errors.Is(err, ErrTxAlreadyExists) {
		t.Fatalf("duplicate deposit err = %v, want ErrTxAlreadyExists", err)
	}
	if err := a.Withdraw(1, 5_000); !errors.Is(err, ErrTxAlreadyExists) {
		t.Fatalf("withdrawal reusing deposit tx err = %v, want ErrTxAlreadyExists", err)
	}
	if a.Available() != 10_000 {
		t.Errorf("duplicate mutated balance: %d", a.Available())
	}
}

func TestNegativeAmountRejected(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, -1); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("negative deposit err = %v, want ErrNegativeAmount", err)
	}
	if err := a.Withdraw(2, -1); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("negative withdrawal err = %v, want ErrNegativeAmount", err)
	}
}

// ============================================================================
// Disputes
// ============================================================================

func TestDisputeHoldsDepositAmount(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 20_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(1); err != nil {
		t.Fatal(err)
	}
	if a.Available() != 0 || a.Held() != 20_000 || a.Total() != 20_000 {
		t.Errorf("balances = %d/%d/%d, want 0/20000/20000",
			a.Available(), a.Held(), a.Total())
	}
}

func TestDisputeWithdrawalShiftsNegativeAmount(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 20_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Withdraw(2, 5_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(2); err != nil {
		t.Fatal(err)
	}
	// Withdrawals are recorded negative, so the hold runs the other way.
	if a.Available() != 20_000 || a.Held() != -5_000 || a.Total() != 15_000 {
		t.Errorf("balances = %d/%d/%d, want 20000/-5000/15000",
			a.Available(), a.Held(), a.Total())
	}
}

func TestDisputeResolveWithdrawalRestoresBalances(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 20_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Withdraw(2, 5_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(2); err != nil {
		t.Fatal(err)
	}
	if err := a.Resolve(2); err != nil {
		t.Fatal(err)
	}
	if a.Available() != 15_000 || a.Held() != 0 {
		t.Errorf("balances = %d/%d, want 15000/0", a.Available(), a.Held())
	}
}

func TestDisputeUnknownTx(t *testing.T) {
	a := newTestAccount()
	if err := a.Dispute(99); !errors.Is(err, ErrTxUnknown) {
		t.Fatalf("Dispute err = %v, want ErrTxUnknown", err)
	}
}

func TestDisputeAlreadyDisputed(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(1); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(1); !errors.Is(err, ErrTxAlreadyDisputed) {
		t.Fatalf("second dispute err = %v, want ErrTxAlreadyDisputed", err)
	}
	if a.Held() != 10_000 {
		t.Errorf("repeat dispute mutated held: %d", a.Held())
	}
}

func TestResolveRestoresAvailable(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(1); err != nil {
		t.Fatal(err)
	}
	if err := a.Resolve(1); err != nil {
		t.Fatal(err)
	}
	if a.Available() != 10_000 || a.Held() != 0 {
		t.Errorf("balances = %d/%d, want 10000/0", a.Available(), a.Held())
	}
	// A resolved transaction can be disputed again.
	if err := a.Dispute(1); err != nil {
		t.Errorf("re-dispute after resolve: %v", err)
	}
}

func TestResolveWithoutDispute(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Resolve(1); !errors.Is(err, ErrTxUndisputed) {
		t.Fatalf("Resolve err = %v, want ErrTxUndisputed", err)
	}
	if err := a.Resolve(2); !errors.Is(err, ErrTxUnknown) {
		t.Fatalf("Resolve err = %v, want ErrTxUnknown", err)
	}
}

// ============================================================================
// Chargebacks and locking
// ============================================================================

func TestChargebackDropsHeldAndLocks(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Deposit(2, 5_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(1); err != nil {
		t.Fatal(err)
	}
	if err := a.Chargeback(1); err != nil {
		t.Fatal(err)
	}
	if a.Available() != 5_000 || a.Held() != 0 || a.Total() != 5_000 {
		t.Errorf("balances = %d/%d/%d, want 5000/0/5000",
			a.Available(), a.Held(), a.Total())
	}
	if !a.Locked() {
		t.Error("account not locked after chargeback")
	}
}

func TestChargebackWithoutDispute(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Chargeback(1); !errors.Is(err, ErrTxUndisputed) {
		t.Fatalf("Chargeback err = %v, want ErrTxUndisputed", err)
	}
	if a.Locked() {
		t.Error("rejected chargeback locked the account")
	}
}

func TestLockedAccountRejectsEverything(t *testing.T) {
	a := newTestAccount()
	if err := a.Deposit(1, 10_000); err != nil {
		t.Fatal(err)
	}
	if err := a.Dispute(1); err != nil {
		t.Fatal(err)
	}
	if err := a.Chargeback(1); err != nil {
		t.Fatal(err)
	}

	ops := []struct {
		name string
		err  error
	}{
		{"Deposit", a.Deposit(2, 1)},
		{"Withdraw", a.Withdraw(3, 1)},
		{"Dispute", a.Dispute(1)},
		{"Resolve", a.Resolve(1)},
		{"Chargeback", a.Chargeback(1)},
	}
	for _, op := range ops {
		if !errors.Is(op.err, ErrLocked) {
			t.Errorf("%s on locked account err = %v, want ErrLocked", op.name, op.err)
		}
	}
	if a.Available() != 0 || a.Held() != 0 {
		t.Errorf("locked account mutated: %d/%d", a.Available(), a.Held())
	}
}
