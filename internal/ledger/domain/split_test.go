package domain

import "testing"

func TestComputeSplit(t *testing.T) {
	cases := []struct {
		name           string
		fee, tax       int64
		rate           float64
		wantCommission int64
		wantPayout     int64
	}{
		{name: "plain_units", fee: 500, tax: 200, rate: 0.10, wantCommission: 50, wantPayout: 650},
		{name: "centavos", fee: 50000, tax: 20000, rate: 0.10, wantCommission: 5000, wantPayout: 65000},
		{name: "half_up", fee: 5, tax: 0, rate: 0.10, wantCommission: 1, wantPayout: 4},
		{name: "below_half", fee: 4, tax: 10, rate: 0.10, wantCommission: 0, wantPayout: 14},
		{name: "zero_rate", fee: 1000, tax: 1, rate: 0, wantCommission: 0, wantPayout: 1001},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeSplit(tc.fee, tc.tax, tc.rate)
			if got.Commission != tc.wantCommission || got.Payout != tc.wantPayout {
				t.Fatalf("expected %d/%d, got %d/%d", tc.wantCommission, tc.wantPayout, got.Commission, got.Payout)
			}
			if got.Total != tc.fee+tc.tax || got.Commission+got.Payout != got.Total {
				t.Fatalf("split does not add up: %+v", got)
			}
		})
	}
}

func TestPaymentLinesBalance(t *testing.T) {
	if err := ValidateBalanced(PaymentLines(ComputeSplit(50000, 20000, 0.10))); err != nil {
		t.Fatalf("expected balanced lines: %v", err)
	}
	unbalanced := []LedgerEntryLine{
		{Direction: LedgerEntryDirectionDebit, Amount: 10},
		{Direction: LedgerEntryDirectionCredit, Amount: 9},
	}
	if err := ValidateBalanced(unbalanced); err != ErrUnbalancedEntry {
		t.Fatalf("expected ErrUnbalancedEntry, got %v", err)
	}
}
