package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name        string
		pending     int64
		completed   int64
		wantAllowed bool
		wantReason  string
		wantErr     error
	}{
		{"clean slate", 0, 0, true, "Access granted", nil},
		{"pending blocks", 1, 0, false, "Pending transaction exists", ErrCheckoutInFlight},
		{"purchased blocks", 0, 1, false, "Already purchased", ErrAlreadyPurchased},
		{"pending wins over purchased", 2, 1, false, "Pending transaction exists", ErrCheckoutInFlight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := decide(tt.pending, tt.completed)
			require.Equal(t, tt.wantAllowed, d.Allowed)
			require.Equal(t, tt.wantReason, d.Reason)
			if tt.wantErr == nil {
				require.NoError(t, d.Err())
			} else {
				require.ErrorIs(t, d.Err(), tt.wantErr)
			}
		})
	}
}
