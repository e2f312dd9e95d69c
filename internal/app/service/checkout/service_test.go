package checkout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestCreateError_DuplicateKeyIsGateDenial(t *testing.T) {
	// Two concurrent creations for the same user/plan race past the gate when
	// the user has no rows to lock; the loser's insert violates the pending
	// uniqueness index and must surface as a conflict, not a 500.
	err := createError(gorm.ErrDuplicatedKey)
	require.ErrorIs(t, err, ErrCheckoutInFlight)
}

func TestCreateError_WrappedDuplicateKey(t *testing.T) {
	// gorm's TranslateError wraps the driver error; the mapping must survive
	// wrapping layers.
	err := createError(errors.Join(errors.New("insert failed"), gorm.ErrDuplicatedKey))
	require.ErrorIs(t, err, ErrCheckoutInFlight)
}

func TestCreateError_OtherErrorsStayInternal(t *testing.T) {
	cause := errors.New("connection reset")
	err := createError(cause)
	require.NotErrorIs(t, err, ErrCheckoutInFlight)
	require.NotErrorIs(t, err, ErrAlreadyPurchased)
	require.ErrorIs(t, err, cause)
}
