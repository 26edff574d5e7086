package generr

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKind(t *testing.T) {
	assert.Nil(t, Kind(nil))
	assert.Equal(t, ErrInsufficientFunds, Kind(errors.Wrap(ErrInsufficientFunds, "debit")))
	assert.Equal(t, ErrNotFound, Kind(NewNotFound(EntityWallet, 7)))
	assert.Equal(t, ErrNotFound, Kind(errors.WithMessage(NewNotFound(EntityPlan, 1), "open position")))
	assert.Equal(t, ErrInternal, Kind(errors.New("connection reset")))
	assert.True(t, Is(errors.Wrap(ErrConflict, "apply delta"), ErrConflict))
}

func TestFrom(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   *mErr
	}{
		{errors.Wrap(ErrInvalidInput, "depamt"), http.StatusBadRequest, ParseParam},
		{NewNotFound(EntityWallet, 1), http.StatusNotFound, WalletNotFound},
		{NewNotFound(EntityUser, 1), http.StatusNotFound, UserNotFound},
		{NewNotFound(EntityPlan, 9), http.StatusBadRequest, InvalidPlan},
		{errors.Wrap(ErrInsufficientFunds, "stake"), http.StatusUnprocessableEntity, BalanceNotEnough},
		{errors.Wrap(ErrConflict, "retry"), http.StatusConflict, Conflict},
		{errors.Wrap(ErrDataCorruption, "decode"), http.StatusInternalServerError, DataCorruption},
		{errors.New("boom"), http.StatusInternalServerError, ServerError},
	}
	for _, tt := range tests {
		status, code := From(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code, tt.err.Error())
	}
}
