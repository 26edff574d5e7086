package generr

import (
	"net/http"

	"github.com/pkg/errors"
)

// Error taxonomy shared by the ledger. Callers wrap these with
// errors.Wrap and classify with Kind.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrConflict          = errors.New("conflict")
	ErrDataCorruption    = errors.New("data corruption")
	ErrInternal          = errors.New("internal")
)

// NotFoundError narrows ErrNotFound to the missing entity so the response
// can carry a precise code.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return e.Entity + " not found"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

const (
	EntityUser   = "user"
	EntityWallet = "wallet"
	EntityPlan   = "plan"
)

func NewNotFound(entity string, id interface{}) error {
	return errors.WithStack(&NotFoundError{Entity: entity, ID: id})
}

var kinds = []error{ErrInvalidInput, ErrNotFound, ErrInsufficientFunds, ErrConflict, ErrDataCorruption, ErrInternal}

// Kind reduces err to one of the taxonomy sentinels. Unknown errors are
// treated as ErrInternal.
func Kind(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// Is reports whether err belongs to the taxonomy kind target.
func Is(err error, target error) bool {
	return Kind(err) == target
}

// From maps an error to the http status and response code the handlers
// return.
func From(err error) (int, *mErr) {
	switch Kind(err) {
	case ErrInvalidInput:
		return http.StatusBadRequest, ParseParam
	case ErrNotFound:
		var nf *NotFoundError
		if errors.As(err, &nf) {
			switch nf.Entity {
			case EntityUser:
				return http.StatusNotFound, UserNotFound
			case EntityWallet:
				return http.StatusNotFound, WalletNotFound
			case EntityPlan:
				return http.StatusBadRequest, InvalidPlan
			}
		}
		return http.StatusNotFound, NotFound
	case ErrInsufficientFunds:
		return http.StatusUnprocessableEntity, BalanceNotEnough
	case ErrConflict:
		return http.StatusConflict, Conflict
	case ErrDataCorruption:
		return http.StatusInternalServerError, DataCorruption
	}
	return http.StatusInternalServerError, ServerError
}
