package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Leganyst/salon-core/internal/apperror"
)

// translate maps a GORM error onto the application taxonomy.
// what names the entity for not-found messages, op the failed operation.
func translate(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperror.Conflict("duplicate entry", err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &apperror.Error{Kind: apperror.KindValidation, Message: "referenced " + what + " does not exist", Err: err}
	}
	var ae *apperror.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperror.Internal(op, err)
}
