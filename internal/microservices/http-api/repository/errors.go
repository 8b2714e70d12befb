package repository

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"bookhub/internal/apperr"
)

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// translate maps a gorm/pgx error onto the apperr taxonomy.
func translate(err error, entity, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(entity)
	case isUniqueViolation(err):
		return apperr.Conflict(entity, entity+" already exists").WithCause(err)
	default:
		return apperr.Internal(fmt.Errorf("%s %s: %w", op, entity, err))
	}
}

// isUUID guards uuid columns: postgres rejects a malformed uuid literal with an
// error instead of returning no rows.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
