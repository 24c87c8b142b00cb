package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"flickhub/internal/domain"
)

const (
	pgUniqueViolation = "23505"
	mysqlDupEntry     = 1062
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if err != nil && isDupKey(err) {
		return errors.Join(domain.ErrDuplicate, err)
	}
	return err
}

// FindByIDOrEmail matches both identifiers exactly, including case.
func (r *UserRepo) FindByIDOrEmail(ctx context.Context, id, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).
		Where(identityClause(r.db.Dialector.Name()), id, email).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// MySQL's default utf8mb4 collations fold case; postgres text comparison does not.
func identityClause(dialect string) string {
	if dialect == "mysql" {
		return "BINARY user_id = ? OR BINARY email = ?"
	}
	return "user_id = ? OR email = ?"
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDupEntry
	}
	// drivers wrapped by proxies sometimes only keep the message
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
