package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicate is returned by UserRepository.Create when the store rejects the row on its
// primary key or unique email index.
var ErrDuplicate = errors.New("duplicate user")

// User is the only persisted entity. Rows are inserted once by registration and never
// updated or deleted afterwards.
type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:64" json:"userId"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Password  string    `gorm:"column:password;size:100;not null" json:"-"` // bcrypt hash
	Email     string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	CreatedAt time.Time `gorm:"autoCreateTime;<-:create" json:"createdAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	// FindByIDOrEmail returns the first row whose user_id equals id or whose email equals
	// email, or (nil, nil) when none matches.
	FindByIDOrEmail(ctx context.Context, id, email string) (*User, error)
}
