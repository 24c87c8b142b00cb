package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"flickhub/internal/core/apperr"
	"flickhub/internal/domain"
	"flickhub/pkg/utils"
)

// User-facing messages. Auth failures share one message so that an unknown identity and a
// wrong password cannot be told apart.
const (
	MsgFieldsRequired     = "All fields are required"
	MsgUserIDTooShort     = "User ID must be at least 4 characters"
	MsgUserIDWhitespace   = "User ID must not contain spaces"
	MsgPasswordTooShort   = "Password must be at least 8 characters"
	MsgPasswordTooLong    = "Password must be at most 72 bytes"
	MsgLoginFieldsMissing = "Username and password are required"
	MsgUserExists         = "User ID or email already exists"
	MsgInvalidCredentials = "Invalid credentials"
	MsgRegisterFailed     = "Registration failed. Please try again later"
	MsgLoginFailed        = "Login failed. Please try again later"
)

type RegisterInput struct {
	UserID   string `json:"userId"   validate:"required,min=4,nospace"`
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Phone    string `json:"phone"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,pwbytes"`
}

type RegisterResult struct {
	UserID string
}

type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	UserID string
	Name   string
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "nospace", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), unicode.IsSpace) < 0
	})
	mustRegister(v, "pwbytes", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= utils.MaxPasswordBytes
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("register validation " + tag + ": " + err.Error())
	}
}

type AccountService struct {
	users domain.UserRepository
	log   *zap.Logger
	cost  int

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*AccountService)

// WithHashCost overrides the bcrypt cost (default utils.MinPasswordCost).
func WithHashCost(cost int) Option {
	return func(s *AccountService) { s.cost = cost }
}

func NewAccountService(users domain.UserRepository, log *zap.Logger, opts ...Option) *AccountService {
	s := &AccountService{users: users, log: log, cost: utils.MinPasswordCost}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (RegisterResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if err := validateRegister(in); err != nil {
		return RegisterResult{}, err
	}

	existing, err := s.users.FindByIDOrEmail(ctx, in.UserID, in.Email)
	if err != nil {
		s.log.Error("register lookup failed", zap.String("user_id", in.UserID), zap.Error(err))
		return RegisterResult{}, apperr.Internal(MsgRegisterFailed, err)
	}
	if existing != nil {
		return RegisterResult{}, apperr.Conflict(MsgUserExists)
	}

	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		s.log.Error("password hash failed", zap.String("user_id", in.UserID), zap.Error(err))
		return RegisterResult{}, apperr.Internal(MsgRegisterFailed, err)
	}

	u := &domain.User{
		UserID:   in.UserID,
		Name:     in.Name,
		Password: hash,
		Email:    in.Email,
		Phone:    in.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			// lost a race with a concurrent registration
			return RegisterResult{}, apperr.Conflict(MsgUserExists)
		}
		s.log.Error("register insert failed", zap.String("user_id", in.UserID), zap.Error(err))
		return RegisterResult{}, apperr.Internal(MsgRegisterFailed, err)
	}

	s.log.Info("user registered", zap.String("user_id", u.UserID))
	return RegisterResult{UserID: u.UserID}, nil
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate.Struct(in); err != nil {
		return LoginResult{}, apperr.Validation(MsgLoginFieldsMissing)
	}

	u, err := s.users.FindByIDOrEmail(ctx, in.Username, in.Username)
	if err != nil {
		s.log.Error("login lookup failed", zap.Error(err))
		return LoginResult{}, apperr.Internal(MsgLoginFailed, err)
	}
	if u == nil {
		// burn a comparable amount of time so response latency does not reveal the miss
		_, _ = utils.CheckPassword(in.Password, s.dummy())
		return LoginResult{}, apperr.Auth(MsgInvalidCredentials)
	}

	ok, err := utils.CheckPassword(in.Password, u.Password)
	if err != nil {
		s.log.Error("stored password hash unreadable", zap.String("user_id", u.UserID), zap.Error(err))
		return LoginResult{}, apperr.Internal(MsgLoginFailed, err)
	}
	if !ok {
		return LoginResult{}, apperr.Auth(MsgInvalidCredentials)
	}

	s.log.Info("user logged in", zap.String("user_id", u.UserID))
	return LoginResult{UserID: u.UserID, Name: u.Name}, nil
}

func (s *AccountService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := utils.HashPassword("flickhub-dummy-password", s.cost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}

func validateRegister(in RegisterInput) error {
	for _, f := range []string{in.UserID, in.Name, in.Email, in.Phone, in.Password} {
		if strings.TrimSpace(f) == "" {
			return apperr.Validation(MsgFieldsRequired)
		}
	}
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Validation(MsgFieldsRequired)
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return apperr.Validation(MsgFieldsRequired)
		}
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "UserID" && fe.Tag() == "min":
		return apperr.Validation(MsgUserIDTooShort)
	case fe.Field() == "UserID" && fe.Tag() == "nospace":
		return apperr.Validation(MsgUserIDWhitespace)
	case fe.Field() == "Password" && fe.Tag() == "pwbytes":
		return apperr.Validation(MsgPasswordTooLong)
	case fe.Field() == "Password":
		return apperr.Validation(MsgPasswordTooShort)
	}
	return apperr.Validation(MsgFieldsRequired)
}
