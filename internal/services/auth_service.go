package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const tokenTTL = 24 * time.Hour

type RegisterInput struct {
	Name     string      `json:"name" validate:"required"`
	Email    string      `json:"email" validate:"required,email"`
	Phone    string      `json:"phone"`
	Password string      `json:"password" validate:"required,min=6"`
	Role     domain.Role `json:"role" validate:"required,oneof=client artisan"`
	Trade    string      `json:"trade" validate:"required_if=Role artisan"`
	Location string      `json:"location"`
	Rate     float64     `json:"rate" validate:"gte=0"`
}

// AuthService issues and verifies HS256 tokens for Directory users.
type AuthService struct {
	Directory Directory
	Secret    []byte
	Now       func() time.Time
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Name = utils.NormalizeSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Role = domain.Role(strings.ToLower(strings.TrimSpace(string(in.Role))))
	in.Trade = utils.NormalizeSpace(in.Trade)
	in.Location = utils.NormalizeSpace(in.Location)

	if err := validate.Struct(in); err != nil {
		field, msg := firstFieldError(err)
		return models.User{}, domain.ValidationError{Field: field, Msg: msg}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}

	u := models.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		Location:     in.Location,
		PasswordHash: string(hash),
		CreatedAt:    utils.NowUTC(),
	}
	if in.Role == domain.RoleArtisan {
		u.Trade = in.Trade
		u.Rate = in.Rate
	}
	if err := s.Directory.CreateUser(ctx, u); err != nil {
		if domain.IsConflict(err) {
			return models.User{}, err
		}
		return models.User{}, domain.InternalError{Msg: "store user", Err: err}
	}
	utils.LogCtx(ctx, "auth", "register", fmt.Sprintf("user_id=%s role=%s", u.ID, u.Role))
	return u, nil
}

// Login checks the password and returns a signed token valid for 24h.
func (s AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	u, err := s.Directory.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if domain.IsNotFound(err) {
			return "", models.User{}, ErrInvalidCredentials
		}
		return "", models.User{}, domain.InternalError{Msg: "load user", Err: err}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", models.User{}, ErrInvalidCredentials
	}

	token, err := s.IssueToken(u)
	if err != nil {
		return "", models.User{}, domain.InternalError{Msg: "sign token", Err: err}
	}
	utils.LogCtx(ctx, "auth", "login", "user_id="+u.ID)
	return token, u, nil
}

func (s AuthService) IssueToken(u models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": u.ID,
		"role":    string(u.Role),
		"exp":     s.now().Add(tokenTTL).Unix(),
	})
	return token.SignedString(s.Secret)
}

// ParseToken validates a bearer token and returns who it belongs to.
func (s AuthService) ParseToken(raw string) (domain.RequestContext, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		return domain.RequestContext{}, ErrInvalidToken
	}
	userID, _ := claims["user_id"].(string)
	role, _ := claims["role"].(string)
	if userID == "" || role == "" {
		return domain.RequestContext{}, ErrInvalidToken
	}
	return domain.RequestContext{UserID: userID, Role: domain.Role(role)}, nil
}
