package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	greenhouse "greenhouse_console"
	"greenhouse_console/internal/sim/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// Domain errors for auth flows.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("username already taken")
	ErrInvalidToken       = errors.New("invalid token")
	ErrBanned             = errors.New("account is banned")
)

// AuthService issues and parses HS256 tokens and owns password hashing.
type AuthService struct {
	users      repository.UserRepo
	signingKey []byte
}

func NewAuthService(users repository.UserRepo, signingKey string) *AuthService {
	return &AuthService{users: users, signingKey: []byte(signingKey)}
}

// Claims carried by every session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int `json:"user_id"`
}

// Register creates an account and logs it straight in.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (string, *greenhouse.User, error) {
	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return "", nil, err
	} else if existing != nil {
		return "", nil, ErrUserExists
	}
	hash, err := hashPassword(password)
	if err != nil {
		return "", nil, err
	}
	rec, err := s.users.Create(ctx, username, email, hash)
	if err != nil {
		return "", nil, err
	}
	token, err := s.issueToken(rec.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &rec.User, nil
}

// Login validates credentials and returns a token plus the identity.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, *greenhouse.User, error) {
	rec, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if rec == nil {
		return "", nil, ErrInvalidCredentials
	}
	if rec.Status == greenhouse.StatusBanned {
		return "", nil, ErrBanned
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}
	token, err := s.issueToken(rec.ID)
	if err != nil {
		return "", nil, err
	}
	return token, &rec.User, nil
}

// ParseToken verifies the signature and returns the user ID.
func (s *AuthService) ParseToken(accessToken string) (int, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	})
	if err != nil {
		return 0, err
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// GetUser returns the identity behind a parsed token.
func (s *AuthService) GetUser(ctx context.Context, id int) (*greenhouse.User, error) {
	rec, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, ErrInvalidToken
	}
	return &rec.User, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, current, next string) error {
	rec, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrInvalidToken
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}
	return s.SetPassword(ctx, userID, next)
}

// SetPassword stores a new hash without checking the old one (admin path).
func (s *AuthService) SetPassword(ctx context.Context, userID int, next string) error {
	hash, err := hashPassword(next)
	if err != nil {
		return err
	}
	return s.users.SetPasswordHash(ctx, userID, hash)
}

func (s *AuthService) issueToken(userID int) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.signingKey)
}

func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
