package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"vapordepot/internal/domain"
	"vapordepot/internal/repos"
)

var (
	ErrBadCreds    = errors.New("invalid email or password")
	ErrEmailTaken  = errors.New("email already in use")
	ErrUnderage    = errors.New("minimum age requirement not met")
	ErrNoJWTSecret = errors.New("jwt secrets are not configured")
)

type AuthService struct {
	Users *repos.UserRepo

	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	MinAge        int
}

type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	DOB      string `json:"dob"` // YYYY-MM-DD
}

func (s *AuthService) Register(in RegisterInput) (*domain.User, TokenPair, error) {
	dob, err := time.Parse("2006-01-02", in.DOB)
	if err != nil {
		return nil, TokenPair{}, fmt.Errorf("invalid date of birth: %w", err)
	}
	if age(dob, time.Now()) < s.MinAge {
		return nil, TokenPair{}, ErrUnderage
	}
	if existing, err := s.Users.ByEmail(in.Email); err == nil && existing != nil {
		return nil, TokenPair{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 12)
	if err != nil {
		return nil, TokenPair{}, err
	}
	u := domain.User{
		ID:    uuid.NewString(),
		Email: in.Email,
		Name:  in.Name,
		Hash:  string(hash),
		DOB:   in.DOB,
		Role:  "customer",
	}
	if err := s.Users.Create(u); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.tokens(&u)
	return &u, pair, err
}

func (s *AuthService) Login(email, password string) (*domain.User, TokenPair, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, TokenPair{}, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, TokenPair{}, ErrBadCreds
	}
	pair, err := s.tokens(u)
	return u, pair, err
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *AuthService) Refresh(refreshToken string) (TokenPair, error) {
	claims, err := s.parse(refreshToken, s.RefreshSecret)
	if err != nil {
		return TokenPair{}, err
	}
	u, err := s.Users.ByID(claims.UserID)
	if err != nil {
		return TokenPair{}, ErrBadCreds
	}
	return s.tokens(u)
}

// Verify validates an access token and returns its claims.
func (s *AuthService) Verify(accessToken string) (*Claims, error) {
	return s.parse(accessToken, s.AccessSecret)
}

func (s *AuthService) tokens(u *domain.User) (TokenPair, error) {
	if s.AccessSecret == "" || s.RefreshSecret == "" {
		return TokenPair{}, ErrNoJWTSecret
	}
	access, err := s.sign(u, s.AccessSecret, s.AccessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.sign(u, s.RefreshSecret, s.RefreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sign(u *domain.User, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

func (s *AuthService) parse(token, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrNoJWTSecret
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrBadCreds
	}
	return &claims, nil
}

func age(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
