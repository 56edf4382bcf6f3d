// Package auth checks user credentials and issues session tokens. Login
// attempts are recorded through the structured log, success or failure.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
)

// ErrInvalidCredentials is returned for unknown usernames and wrong
// passwords alike; callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid credentials")

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type Service struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
	clock  Clock
	log    *slog.Logger
}

func NewService(users store.UserStore, secret []byte, ttl time.Duration, clock Clock, log *slog.Logger) *Service {
	if clock == nil {
		clock = systemClock{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:  users,
		secret: secret,
		ttl:    ttl,
		clock:  clock,
		log:    log.With(slog.String("component", "auth")),
	}
}

// Login verifies the username and password and returns the user plus a
// signed token. Empty credentials fail fast without touching storage.
func (s *Service) Login(ctx context.Context, username, password string) (domain.User, string, error) {
	if username == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}

	u, err := s.users.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.log.Info("login failed", slog.String("username", username))
			return domain.User{}, "", ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Info("login failed", slog.String("username", username))
		return domain.User{}, "", ErrInvalidCredentials
	}

	token, err := s.issueToken(u)
	if err != nil {
		return domain.User{}, "", err
	}

	s.log.Info("login succeeded", slog.String("username", username), slog.Int64("user_id", u.ID))
	return u, token, nil
}

// VerifyToken parses and validates a token issued by Login, returning the
// user ID and username claims.
func (s *Service) VerifyToken(tokenString string) (int64, string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !token.Valid {
		return 0, "", ErrInvalidCredentials
	}

	userID, err := strconv.ParseInt(claims.ID, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidCredentials
	}
	return userID, claims.Subject, nil
}

func (s *Service) issueToken(u domain.User) (string, error) {
	now := s.clock.Now()
	claims := jwt.RegisteredClaims{
		ID:        strconv.FormatInt(u.ID, 10),
		Subject:   u.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
