package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
)

// Claims are the JWT claims issued at login.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
	jwt.RegisteredClaims
}

// SeedAdmin creates or resets the administrator account.
func (s *Service) SeedAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return catalog.Required("username")
	}
	if password == "" {
		return catalog.Required("password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if _, err := s.q.UpsertUser(ctx, database.UpsertUserParams{
		ID:           newPgUUID(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      true,
	}); err != nil {
		return fmt.Errorf("upsert admin: %w", err)
	}
	s.logger.Info("admin account ready", "username", username)
	return nil
}

// Login checks the credentials and returns a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", catalog.ErrInvalidLogin
	}
	user, err := s.q.GetUserByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", catalog.ErrInvalidLogin
	}
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", catalog.ErrInvalidLogin
	}

	token, err := s.IssueToken(PgUUIDToString(user.ID), user.Username, user.IsAdmin)
	if err != nil {
		return "", err
	}
	s.audit(ContextWithClaims(ctx, &Claims{Username: user.Username}), AuditLogParams{
		Action:   ActionLogin,
		Entity:   "user",
		EntityID: PgUUIDToString(user.ID),
	})
	return token, nil
}

// IssueToken signs an HS256 token valid for the configured TTL.
func (s *Service) IssueToken(userID, username string, isAdmin bool) (string, error) {
	now := s.now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		IsAdmin:  isAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies a token and returns its claims. Every failure wraps
// catalog.ErrUnauthorized.
func (s *Service) ParseToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token: %w", catalog.ErrUnauthorized)
	}
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithLeeway(5*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, catalog.ErrUnauthorized)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token: %w", catalog.ErrUnauthorized)
	}
	return claims, nil
}

// MinPasswordLength is the shortest password RegisterUser accepts.
const MinPasswordLength = 8

// RegisterUser creates an account. Only administrators reach it; the HTTP
// layer guards the route.
func (s *Service) RegisterUser(ctx context.Context, username, password string, isAdmin bool) (catalog.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return catalog.Account{}, catalog.Required("username")
	}
	if password == "" {
		return catalog.Account{}, catalog.Required("password")
	}
	if len(password) < MinPasswordLength {
		return catalog.Account{}, catalog.ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("password must have at least %d characters", MinPasswordLength),
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return catalog.Account{}, fmt.Errorf("hash password: %w", err)
	}

	row, err := s.q.InsertUser(ctx, database.InsertUserParams{
		ID:           newPgUUID(),
		Username:     username,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
	})
	if database.IsUniqueViolation(err) {
		return catalog.Account{}, fmt.Errorf("user %s already exists: %w", username, catalog.ErrConflict)
	}
	if err != nil {
		return catalog.Account{}, fmt.Errorf("insert user: %w", err)
	}
	account := accountFromDB(row)
	s.audit(ctx, AuditLogParams{
		Action:   ActionUserRegister,
		Entity:   "user",
		EntityID: account.ID,
		Detail:   map[string]any{"username": username, "is_admin": isAdmin},
	})
	return account, nil
}

// CurrentAccount returns the account behind the claims stored in ctx. A
// token for an account that no longer exists is unauthorized.
func (s *Service) CurrentAccount(ctx context.Context) (catalog.Account, error) {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return catalog.Account{}, fmt.Errorf("no claims: %w", catalog.ErrUnauthorized)
	}
	row, err := s.q.GetUserByUsername(ctx, claims.Username)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Account{}, fmt.Errorf("user %s: %w", claims.Username, catalog.ErrUnauthorized)
	}
	if err != nil {
		return catalog.Account{}, fmt.Errorf("get user: %w", err)
	}
	return accountFromDB(row), nil
}

func accountFromDB(u database.User) catalog.Account {
	return catalog.Account{
		ID:       PgUUIDToString(u.ID),
		Username: u.Username,
		IsAdmin:  u.IsAdmin,
	}
}
