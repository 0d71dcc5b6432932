package auth

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/famchat/famchat/internal/models"
)

// Service is the identity provider: email/password sign-in and sign-up with
// display-name metadata. Credential derivation from display names happens on
// the client side; this service only sees synthetic emails.
type Service struct {
	db                  *sql.DB
	jwtSecret           string
	tokenTTL            time.Duration
	requireConfirmation bool
}

type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func New(db *sql.DB, jwtSecret string, requireConfirmation bool) *Service {
	return NewWithTokenTTL(db, jwtSecret, requireConfirmation, 24*time.Hour)
}

func NewWithTokenTTL(db *sql.DB, jwtSecret string, requireConfirmation bool, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	return &Service{
		db:                  db,
		jwtSecret:           jwtSecret,
		tokenTTL:            tokenTTL,
		requireConfirmation: requireConfirmation,
	}
}

// SignUp creates a profile and, unless email confirmation is required by the
// deployment, a session token. When confirmation is required the profile is
// still created but the returned token is empty; the caller decides what that
// means (the bundled client treats it as a fatal configuration error).
func (s *Service) SignUp(email, password, displayName string) (*models.Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	displayName = strings.TrimSpace(displayName)

	if email == "" || !strings.Contains(email, "@") {
		return nil, "", fmt.Errorf("invalid request")
	}
	if password == "" {
		return nil, "", fmt.Errorf("invalid request")
	}
	if displayName == "" {
		displayName = strings.SplitN(email, "@", 2)[0]
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	identity := &models.Identity{
		ID:          uuid.NewString(),
		DisplayName: displayName,
		Email:       email,
		CreatedAt:   time.Now().UTC(),
	}

	_, err = s.db.Exec(
		"INSERT INTO profiles (id, email, password_hash, display_name, created_at) VALUES (?, ?, ?, ?, ?)",
		identity.ID, identity.Email, string(hash), identity.DisplayName, identity.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, "", fmt.Errorf("email already registered")
		}
		return nil, "", fmt.Errorf("failed to register: %w", err)
	}

	if s.requireConfirmation {
		return identity, "", nil
	}

	token, err := s.GenerateToken(identity.ID, identity.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return identity, token, nil
}

// SignIn authenticates an existing profile and returns it with a session token.
func (s *Service) SignIn(email, password string) (*models.Identity, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	identity := &models.Identity{}
	var passwordHash string

	err := s.db.QueryRow(
		"SELECT id, email, password_hash, display_name, created_at FROM profiles WHERE email = ?",
		email,
	).Scan(&identity.ID, &identity.Email, &passwordHash, &identity.DisplayName, &identity.CreatedAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, "", fmt.Errorf("invalid email or password")
		}
		return nil, "", fmt.Errorf("failed to query profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
		return nil, "", fmt.Errorf("invalid email or password")
	}

	token, err := s.GenerateToken(identity.ID, identity.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return identity, token, nil
}

func (s *Service) GenerateToken(userID, email string) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

// UserExists checks if a profile with the given id exists.
func (s *Service) UserExists(userID string) (bool, error) {
	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM profiles WHERE id = ?)", userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to query profile: %w", err)
	}
	return exists, nil
}
