package services

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// User is the session identity consumed by the managers.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// AuthService is the authentication boundary. Two implementations exist:
// JWTAuth (persisted accounts, signed tokens) and DemoAuth (any
// credentials succeed, sessions live only in memory). The implementation
// is chosen once at startup.
type AuthService interface {
	SignUp(email, password string) (User, string, error)
	SignIn(email, password string) (User, string, error)
	Verify(token string) (User, error)
}

func validateCredentials(email, password string) error {
	if email == "" || password == "" {
		return newValidationError("email and password are required")
	}
	if !strings.Contains(email, "@") {
		return newValidationError("please enter a valid email address")
	}
	if len(password) < 6 {
		return newValidationError("password must be at least 6 characters")
	}
	return nil
}

// JWTAuth stores accounts in the users table and issues HS256 tokens.
type JWTAuth struct {
	db        *sql.DB
	jwtSecret []byte
}

func NewJWTAuth(db *sql.DB, jwtSecret string) *JWTAuth {
	return &JWTAuth{
		db:        db,
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *JWTAuth) SignUp(email, password string) (User, string, error) {
	if err := validateCredentials(email, password); err != nil {
		return User{}, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := User{
		ID:    uuid.NewString(),
		Email: email,
		Name:  strings.Split(email, "@")[0],
	}
	_, err = s.db.Exec(
		`INSERT INTO users (id, email, name, password_hash) VALUES (?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, string(hash))
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return User{}, "", newValidationError("email already registered")
		}
		return User{}, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.createJWT(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *JWTAuth) SignIn(email, password string) (User, string, error) {
	if err := validateCredentials(email, password); err != nil {
		return User{}, "", err
	}

	var (
		user User
		hash string
	)
	row := s.db.QueryRow(`SELECT id, email, name, password_hash FROM users WHERE email = ?`, email)
	err := row.Scan(&user.ID, &user.Email, &user.Name, &hash)
	if err == sql.ErrNoRows {
		return User{}, "", newValidationError("invalid email or password")
	}
	if err != nil {
		return User{}, "", fmt.Errorf("failed to query user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, "", newValidationError("invalid email or password")
	}

	token, err := s.createJWT(user)
	if err != nil {
		return User{}, "", err
	}
	return user, token, nil
}

func (s *JWTAuth) Verify(tokenString string) (User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return User{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return User{}, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return User{}, errors.New("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return User{}, errors.New("subject claim missing")
	}
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	return User{ID: sub, Email: email, Name: name}, nil
}

func (s *JWTAuth) createJWT(user User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"name":  user.Name,
		"exp":   time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// DemoAuth accepts any well-formed credentials and keeps sessions in an
// in-memory token map. Nothing survives a restart.
type DemoAuth struct {
	mu       sync.Mutex
	sessions map[string]User // token -> user
}

func NewDemoAuth() *DemoAuth {
	return &DemoAuth{sessions: make(map[string]User)}
}

func (s *DemoAuth) SignUp(email, password string) (User, string, error) {
	return s.SignIn(email, password)
}

func (s *DemoAuth) SignIn(email, password string) (User, string, error) {
	if err := validateCredentials(email, password); err != nil {
		return User{}, "", err
	}

	// Same email always maps to the same demo identity so a returning
	// user sees the data created earlier in the process lifetime.
	user := User{
		ID:    "demo-" + email,
		Email: email,
		Name:  strings.Split(email, "@")[0],
	}
	token, err := generateSecureToken(32)
	if err != nil {
		return User{}, "", fmt.Errorf("failed to generate token: %w", err)
	}

	s.mu.Lock()
	s.sessions[token] = user
	s.mu.Unlock()
	return user, token, nil
}

func (s *DemoAuth) Verify(token string) (User, error) {
	s.mu.Lock()
	user, exists := s.sessions[token]
	s.mu.Unlock()
	if !exists {
		return User{}, errors.New("invalid or expired token")
	}
	return user, nil
}

// Helper to generate a secure random token
func generateSecureToken(length int) (string, error) {
	b := make([]byte, length)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
