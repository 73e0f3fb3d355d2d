package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"skillforge/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenBytes = 48

// Service turns credentials into bearer sessions and bearer sessions
// back into accounts. It owns the users and sessions tables. The
// storage handle is injected at startup; Service holds no other state.
type Service struct {
	db         *gorm.DB
	bcryptCost int
	sessionTTL time.Duration
}

// NewService constructs the session service. bcryptCost <= 0 falls back
// to cost 10, expiryDays <= 0 to 7 days.
func NewService(db *gorm.DB, bcryptCost, expiryDays int) *Service {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if expiryDays <= 0 {
		expiryDays = 7
	}
	return &Service{
		db:         db,
		bcryptCost: bcryptCost,
		sessionTTL: time.Duration(expiryDays) * 24 * time.Hour,
	}
}

// SessionTTL returns the configured session lifetime.
func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

// NormalizeEmail lower-cases and trims an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new account. The email is normalized and must be
// unique; role defaults to learner when empty. Returns the account
// without the password hash.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*models.SafeUser, error) {
	email = NormalizeEmail(email)
	if role == "" {
		role = models.RoleLearner
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q", role)
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return nil, ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user.Safe(), nil
}

// VerifyCredentials checks email+password and returns the safe account
// view. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *Service) VerifyCredentials(ctx context.Context, email, password string) (*models.SafeUser, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ?", NormalizeEmail(email)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return user.Safe(), nil
}

// CreateSession issues a new bearer token for the account and persists
// it with expiry = now + session TTL. Multiple sessions per account are
// fine; each token is independent.
func (s *Service) CreateSession(ctx context.Context, userID uint) (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	token := hex.EncodeToString(buf)

	session := models.Session{
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.db.WithContext(ctx).Create(&session).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// ResolveSession turns a bearer token back into an account. It fails
// closed: empty token, unknown token, expired session or a vanished
// user all return (nil, nil). Expired rows are deleted on the way out,
// so expiry needs no background sweep.
func (s *Service) ResolveSession(ctx context.Context, token string) (*models.SafeUser, error) {
	if token == "" {
		return nil, nil
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if err := s.db.WithContext(ctx).Where("token = ?", token).
			Delete(&models.Session{}).Error; err != nil {
			return nil, fmt.Errorf("delete expired session: %w", err)
		}
		return nil, nil
	}

	var user models.User
	err = s.db.WithContext(ctx).First(&user, session.UserID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	return user.Safe(), nil
}

// RevokeSession deletes the session row. Idempotent: revoking an
// unknown or already-revoked token is not an error.
func (s *Service) RevokeSession(ctx context.Context, token string) error {
	if err := s.db.WithContext(ctx).Where("token = ?", token).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// RevokeAllSessions deletes every session owned by the account, e.g.
// after a password change.
func (s *Service) RevokeAllSessions(ctx context.Context, userID uint) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).
		Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("delete sessions: %w", err)
	}
	return nil
}

// ChangePassword verifies the current password and replaces the hash.
// Returns false when the current password does not match. It does not
// revoke existing sessions; that is the caller's call.
func (s *Service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) (bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return false, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).
		Update("password_hash", string(hash)).Error; err != nil {
		return false, fmt.Errorf("update password: %w", err)
	}

	return true, nil
}

// UserByID loads the safe view of an account.
func (s *Service) UserByID(ctx context.Context, id uint) (*models.SafeUser, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user.Safe(), nil
}

// UpdateProfile changes name and/or email of an account. Empty fields
// are left untouched. A new email is normalized and checked for
// uniqueness.
func (s *Service) UpdateProfile(ctx context.Context, id uint, name, email string) (*models.SafeUser, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	updates := map[string]interface{}{}
	if name != "" {
		updates["name"] = name
	}
	if email != "" {
		email = NormalizeEmail(email)
		if email != user.Email {
			var count int64
			if err := s.db.WithContext(ctx).Model(&models.User{}).
				Where("email = ? AND id <> ?", email, id).
				Count(&count).Error; err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if count > 0 {
				return nil, ErrDuplicateEmail
			}
		}
		updates["email"] = email
	}
	if len(updates) == 0 {
		return user.Safe(), nil
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	return user.Safe(), nil
}

// CleanupExpiredSessions removes every session past its expiry and
// returns how many rows went away. Expiry is normally handled lazily on
// read; this is the maintenance path for rows nobody ever reads again.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", time.Now()).
		Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
