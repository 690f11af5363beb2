package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"royalfootwear/internal/clock"
	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/lock"
	"royalfootwear/internal/lockout"
	"royalfootwear/internal/logger"
	"royalfootwear/internal/metrics"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
)

// MinPasswordLength is the shortest password accepted at registration and password change.
const MinPasswordLength = 6

// userService handles account and authentication logic.
type userService struct {
	db      *gorm.DB
	locker  lock.Locker
	policy  lockout.Policy
	clock   clock.Clock
	metrics *metrics.Metrics
}

// NewUserService creates a new UserServicer.
func NewUserService(db *gorm.DB, locker lock.Locker, policy lockout.Policy, clk clock.Clock, m *metrics.Metrics) UserServicer {
	if clk == nil {
		clk = clock.Real{}
	}
	return &userService{db: db, locker: locker, policy: policy, clock: clk, metrics: m}
}

// Register creates a customer account.
func (s *userService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RoleCustomer)
}

// CreateAdmin creates an admin account.
func (s *userService) CreateAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	return s.createUser(ctx, name, email, password, models.RoleAdmin)
}

func (s *userService) createUser(ctx context.Context, name, email, password string, role models.Role) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" || email == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name, email and password are required")
	}
	if len(password) < MinPasswordLength {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	db := s.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateEmail
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return user, nil
}

// GetUserByEmail retrieves an active user by email
func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// GetUserByID retrieves a user by ID
func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &user, nil
}

// AttemptLogin authenticates email and password under the lockout policy.
// Attempts for one account are serialized so concurrent failures are all counted.
func (s *userService) AttemptLogin(ctx context.Context, email, password string) (*models.User, error) {
	log := logger.For("auth")

	candidate, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			s.metrics.RecordLogin(lockout.OutcomeInvalidCredential.String(), false)
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	var (
		user     *models.User
		decision lockout.Decision
	)
	err = lock.WithLock(ctx, s.locker, lock.Keys.Login(candidate.ID), lock.DefaultOptions(), func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current models.User
			if err := tx.Where("id = ?", candidate.ID).First(&current).Error; err != nil {
				return err
			}

			decision = s.policy.Evaluate(current.LockoutState(), func() bool {
				return bcrypt.CompareHashAndPassword([]byte(current.Password), []byte(password)) == nil
			}, s.clock.Now())

			if decision.Changed {
				current.ApplyLockoutState(decision.State)
				if err := tx.Model(&current).Select("failed_login_attempts", "locked_until", "last_login_at").Updates(&current).Error; err != nil {
					return err
				}
			}
			user = &current
			return nil
		})
	})
	if err != nil {
		return nil, asPersistenceError(err)
	}

	lockedNow := decision.Outcome == lockout.OutcomeLocked && decision.Changed
	s.metrics.RecordLogin(decision.Outcome.String(), lockedNow)

	switch decision.Outcome {
	case lockout.OutcomeSuccess:
		return user, nil
	case lockout.OutcomeLocked:
		if lockedNow {
			log.Warnw("account locked after repeated failed logins", "user_id", user.ID, "locked_until", user.LockedUntil)
		}
		return nil, apperrors.WithDetails(apperrors.ErrAccountLocked,
			"Account is temporarily locked due to too many failed login attempts. Please try again later.",
			map[string]any{"locked_until": decision.State.LockedUntil.UTC().Format(time.RFC3339)})
	default:
		return nil, apperrors.WithDetails(apperrors.ErrInvalidCredentials,
			apperrors.ErrInvalidCredentials.Message,
			map[string]any{"attempts_remaining": decision.AttemptsRemaining})
	}
}

// StoreRefreshTokenHash saves the SHA-256 hash of the user's current refresh token.
func (s *userService) StoreRefreshTokenHash(ctx context.Context, userID, tokenHash string) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("refresh_token_hash", tokenHash)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

// GetRefreshTokenHash returns the stored refresh token hash.
func (s *userService) GetRefreshTokenHash(ctx context.Context, userID string) (string, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.RefreshTokenHash, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *userService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = name
	}
	if update.Avatar != nil {
		updates["avatar"] = *update.Avatar
	}
	if update.NewsletterSubscription != nil {
		updates["newsletter_subscription"] = *update.NewsletterSubscription
	}
	if a := update.Address; a != nil {
		updates["address_street"] = a.Street
		updates["address_city"] = a.City
		updates["address_state"] = a.State
		updates["address_country"] = a.Country
		updates["address_zip_code"] = a.ZipCode
		updates["address_phone"] = a.Phone
	}
	if len(updates) == 0 {
		return user, nil
	}

	if err := s.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetUserByID(ctx, userID)
}

// ChangePassword replaces the password after verifying the current one.
func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if len(newPassword) < MinPasswordLength {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "password must be at least 6 characters")
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)) != nil {
		return apperrors.ErrIncorrectPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	// a new password also revokes the outstanding refresh token
	if err := s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"password":           string(hashed),
		"refresh_token_hash": "",
	}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListUsers returns a page of users, newest first.
func (s *userService) ListUsers(ctx context.Context, page pagination.PageRequest) (*pagination.PageResponse[models.User], error) {
	query := s.db.WithContext(ctx).Model(&models.User{})
	order := func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC") }
	resp, err := pagination.Find[models.User](query, page, order)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// SetUserActive enables or disables a user. Inactive users cannot log in.
func (s *userService) SetUserActive(ctx context.Context, userID string, active bool) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrUserNotFound
	}
	return s.GetUserByID(ctx, userID)
}
