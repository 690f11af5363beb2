package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/lockout"
	"royalfootwear/internal/models"
	"royalfootwear/internal/pagination"
	"royalfootwear/internal/testutil"
)

var (
	testNow       = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	lockoutPolicy = lockout.DefaultPolicy()
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		env := newTestEnv(t)

		user, err := env.users.Register(ctx, "Alice", "Alice@Example.com", "secret1")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected lowercased email, got %s", user.Email)
		}
		if user.Role != models.RoleCustomer {
			t.Errorf("expected customer role, got %s", user.Role)
		}
		if user.Password == "secret1" {
			t.Error("password must be stored hashed")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.users.Register(ctx, "A", "dup@example.com", "secret1")
		testutil.AssertNoError(t, err)

		_, err = env.users.Register(ctx, "B", "DUP@example.com", "secret2")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("short_password", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.users.Register(ctx, "A", "a@example.com", "12345")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("missing_name", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.users.Register(ctx, "  ", "a@example.com", "secret1")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("create_admin", func(t *testing.T) {
		env := newTestEnv(t)

		admin, err := env.users.CreateAdmin(ctx, "Root", "root@example.com", "secret1")
		testutil.AssertNoError(t, err)
		if !admin.IsAdmin() {
			t.Errorf("expected admin role, got %s", admin.Role)
		}
	})
}

func TestAttemptLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success_resets_counters", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		env.db.Model(user).Update("failed_login_attempts", 3)

		got, err := env.users.AttemptLogin(ctx, user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)

		if got.FailedLoginAttempts != 0 {
			t.Errorf("expected counter reset, got %d", got.FailedLoginAttempts)
		}
		if got.LockedUntil != nil {
			t.Error("expected no lock")
		}
		if got.LastLoginAt == nil || !got.LastLoginAt.Equal(testNow) {
			t.Errorf("expected last login %v, got %v", testNow, got.LastLoginAt)
		}
	})

	t.Run("unknown_email", func(t *testing.T) {
		env := newTestEnv(t)

		_, err := env.users.AttemptLogin(ctx, "ghost@example.com", "whatever")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		var appErr *apperrors.AppError
		errors.As(err, &appErr)
		if appErr.Details != nil {
			t.Errorf("unknown email must not report attempts, got %v", appErr.Details)
		}
	})

	t.Run("wrong_password_reports_attempts_remaining", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)

		for want := 4; want >= 1; want-- {
			_, err := env.users.AttemptLogin(ctx, user.Email, "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

			var appErr *apperrors.AppError
			errors.As(err, &appErr)
			if got := appErr.Details["attempts_remaining"]; got != want {
				t.Errorf("expected %d attempts remaining, got %v", want, got)
			}
		}
	})

	t.Run("locks_after_five_failures", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)

		for i := 0; i < 4; i++ {
			_, err := env.users.AttemptLogin(ctx, user.Email, "wrong")
			testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
		}
		_, err := env.users.AttemptLogin(ctx, user.Email, "wrong")
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")

		var appErr *apperrors.AppError
		errors.As(err, &appErr)
		wantUntil := testNow.Add(2 * time.Hour).Format(time.RFC3339)
		if appErr.Details["locked_until"] != wantUntil {
			t.Errorf("expected locked_until %s, got %v", wantUntil, appErr.Details["locked_until"])
		}

		var stored models.User
		env.db.First(&stored, "id = ?", user.ID)
		if stored.FailedLoginAttempts != 5 {
			t.Errorf("expected 5 failed attempts, got %d", stored.FailedLoginAttempts)
		}
		if stored.LockedUntil == nil || !stored.LockedUntil.Equal(testNow.Add(2*time.Hour)) {
			t.Errorf("expected lock until now+2h, got %v", stored.LockedUntil)
		}
	})

	t.Run("locked_account_rejects_correct_password_without_counting", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		until := testNow.Add(time.Hour)
		env.db.Model(user).Updates(map[string]any{"failed_login_attempts": 5, "locked_until": until})

		_, err := env.users.AttemptLogin(ctx, user.Email, testutil.TestPassword)
		testutil.AssertAppError(t, err, "ACCOUNT_LOCKED")

		var stored models.User
		env.db.First(&stored, "id = ?", user.ID)
		if stored.FailedLoginAttempts != 5 {
			t.Errorf("locked attempt must not change the counter, got %d", stored.FailedLoginAttempts)
		}
	})

	t.Run("expired_lock_allows_login", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		env.db.Model(user).Updates(map[string]any{"failed_login_attempts": 5, "locked_until": testNow.Add(time.Hour)})

		env.clock.Advance(time.Hour + time.Second)

		got, err := env.users.AttemptLogin(ctx, user.Email, testutil.TestPassword)
		testutil.AssertNoError(t, err)
		if got.FailedLoginAttempts != 0 || got.LockedUntil != nil {
			t.Errorf("expected counters cleared, got %d / %v", got.FailedLoginAttempts, got.LockedUntil)
		}
	})

	t.Run("failure_after_expired_lock_restarts_count", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		env.db.Model(user).Updates(map[string]any{"failed_login_attempts": 5, "locked_until": testNow.Add(-time.Minute)})

		_, err := env.users.AttemptLogin(ctx, user.Email, "wrong")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")

		var stored models.User
		env.db.First(&stored, "id = ?", user.ID)
		if stored.FailedLoginAttempts != 1 {
			t.Errorf("expected counter restarted at 1, got %d", stored.FailedLoginAttempts)
		}
	})

	t.Run("concurrent_failures_are_all_counted", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = env.users.AttemptLogin(ctx, user.Email, "wrong")
			}()
		}
		wg.Wait()

		var stored models.User
		env.db.First(&stored, "id = ?", user.ID)
		if stored.FailedLoginAttempts != 5 {
			t.Errorf("expected 5 counted failures, got %d", stored.FailedLoginAttempts)
		}
		if stored.LockedUntil == nil {
			t.Error("expected account to be locked")
		}
	})

	t.Run("inactive_user", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		env.db.Model(user).Update("is_active", false)

		_, err := env.users.AttemptLogin(ctx, user.Email, testutil.TestPassword)
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}

func TestRefreshTokenHash(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db)

	testutil.AssertNoError(t, env.users.StoreRefreshTokenHash(ctx, user.ID, "abc123"))

	hash, err := env.users.GetRefreshTokenHash(ctx, user.ID)
	testutil.AssertNoError(t, err)
	if hash != "abc123" {
		t.Errorf("expected stored hash, got %q", hash)
	}

	err = env.users.StoreRefreshTokenHash(ctx, "00000000-0000-0000-0000-000000000000", "x")
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := testutil.CreateTestUser(t, env.db)

	name := "Bob Royal"
	subscribe := true
	addr := models.Address{Street: "5 Mall Road", City: "Karachi", Country: "Pakistan", ZipCode: "74000", Phone: "+92111"}

	got, err := env.users.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &name, Address: &addr, NewsletterSubscription: &subscribe})
	testutil.AssertNoError(t, err)

	if got.Name != name {
		t.Errorf("expected name %q, got %q", name, got.Name)
	}
	if got.Address != addr {
		t.Errorf("expected address %+v, got %+v", addr, got.Address)
	}
	if !got.NewsletterSubscription {
		t.Error("expected newsletter subscription")
	}

	empty := " "
	_, err = env.users.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: &empty})
	testutil.AssertAppError(t, err, "INVALID_INPUT")
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)
		testutil.AssertNoError(t, env.users.StoreRefreshTokenHash(ctx, user.ID, "old"))

		testutil.AssertNoError(t, env.users.ChangePassword(ctx, user.ID, testutil.TestPassword, "newsecret"))

		_, err := env.users.AttemptLogin(ctx, user.Email, "newsecret")
		testutil.AssertNoError(t, err)

		hash, _ := env.users.GetRefreshTokenHash(ctx, user.ID)
		if hash != "" {
			t.Error("expected refresh token to be revoked")
		}
	})

	t.Run("wrong_current_password", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)

		err := env.users.ChangePassword(ctx, user.ID, "nope", "newsecret")
		testutil.AssertAppError(t, err, "INCORRECT_PASSWORD")
	})

	t.Run("short_new_password", func(t *testing.T) {
		env := newTestEnv(t)
		user := testutil.CreateTestUser(t, env.db)

		err := env.users.ChangePassword(ctx, user.ID, testutil.TestPassword, "123")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestListUsersAndSetActive(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		testutil.CreateTestUser(t, env.db)
	}
	target := testutil.CreateTestUser(t, env.db)

	page, err := env.users.ListUsers(ctx, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 4 || len(page.Data) != 2 || page.TotalPages != 2 {
		t.Errorf("unexpected page: total=%d len=%d pages=%d", page.TotalItems, len(page.Data), page.TotalPages)
	}

	got, err := env.users.SetUserActive(ctx, target.ID, false)
	testutil.AssertNoError(t, err)
	if got.IsActive {
		t.Error("expected user to be inactive")
	}

	_, err = env.users.GetUserByEmail(ctx, target.Email)
	testutil.AssertAppError(t, err, "USER_NOT_FOUND")
}
