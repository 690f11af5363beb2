package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "royalfootwear/internal/errors"
	"royalfootwear/internal/middleware"
	"royalfootwear/internal/models"
	"royalfootwear/internal/services"
)

func testUser() *models.User {
	u := &models.User{Name: "Test User", Email: "test@example.com", Role: models.RoleCustomer, IsActive: true}
	u.ID = testUserID
	return u
}

func setupAuthRouter(userSvc *mockUserService, audit *mockAuditService) *gin.Engine {
	h := NewAuthHandler(userSvc, audit)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.POST("/auth/refresh", h.Refresh)

	authed := r.Group("/", injectUser(testUserID, models.RoleCustomer))
	authed.POST("/auth/logout", h.Logout)
	authed.GET("/profile", h.GetProfile)
	authed.PUT("/profile", h.UpdateProfile)
	authed.PUT("/profile/password", h.ChangePassword)
	return r
}

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		registerFn func(ctx context.Context, name, email, password string) (*models.User, error)
		wantStatus int
		wantCode   string
	}{
		{
			name: "valid",
			body: `{"name":"Test User","email":"test@example.com","password":"password123"}`,
			registerFn: func(_ context.Context, _, _, _ string) (*models.User, error) {
				return testUser(), nil
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing_email",
			body:       `{"name":"Test User","password":"password123"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "short_password",
			body:       `{"name":"Test User","email":"test@example.com","password":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name: "duplicate_email",
			body: `{"name":"Test User","email":"test@example.com","password":"password123"}`,
			registerFn: func(_ context.Context, _, _, _ string) (*models.User, error) {
				return nil, apperrors.ErrDuplicateEmail
			},
			wantStatus: http.StatusConflict,
			wantCode:   "DUPLICATE_EMAIL",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var storedHash string
			userSvc := &mockUserService{
				registerFn: tc.registerFn,
				storeRefreshTokenHashFn: func(_ context.Context, _, hash string) error {
					storedHash = hash
					return nil
				},
			}
			r := setupAuthRouter(userSvc, &mockAuditService{})
			rec := doRequest(r, http.MethodPost, "/auth/register", tc.body)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			result := parseJSON(t, rec)
			if tc.wantCode != "" {
				assertErrorCode(t, result, tc.wantCode)
				return
			}
			refresh, _ := result["refresh_token"].(string)
			if result["access_token"] == "" || refresh == "" {
				t.Fatalf("expected tokens in response, got %v", result)
			}
			if storedHash != middleware.HashToken(refresh) {
				t.Error("expected the refresh token hash to be stored")
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	lockedUntil := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC).Format(time.RFC3339)

	tests := []struct {
		name        string
		body        string
		loginFn     func(ctx context.Context, email, password string) (*models.User, error)
		wantStatus  int
		wantCode    string
		wantDetails map[string]any
	}{
		{
			name: "success",
			body: `{"email":"test@example.com","password":"password123"}`,
			loginFn: func(_ context.Context, _, _ string) (*models.User, error) {
				return testUser(), nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid_email",
			body:       `{"email":"not-an-email","password":"password123"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_INPUT",
		},
		{
			name: "wrong_password_reports_attempts_remaining",
			body: `{"email":"test@example.com","password":"wrong"}`,
			loginFn: func(_ context.Context, _, _ string) (*models.User, error) {
				return nil, apperrors.WithDetails(apperrors.ErrInvalidCredentials, apperrors.ErrInvalidCredentials.Message,
					map[string]any{"attempts_remaining": 3})
			},
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "INVALID_CREDENTIALS",
			wantDetails: map[string]any{"attempts_remaining": float64(3)},
		},
		{
			name: "locked_account",
			body: `{"email":"test@example.com","password":"password123"}`,
			loginFn: func(_ context.Context, _, _ string) (*models.User, error) {
				return nil, apperrors.WithDetails(apperrors.ErrAccountLocked, "Account is temporarily locked",
					map[string]any{"locked_until": lockedUntil})
			},
			wantStatus:  http.StatusLocked,
			wantCode:    "ACCOUNT_LOCKED",
			wantDetails: map[string]any{"locked_until": lockedUntil},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := setupAuthRouter(&mockUserService{attemptLoginFn: tc.loginFn}, &mockAuditService{})
			rec := doRequest(r, http.MethodPost, "/auth/login", tc.body)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
			result := parseJSON(t, rec)
			if tc.wantCode == "" {
				if _, ok := result["access_token"].(string); !ok {
					t.Errorf("expected access_token, got %v", result)
				}
				return
			}
			assertErrorCode(t, result, tc.wantCode)
			if tc.wantDetails != nil {
				errObj := result["error"].(map[string]any)
				details, ok := errObj["details"].(map[string]any)
				if !ok {
					t.Fatalf("expected details in error, got %v", errObj)
				}
				for k, v := range tc.wantDetails {
					if details[k] != v {
						t.Errorf("details[%q] = %v, want %v", k, details[k], v)
					}
				}
			}
		})
	}
}

func TestAuthHandler_Refresh(t *testing.T) {
	user := testUser()
	refresh, err := middleware.GenerateRefreshToken(user)
	if err != nil {
		t.Fatalf("failed to sign refresh token: %v", err)
	}
	access, err := middleware.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to sign access token: %v", err)
	}

	t.Run("rotates_current_token", func(t *testing.T) {
		stored := middleware.HashToken(refresh)
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(_ context.Context, _ string) (string, error) { return stored, nil },
			storeRefreshTokenHashFn: func(_ context.Context, _, hash string) error {
				stored = hash
				return nil
			},
		}
		r := setupAuthRouter(userSvc, &mockAuditService{})
		rec := doRequest(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if stored != middleware.HashToken(result["refresh_token"].(string)) {
			t.Error("expected the new refresh token hash to replace the old one")
		}
	})

	t.Run("revoked_token", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(_ context.Context, _ string) (string, error) { return "", nil },
		}
		r := setupAuthRouter(userSvc, &mockAuditService{})
		rec := doRequest(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "UNAUTHORIZED")
	})

	t.Run("access_token_rejected", func(t *testing.T) {
		r := setupAuthRouter(&mockUserService{}, &mockAuditService{})
		rec := doRequest(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+access+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("inactive_user", func(t *testing.T) {
		userSvc := &mockUserService{
			getRefreshTokenHashFn: func(_ context.Context, _ string) (string, error) {
				return middleware.HashToken(refresh), nil
			},
			getUserByIDFn: func(_ context.Context, _ string) (*models.User, error) {
				u := testUser()
				u.IsActive = false
				return u, nil
			},
		}
		r := setupAuthRouter(userSvc, &mockAuditService{})
		rec := doRequest(r, http.MethodPost, "/auth/refresh", `{"refresh_token":"`+refresh+`"}`)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	stored := "something"
	userSvc := &mockUserService{
		storeRefreshTokenHashFn: func(_ context.Context, _, hash string) error {
			stored = hash
			return nil
		},
	}
	r := setupAuthRouter(userSvc, &mockAuditService{})
	rec := doRequest(r, http.MethodPost, "/auth/logout", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if stored != "" {
		t.Errorf("expected refresh token hash to be cleared, got %q", stored)
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("get_profile", func(t *testing.T) {
		r := setupAuthRouter(&mockUserService{}, &mockAuditService{})
		rec := doRequest(r, http.MethodGet, "/profile", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user := parseJSON(t, rec)["user"].(map[string]any)
		if user["id"] != testUserID {
			t.Errorf("expected id %s, got %v", testUserID, user["id"])
		}
	})

	t.Run("update_profile_passes_fields", func(t *testing.T) {
		var got struct {
			name string
			city string
		}
		userSvc := &mockUserService{
			updateProfileFn: func(_ context.Context, _ string, update services.ProfileUpdate) (*models.User, error) {
				if update.Name != nil {
					got.name = *update.Name
				}
				if update.Address != nil {
					got.city = update.Address.City
				}
				return testUser(), nil
			},
		}
		r := setupAuthRouter(userSvc, &mockAuditService{})
		rec := doRequest(r, http.MethodPut, "/profile", `{"name":"New Name","address":{"city":"Colombo"}}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.name != "New Name" || got.city != "Colombo" {
			t.Errorf("unexpected update: %+v", got)
		}
	})

	t.Run("change_password_incorrect", func(t *testing.T) {
		userSvc := &mockUserService{
			changePasswordFn: func(_ context.Context, _, _, _ string) error { return apperrors.ErrIncorrectPassword },
		}
		r := setupAuthRouter(userSvc, &mockAuditService{})
		rec := doRequest(r, http.MethodPut, "/profile/password", `{"current_password":"bad","new_password":"newpass123"}`)
		assertErrorCode(t, parseJSON(t, rec), "INCORRECT_PASSWORD")
	})

	t.Run("change_password_is_audited", func(t *testing.T) {
		audit := &mockAuditService{}
		r := setupAuthRouter(&mockUserService{}, audit)
		rec := doRequest(r, http.MethodPut, "/profile/password", `{"current_password":"password123","new_password":"newpass123"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !audit.logged("CHANGE_PASSWORD") {
			t.Error("expected CHANGE_PASSWORD audit entry")
		}
	})
}
