package authControllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Adeleye080/DShop/models"
	"github.com/Adeleye080/DShop/security"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.AuditLog{}))
	return db
}

func authRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/auth/register", Register(db))
	r.GET("/auth/verify-email", VerifyEmail(db))
	r.POST("/auth/login", Login(db))
	r.POST("/auth/refresh", Refresh(db))
	r.POST("/auth/password-reset/request", RequestPasswordReset(db))
	r.POST("/auth/password-reset/confirm", ResetPassword(db))
	return r
}

func doJSON(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterLoginFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := authRouter(db)

	w := doJSON(r, http.MethodPost, "/auth/register", gin.H{
		"email":     "new@example.com",
		"password":  "Sup3r$ecret",
		"full_name": "New User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var tokens TokenResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	// Login is blocked until the email is verified.
	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email":    "new@example.com",
		"password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "new@example.com").First(&user).Error)
	require.NotEmpty(t, user.VerificationToken)

	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email?token="+user.VerificationToken, nil)
	wv := httptest.NewRecorder()
	r.ServeHTTP(wv, req)
	require.Equal(t, http.StatusOK, wv.Code)

	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email":    "new@example.com",
		"password": "Sup3r$ecret",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	db := newTestDB(t)
	r := authRouter(db)

	w := doJSON(r, http.MethodPost, "/auth/register", gin.H{
		"email":    "weak@example.com",
		"password": "password",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := authRouter(db)

	body := gin.H{"email": "dup@example.com", "password": "Sup3r$ecret"}
	require.Equal(t, http.StatusCreated, doJSON(r, http.MethodPost, "/auth/register", body).Code)
	assert.Equal(t, http.StatusConflict, doJSON(r, http.MethodPost, "/auth/register", body).Code)
}

func TestDuplicateKeyMapsToConflict(t *testing.T) {
	db := newTestDB(t)

	// Simulate two registrations racing past the email pre-check: the
	// second insert must surface as a conflict, not a generic failure.
	require.NoError(t, db.Create(&models.User{Email: "race@example.com", HashedPassword: "x"}).Error)
	err := db.Create(&models.User{Email: "race@example.com", HashedPassword: "x"}).Error
	require.Error(t, err)
	assert.True(t, isDuplicateKey(err))
	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
}

func TestLoginWrongPassword(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := authRouter(db)

	hashed, err := security.HashPassword("Sup3r$ecret")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email: "known@example.com", HashedPassword: hashed, EmailVerified: true,
	}).Error)

	w := doJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email":    "known@example.com",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := authRouter(db)

	user := &models.User{Email: "r@example.com", HashedPassword: "x", EmailVerified: true}
	require.NoError(t, db.Create(user).Error)
	refresh, err := security.NewRefreshToken(user.ID, string(user.Role))
	require.NoError(t, err)

	w := doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, w.Code)

	// The spent token is revoked; replaying it fails.
	w = doJSON(r, http.MethodPost, "/auth/refresh", gin.H{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPasswordResetDoesNotDiscloseAccounts(t *testing.T) {
	db := newTestDB(t)
	r := authRouter(db)

	w := doJSON(r, http.MethodPost, "/auth/password-reset/request",
		gin.H{"email": "nobody@example.com"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPasswordResetFlow(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := newTestDB(t)
	r := authRouter(db)

	hashed, err := security.HashPassword("Old$ecret1")
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.User{
		Email: "reset@example.com", HashedPassword: hashed, EmailVerified: true,
	}).Error)

	w := doJSON(r, http.MethodPost, "/auth/password-reset/request",
		gin.H{"email": "reset@example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	var user models.User
	require.NoError(t, db.Where("email = ?", "reset@example.com").First(&user).Error)
	require.NotEmpty(t, user.PasswordResetToken)

	w = doJSON(r, http.MethodPost, "/auth/password-reset/confirm", gin.H{
		"token":        user.PasswordResetToken,
		"new_password": "New$ecret1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Old password no longer works, new one does.
	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email": "reset@example.com", "password": "Old$ecret1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = doJSON(r, http.MethodPost, "/auth/login", gin.H{
		"email": "reset@example.com", "password": "New$ecret1",
	})
	assert.Equal(t, http.StatusOK, w.Code)
}
