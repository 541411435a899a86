package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/token"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthTestApp(t *testing.T) (*fiber.App, repository.UserRepository) {
	t.Helper()
	t.Setenv("JWT_SECRET", "middleware-test-secret")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	userRepo := repository.NewUserRepo(db)

	app := fiber.New()
	app.Get("/private", RequireAuth(userRepo), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": c.Locals("user_id")})
	})
	app.Get("/admin", RequireAuth(userRepo), RequireRole(model.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(200)
	})
	return app, userRepo
}

func seedAuthUser(t *testing.T, repo repository.UserRepository, role model.Role) *model.User {
	t.Helper()
	user := &model.User{
		FullName: "Test User",
		Email:    fmt.Sprintf("%s@example.com", uuid.New().String()),
		Role:     role,
	}
	require.NoError(t, user.SetPassword("password123"))
	require.NoError(t, repo.Create(user))
	return user
}

func TestRequireAuth_MissingToken(t *testing.T) {
	app, _ := newAuthTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/private", nil))
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	app, _ := newAuthTestApp(t)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Token abc123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRequireAuth_GarbageToken(t *testing.T) {
	app, _ := newAuthTestApp(t)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRequireAuth_RefreshTokenRejected(t *testing.T) {
	app, repo := newAuthTestApp(t)
	user := seedAuthUser(t, repo, model.RoleBuyer)

	refresh, err := token.GenerateRefreshToken(user.ID, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRequireAuth_ValidToken(t *testing.T) {
	app, repo := newAuthTestApp(t)
	user := seedAuthUser(t, repo, model.RoleBuyer)

	access, err := token.GenerateAccessToken(user.ID, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}

func TestRequireAuth_CookieFallback(t *testing.T) {
	app, repo := newAuthTestApp(t)
	user := seedAuthUser(t, repo, model.RoleBuyer)

	access, err := token.GenerateAccessToken(user.ID, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: access})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}

func TestRequireAuth_UnknownUser(t *testing.T) {
	app, _ := newAuthTestApp(t)

	access, err := token.GenerateAccessToken(uuid.New(), string(model.RoleBuyer))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRequireAuth_BlockedUser(t *testing.T) {
	app, repo := newAuthTestApp(t)
	user := seedAuthUser(t, repo, model.RoleBuyer)
	require.NoError(t, repo.SetBlocked(user.ID, true))

	access, err := token.GenerateAccessToken(user.ID, string(user.Role))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/private", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 401, resp.StatusCode)
}

func TestRequireRole(t *testing.T) {
	app, repo := newAuthTestApp(t)

	buyer := seedAuthUser(t, repo, model.RoleBuyer)
	buyerToken, err := token.GenerateAccessToken(buyer.ID, string(buyer.Role))
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+buyerToken)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 403, resp.StatusCode)

	admin := seedAuthUser(t, repo, model.RoleAdmin)
	adminToken, err := token.GenerateAccessToken(admin.ID, string(admin.Role))
	require.NoError(t, err)

	req = httptest.NewRequest("GET", "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
}
