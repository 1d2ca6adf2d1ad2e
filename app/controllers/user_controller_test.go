package controllers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/MoritzHellmann/TaskPeak/app/models"
	"github.com/MoritzHellmann/TaskPeak/app/repository"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/billing"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/usercontext"
)

var (
	factoryMockOnce sync.Once
	factoryMock     sqlmock.Sqlmock
)

// initFactoryMock backs the global repository factory with a sqlmock
// connection. The factory is a process-wide singleton, so the mock is shared
// and expectations are set per test.
func initFactoryMock(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	factoryMockOnce.Do(func() {
		sqlDB, mock, err := sqlmock.New()
		require.NoError(t, err)

		db, err := gorm.Open(mysql.New(mysql.Config{
			Conn:                      sqlDB,
			SkipInitializeWithVersion: true,
		}), &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		repository.InitializeFactory(db)
		factoryMock = mock
	})
	return factoryMock
}

func newUserTestApp(userCtx usercontext.UserContext) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(usercontext.KeyUserContext, userCtx)
		return c.Next()
	})
	app.Get("/me/analytics", HandleGetAnalytics)
	app.Get("/me/export/tasks", HandleExportTasks)
	return app
}

// A webhook downgrade cannot reach the user's session, so the gate must read
// the profile row: a stale premium session gets no analytics.
func TestAnalyticsDeniedAfterDowngrade(t *testing.T) {
	repo := &stubRepository{profiles: map[uint]*models.UserProfile{
		7: {UserID: 7, Plan: "free"},
	}}
	InitializeBillingController(billing.NewService(repo, &stubProvider{}))
	app := newUserTestApp(usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: "premium"})

	resp, err := app.Test(httptest.NewRequest("GET", "/me/analytics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "premium_required", body["error"])
}

// The converse: a fresh upgrade is visible immediately even while the
// session still carries the free plan from login.
func TestAnalyticsAllowedOnFreshUpgrade(t *testing.T) {
	mock := initFactoryMock(t)

	repo := &stubRepository{profiles: map[uint]*models.UserProfile{
		7: {UserID: 7, Plan: "premium", StripeCustomerID: "cus_test"},
	}}
	InitializeBillingController(billing.NewService(repo, &stubProvider{}))
	app := newUserTestApp(usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: "free"})

	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE user_id = ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "user_id", "title", "status", "priority"}).
			AddRow(1, "u-1", 7, "ship release", "done", "high").
			AddRow(2, "u-2", 7, "write notes", "todo", "medium"))

	resp, err := app.Test(httptest.NewRequest("GET", "/me/analytics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Total    int            `json:"total"`
		ByStatus map[string]int `json:"by_status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 2, body.Total)
	assert.Equal(t, 1, body.ByStatus["done"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExportDeniedAfterDowngrade(t *testing.T) {
	repo := &stubRepository{profiles: map[uint]*models.UserProfile{
		7: {UserID: 7, Plan: "free"},
	}}
	InitializeBillingController(billing.NewService(repo, &stubProvider{}))
	app := newUserTestApp(usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: "premium"})

	resp, err := app.Test(httptest.NewRequest("GET", "/me/export/tasks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestExportAllowedForPremium(t *testing.T) {
	mock := initFactoryMock(t)

	repo := &stubRepository{profiles: map[uint]*models.UserProfile{
		7: {UserID: 7, Plan: "premium"},
	}}
	InitializeBillingController(billing.NewService(repo, &stubProvider{}))
	app := newUserTestApp(usercontext.UserContext{UserID: 7, IsLoggedIn: true, Plan: "premium"})

	mock.ExpectQuery("SELECT \\* FROM `tasks` WHERE user_id = ").
		WillReturnRows(sqlmock.NewRows([]string{"id", "uuid", "user_id", "title", "status", "priority"}).
			AddRow(1, "u-1", 7, "ship release", "done", "high"))

	resp, err := app.Test(httptest.NewRequest("GET", "/me/export/tasks", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentType), "text/csv")

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "ship release"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
