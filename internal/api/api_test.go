package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"scadenze/internal/api"
	"scadenze/internal/database"
	"scadenze/internal/deadline"
	"scadenze/internal/models"

	"github.com/gofiber/fiber/v2"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret-test-secret-test-secret-test")
	os.Setenv("COOKIE_SECURE", "false")
	os.Exit(m.Run())
}

func setupTestDB(t *testing.T) *sql.DB {
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func setupTestApp(db *sql.DB) *fiber.App {
	app := fiber.New()
	api.SetupRoutes(app, db)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, url, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	respBody, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, respBody
}

func registerUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	code, body := doJSON(t, app, "POST", "/api/auth/register", "", models.RegisterRequest{
		Username: username,
		Password: "password123",
	})
	if code != 201 {
		t.Fatalf("register: expected status 201, got %d: %s", code, body)
	}
	var authResp models.AuthResponse
	json.Unmarshal(body, &authResp)
	if authResp.Token == "" {
		t.Fatal("expected token in register response")
	}
	return authResp.Token
}

func daysFromNow(days int) *time.Time {
	t := time.Now().AddDate(0, 0, days)
	return &t
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	registerUser(t, app, "testuser")

	code, body := doJSON(t, app, "POST", "/api/auth/login", "", models.LoginRequest{
		Username: "testuser",
		Password: "password123",
	})
	if code != 200 {
		t.Fatalf("login: expected status 200, got %d: %s", code, body)
	}

	var loginResp models.AuthResponse
	json.Unmarshal(body, &loginResp)
	if loginResp.Token == "" {
		t.Fatal("expected token in login response")
	}

	code, _ = doJSON(t, app, "POST", "/api/auth/login", "", models.LoginRequest{
		Username: "testuser",
		Password: "wrong",
	})
	if code != 401 {
		t.Fatalf("bad password: expected status 401, got %d", code)
	}
}

func TestCreateAndListDeadlines(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	code, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "example.com renewal",
		Category: models.CategoryDomain,
		Payload:  "example.com|ACME|C-1|aruba||",
		DueDate:  daysFromNow(30),
		Priority: models.PriorityHigh,
	})
	if code != 201 {
		t.Fatalf("create: expected status 201, got %d: %s", code, body)
	}

	var created api.DeadlineView
	json.Unmarshal(body, &created)
	if created.ID == "" {
		t.Fatal("expected store-assigned id")
	}
	if created.Status != models.StatusActive {
		t.Fatalf("expected active status, got %s", created.Status)
	}
	if created.Bucket != deadline.BucketActive {
		t.Fatalf("30 days out should classify active, got %s", created.Bucket)
	}

	code, body = doJSON(t, app, "GET", "/api/deadlines/", token, nil)
	if code != 200 {
		t.Fatalf("list: expected status 200, got %d", code)
	}
	var views []api.DeadlineView
	json.Unmarshal(body, &views)
	if len(views) != 1 {
		t.Fatalf("expected 1 deadline, got %d", len(views))
	}
}

func TestCreateRequiresDueDateExceptOneTime(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	code, _ := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "missing due",
		Category: models.CategoryContract,
		Payload:  "supply|ACME|1200|yearly",
	})
	if code != 400 {
		t.Fatalf("contract without due date: expected status 400, got %d", code)
	}

	// One-time subscription: no due date needed, priority forced to medium.
	code, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "Licenza una tantum",
		Category: models.CategorySubscription,
		Payload:  "|2024-01-01|49.99|",
		Priority: models.PriorityHigh,
	})
	if code != 201 {
		t.Fatalf("one-time subscription: expected status 201, got %d: %s", code, body)
	}
	var created api.DeadlineView
	json.Unmarshal(body, &created)
	if created.Priority != models.PriorityMedium {
		t.Fatalf("one-time subscription priority should be forced to medium, got %s", created.Priority)
	}
}

func TestCategoryIsImmutable(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	_, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "example.com",
		Category: models.CategoryDomain,
		DueDate:  daysFromNow(10),
	})
	var created api.DeadlineView
	json.Unmarshal(body, &created)

	code, _ := doJSON(t, app, "PUT", "/api/deadlines/"+created.ID, token, models.UpdateDeadlineRequest{
		Title:    "example.com",
		Category: models.CategorySocial,
		DueDate:  daysFromNow(10),
	})
	if code != 400 {
		t.Fatalf("category change: expected status 400, got %d", code)
	}
}

func TestToggleComplete(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	_, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "contract",
		Category: models.CategoryContract,
		DueDate:  daysFromNow(3),
	})
	var created api.DeadlineView
	json.Unmarshal(body, &created)

	code, body := doJSON(t, app, "PUT", "/api/deadlines/"+created.ID+"/toggle", token, nil)
	if code != 200 {
		t.Fatalf("toggle: expected status 200, got %d: %s", code, body)
	}
	var toggled api.DeadlineView
	json.Unmarshal(body, &toggled)
	if toggled.Status != models.StatusCompleted || toggled.Bucket != deadline.BucketClosed {
		t.Fatalf("expected completed/closed, got %s/%s", toggled.Status, toggled.Bucket)
	}

	_, body = doJSON(t, app, "PUT", "/api/deadlines/"+created.ID+"/toggle", token, nil)
	json.Unmarshal(body, &toggled)
	if toggled.Status != models.StatusActive {
		t.Fatalf("second toggle should reactivate, got %s", toggled.Status)
	}
}

func TestRenewDeadline(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	_, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "Hosting",
		Category: models.CategorySubscription,
		Payload:  "3m|2024-01-01|9.99|",
		DueDate:  daysFromNow(-10),
	})
	var created api.DeadlineView
	json.Unmarshal(body, &created)

	code, body := doJSON(t, app, "PUT", "/api/deadlines/"+created.ID+"/renew", token, nil)
	if code != 200 {
		t.Fatalf("renew: expected status 200, got %d: %s", code, body)
	}
	var renewed api.DeadlineView
	json.Unmarshal(body, &renewed)
	if renewed.Status != models.StatusActive {
		t.Fatalf("renew should reactivate, got %s", renewed.Status)
	}
	// Lapsed due date anchors to today, so the next due date is three months
	// out from now, not from the stale date.
	want := deadline.AddMonths(time.Now(), 3).Format("2006-01-02")
	if renewed.DueDate == nil || renewed.DueDate.Format("2006-01-02") != want {
		t.Fatalf("next due = %v, want %s", renewed.DueDate, want)
	}

	// A one-time subscription is not renewable.
	_, body = doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "Licenza",
		Category: models.CategorySubscription,
		Payload:  "|2024-01-01|49.99|",
		DueDate:  daysFromNow(5),
	})
	var oneTime api.DeadlineView
	json.Unmarshal(body, &oneTime)

	code, _ = doJSON(t, app, "PUT", "/api/deadlines/"+oneTime.ID+"/renew", token, nil)
	if code != 422 {
		t.Fatalf("renew one-time: expected status 422, got %d", code)
	}
}

func TestRenewClearsReminderMark(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	_, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "Hosting",
		Category: models.CategorySubscription,
		Payload:  "3m|2024-01-01|9.99|",
		DueDate:  daysFromNow(3),
	})
	var created api.DeadlineView
	json.Unmarshal(body, &created)

	// As if a "once" reminder already went out for the current period.
	if _, err := db.Exec("UPDATE deadlines SET last_reminded_at = ? WHERE id = ?", time.Now(), created.ID); err != nil {
		t.Fatal(err)
	}

	code, body := doJSON(t, app, "PUT", "/api/deadlines/"+created.ID+"/renew", token, nil)
	if code != 200 {
		t.Fatalf("renew: expected status 200, got %d: %s", code, body)
	}
	var renewed api.DeadlineView
	json.Unmarshal(body, &renewed)
	if renewed.LastRemindedAt != nil {
		t.Fatalf("renewed deadline still carries a reminder mark: %v", renewed.LastRemindedAt)
	}

	// The new period must be eligible for the next reminder email.
	var reminded sql.NullTime
	if err := db.QueryRow("SELECT last_reminded_at FROM deadlines WHERE id = ?", created.ID).Scan(&reminded); err != nil {
		t.Fatal(err)
	}
	if reminded.Valid {
		t.Fatalf("last_reminded_at should be NULL after renew, got %v", reminded.Time)
	}
}

func TestReconcileOverdueDeadlines(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	_, body := doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "lapsed",
		Category: models.CategoryDomain,
		DueDate:  daysFromNow(-2),
	})
	var lapsed api.DeadlineView
	json.Unmarshal(body, &lapsed)

	doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "lapsed one-time",
		Category: models.CategorySubscription,
		Payload:  "|2024-01-01|9.99|",
		DueDate:  daysFromNow(-2),
	})

	if err := api.ReconcileOverdueDeadlines(db, time.Now()); err != nil {
		t.Fatal(err)
	}

	var status string
	if err := db.QueryRow("SELECT status FROM deadlines WHERE id = ?", lapsed.ID).Scan(&status); err != nil {
		t.Fatal(err)
	}
	if status != "overdue" {
		t.Fatalf("expected lapsed deadline marked overdue, got %q", status)
	}

	var oneTimeStatus string
	if err := db.QueryRow("SELECT status FROM deadlines WHERE title = 'lapsed one-time'").Scan(&oneTimeStatus); err != nil {
		t.Fatal(err)
	}
	if oneTimeStatus != "active" {
		t.Fatalf("one-time subscription must stay active, got %q", oneTimeStatus)
	}
}

func TestGenerateNotificationsDedup(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "due today",
		Category: models.CategoryMailbox,
		Payload:  "info@acme.it|pro|ACME||",
		DueDate:  daysFromNow(0),
	})

	code, body := doJSON(t, app, "POST", "/api/notifications/generate", token, nil)
	if code != 200 {
		t.Fatalf("generate: expected status 200, got %d: %s", code, body)
	}
	var first struct {
		Created int `json:"created"`
	}
	json.Unmarshal(body, &first)
	if first.Created != 1 {
		t.Fatalf("first generate should create 1 notification, got %d", first.Created)
	}

	// Same snapshot again: the existing record suppresses a duplicate.
	_, body = doJSON(t, app, "POST", "/api/notifications/generate", token, nil)
	var second struct {
		Created int `json:"created"`
	}
	json.Unmarshal(body, &second)
	if second.Created != 0 {
		t.Fatalf("second generate should create 0 notifications, got %d", second.Created)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", count)
	}
}

func TestNotificationFeedAndReadFlow(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	doJSON(t, app, "POST", "/api/deadlines/", token, models.CreateDeadlineRequest{
		Title:    "due tomorrow",
		Category: models.CategorySocial,
		DueDate:  daysFromNow(1),
	})

	code, body := doJSON(t, app, "GET", "/api/notifications/feed", token, nil)
	if code != 200 {
		t.Fatalf("feed: expected status 200, got %d", code)
	}
	var feed struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	json.Unmarshal(body, &feed)
	if feed.UnreadCount != 1 || len(feed.Notifications) != 1 {
		t.Fatalf("expected one feed event, got %+v", feed)
	}
	if feed.Notifications[0].Kind != models.KindDueTomorrow {
		t.Fatalf("expected due_tomorrow, got %s", feed.Notifications[0].Kind)
	}

	doJSON(t, app, "POST", "/api/notifications/generate", token, nil)

	_, body = doJSON(t, app, "GET", "/api/notifications/", token, nil)
	var persisted struct {
		Notifications []models.Notification `json:"notifications"`
		UnreadCount   int                   `json:"unread_count"`
	}
	json.Unmarshal(body, &persisted)
	if persisted.UnreadCount != 1 {
		t.Fatalf("expected 1 unread, got %d", persisted.UnreadCount)
	}

	code, _ = doJSON(t, app, "PUT", "/api/notifications/"+persisted.Notifications[0].ID+"/read", token, nil)
	if code != 200 {
		t.Fatalf("mark read: expected status 200, got %d", code)
	}

	_, body = doJSON(t, app, "GET", "/api/notifications/", token, nil)
	json.Unmarshal(body, &persisted)
	if persisted.UnreadCount != 0 {
		t.Fatalf("expected 0 unread after mark read, got %d", persisted.UnreadCount)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerUser(t, app, "testuser")

	// Defaults before anything is saved.
	code, body := doJSON(t, app, "GET", "/api/settings/", token, nil)
	if code != 200 {
		t.Fatalf("get settings: expected status 200, got %d", code)
	}
	var cfg models.ReminderConfig
	json.Unmarshal(body, &cfg)
	if cfg.ReminderDays != 5 || cfg.ReminderFrequency != "once" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	// Save with an out-of-range window; it clamps to 30.
	code, body = doJSON(t, app, "PUT", "/api/settings/", token, models.ReminderConfig{
		Email:             "user@acme.it",
		ReminderDays:      50,
		ReminderTime:      "08:30",
		ReminderFrequency: "daily",
		Theme:             "dark",
	})
	if code != 200 {
		t.Fatalf("save settings: expected status 200, got %d: %s", code, body)
	}
	json.Unmarshal(body, &cfg)
	if cfg.ReminderDays != 30 {
		t.Fatalf("reminder_days should clamp to 30, got %d", cfg.ReminderDays)
	}

	_, body = doJSON(t, app, "GET", "/api/settings/", token, nil)
	json.Unmarshal(body, &cfg)
	if cfg.Email != "user@acme.it" || cfg.Theme != "dark" || cfg.ReminderFrequency != "daily" {
		t.Fatalf("settings did not round trip: %+v", cfg)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	code, _ := doJSON(t, app, "GET", "/api/deadlines/", "", nil)
	if code != 401 {
		t.Fatalf("expected status 401 without token, got %d", code)
	}
}
