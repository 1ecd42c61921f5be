package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"modpaypal/internal/config"
	"modpaypal/internal/database"
	"modpaypal/internal/domain"
	"modpaypal/internal/middleware"
	"modpaypal/internal/modules/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct {
	answer string
	calls  atomic.Int32
}

func (v *stubVerifier) Verify(_ context.Context, body string) (string, error) {
	v.calls.Add(1)
	if !strings.HasPrefix(body, "cmd=_notify-validate&") {
		return "", fmt.Errorf("unexpected verification body %q", body)
	}
	return v.answer, nil
}

type E2ETestSuite struct {
	app      *App
	db       *gorm.DB
	verifier *stubVerifier
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

var dbSeq atomic.Int64

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:e2e_%d?mode=memory&cache=shared", dbSeq.Add(1)))
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, database.Migrate(db))

	cfg := &config.Config{
		AppEnv:              "test",
		JWTSecret:           "test_secret_key_32_characters_min",
		JWTTTL:              time.Hour,
		WWWRoot:             "https://lms.example.com",
		LoginURL:            "https://lms.example.com/login/index.php",
		SiteName:            "Test LMS",
		PayPalSandbox:       true,
		PayPalVerifyTimeout: time.Second,
		NotifyQueueSize:     16,
	}

	verifier := &stubVerifier{answer: "VERIFIED"}
	a := New(cfg, db, WithVerifier(verifier), WithLogger(t.Logf))
	t.Cleanup(a.Close)

	suite := &E2ETestSuite{app: a, db: db, verifier: verifier}
	suite.seed(t)
	return suite
}

func (s *E2ETestSuite) seed(t *testing.T) {
	t.Helper()
	hash, err := auth.HashPassword("Password123!")
	require.NoError(t, err)

	users := []domain.User{
		{ID: 1, Email: "admin@test.com", FirstName: "Site", LastName: "Admin", IsAdmin: true, PasswordHash: hash},
		{ID: 2, Email: "teacher@test.com", FirstName: "Tina", LastName: "Teacher", PasswordHash: hash},
		{ID: 5, Email: "student@test.com", FirstName: "Sam", LastName: "Student", PasswordHash: hash},
	}
	for i := range users {
		require.NoError(t, s.db.Create(&users[i]).Error)
	}
	require.NoError(t, s.db.Create(&domain.Course{ID: 9, ShortName: "GO101", FullName: "Go 101", CompletionEnabled: true}).Error)
	require.NoError(t, s.db.Create(&domain.CourseTeacher{CourseID: 9, UserID: 2}).Error)
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var bodyBytes []byte
	if body != nil {
		bodyBytes, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(bodyBytes))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) viewPage(instanceID int64, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/mod/paypal/view?n=%d", instanceID), nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.TokenCookie, Value: token})
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func (s *E2ETestSuite) postIPN(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return &resp
}

func (s *E2ETestSuite) login(t *testing.T, email string) string {
	t.Helper()
	w := s.makeRequest(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": email, "password": "Password123!"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := parseResponse(t, w).Data["token"].(string)
	require.NotEmpty(t, token)
	return token
}

// =============================================================================
// Flow 1: teacher sets up the activity, student pays, PayPal notifies
// =============================================================================

func TestFlow1_PaymentCompletesActivity(t *testing.T) {
	suite := setupTestSuite(t)

	teacherToken := suite.login(t, "teacher@test.com")
	studentToken := suite.login(t, "student@test.com")

	var instanceID int64
	t.Run("POST /courses/:courseId/paypal", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/courses/9/paypal", map[string]interface{}{
			"name":                     "Course fee",
			"businessemail":            "seller@test.com",
			"cost":                     "10.00",
			"currency":                 "USD",
			"itemname":                 "Go 101 fee",
			"itemnumber":               "GO101",
			"mailstudents":             true,
			"mailteachers":             true,
			"mailadmins":               true,
			"paymentcompletionenabled": true,
		}, teacherToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		instanceID = int64(parseResponse(t, w).Data["id"].(float64))
	})

	t.Run("GET /mod/paypal/view renders the checkout form", func(t *testing.T) {
		w := suite.viewPage(instanceID, studentToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), fmt.Sprintf(`name="custom" value="5-9-%d"`, instanceID))
		assert.Contains(t, w.Body.String(), `name="amount" value="10.00"`)
	})

	form := url.Values{}
	form.Set("custom", fmt.Sprintf("5-9-%d", instanceID))
	form.Set("txn_id", "TX1")
	form.Set("payment_status", "Completed")
	form.Set("mc_gross", "10.00")
	form.Set("mc_currency", "USD")
	form.Set("business", "seller@test.com")

	t.Run("POST /mod/paypal/ipn", func(t *testing.T) {
		w := suite.postIPN("/mod/paypal/ipn", form)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, int32(1), suite.verifier.calls.Load())
	})

	t.Run("view and status report completion", func(t *testing.T) {
		w := suite.viewPage(instanceID, studentToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Your payment was accepted and this activity is complete.")

		w = suite.makeRequest(http.MethodGet, fmt.Sprintf("/api/v1/paypal/instances/%d/status", instanceID), nil, studentToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "completed", parseResponse(t, w).Data["status"])

		w = suite.makeRequest(http.MethodGet, fmt.Sprintf("/api/v1/paypal/instances/%d/completion/5", instanceID), nil, studentToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, parseResponse(t, w).Data["completed"])
	})

	t.Run("duplicate notification is not recorded twice", func(t *testing.T) {
		w := suite.postIPN("/mod/paypal/ipn", form)
		assert.Equal(t, http.StatusOK, w.Code)

		var count int64
		require.NoError(t, suite.db.Model(&domain.Transaction{}).Where("txn_id = ?", "TX1").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("GET /paypal/messages", func(t *testing.T) {
		adminToken := suite.login(t, "admin@test.com")
		require.Eventually(t, func() bool {
			w := suite.makeRequest(http.MethodGet, "/api/v1/paypal/messages", nil, studentToken)
			if w.Code != http.StatusOK {
				return false
			}
			list, _ := parseResponse(t, w).Data["messages"].([]interface{})
			return len(list) == 1
		}, 2*time.Second, 20*time.Millisecond)

		require.Eventually(t, func() bool {
			w := suite.makeRequest(http.MethodGet, "/api/v1/paypal/messages", nil, adminToken)
			list, _ := parseResponse(t, w).Data["messages"].([]interface{})
			// Payment notice plus the duplicate alert.
			return len(list) == 2
		}, 2*time.Second, 20*time.Millisecond)
	})
}

func TestFlow1b_AdminReadsJournal(t *testing.T) {
	suite := setupTestSuite(t)
	require.NoError(t, suite.db.Create(&domain.Instance{
		ID: 3, CourseID: 9, Name: "Fee", BusinessEmail: "seller@test.com",
		Cost: decimal.RequireFromString("10.00"), Currency: "USD", ItemName: "Fee", ItemNumber: "F1",
	}).Error)

	w := suite.postIPN("/mod/paypal/ipn", url.Values{
		"custom": {"5-9-3"}, "txn_id": {"TXJ"}, "payment_status": {"Completed"},
		"mc_gross": {"10.00"}, "mc_currency": {"USD"}, "business": {"seller@test.com"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("admin lists journal entries", func(t *testing.T) {
		w := suite.makeRequest(http.MethodGet, "/api/v1/paypal/ipn-log?txn_id=TXJ", nil, suite.login(t, "admin@test.com"))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		entries, _ := parseResponse(t, w).Data["entries"].([]interface{})
		require.Len(t, entries, 1)
		entry := entries[0].(map[string]interface{})
		assert.Equal(t, "recorded", entry["outcome"])
		assert.Equal(t, "VERIFIED", entry["verification"])
	})

	t.Run("students cannot read the journal", func(t *testing.T) {
		w := suite.makeRequest(http.MethodGet, "/api/v1/paypal/ipn-log?txn_id=TXJ", nil, suite.login(t, "student@test.com"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

// =============================================================================
// Flow 2: guests and casual requests
// =============================================================================

func TestFlow2_GuestsAndIntruders(t *testing.T) {
	suite := setupTestSuite(t)

	t.Run("guest is sent to login", func(t *testing.T) {
		w := suite.viewPage(1, "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "https://lms.example.com/login/index.php?wantsurl="))
	})

	t.Run("IPN with a query string is rejected", func(t *testing.T) {
		w := suite.postIPN("/mod/paypal/ipn?x=1", url.Values{"txn_id": {"TX2"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, suite.verifier.calls.Load())
	})

	t.Run("students cannot change settings", func(t *testing.T) {
		w := suite.makeRequest(http.MethodPost, "/api/v1/courses/9/paypal", map[string]interface{}{"name": "x"}, suite.login(t, "student@test.com"))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("protected API needs a token", func(t *testing.T) {
		w := suite.makeRequest(http.MethodGet, "/api/v1/auth/me", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
