// Package testutil provides shared helpers for tests: environment guards,
// in-memory databases and request builders.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restaurant-oms/oms-api/config"
	"github.com/restaurant-oms/oms-api/models"
)

// RequireTestEnvironment ensures that tests are running in the test environment.
// This prevents accidental execution of tests against production or development databases.
// It will fail the test immediately if GO_ENV is not set to "test".
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	env := os.Getenv("GO_ENV")
	if env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: Tests must run with GO_ENV=test to prevent data loss. Current GO_ENV=%q. Set GO_ENV=test before running tests.", env)
	}
}

// GuardMain is called from TestMain. It refuses to run with GO_ENV=production
// and defaults GO_ENV to "test" when it is unset.
func GuardMain() {
	switch os.Getenv("GO_ENV") {
	case "production":
		fmt.Fprintf(os.Stderr, "SAFETY CHECK FAILED: tests must not run with GO_ENV=production\n")
		os.Exit(1)
	case "":
		os.Setenv("GO_ENV", "test")
	}
	gin.SetMode(gin.TestMode)
}

// Config returns a configuration suitable for tests.
func Config() *config.Config {
	return &config.Config{
		DatabaseDriver: "sqlite",
		DatabaseURL:    ":memory:",
		Port:           "8080",
		GoEnv:          "test",
		JWTSecret:      "test-secret-do-not-use-in-production",
		JWTIssuer:      "restaurant-oms",
		JWTAudience:    "restaurant-oms-api",
		TokenTTL:       24 * time.Hour,
		CORSOrigins:    []string{"*"},
		ImageStorage:   "local",
		LogLevel:       "debug",
	}
}

// NewTestDB opens a fresh in-memory sqlite database with every model migrated.
// It uses a single connection so the in-memory database is shared by all queries.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         config.NewGormLogger(zap.NewNop(), logger.Silent),
		NowFunc:        config.UTCNow,
		TranslateError: true,
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")
	return db
}

// JSONRequest builds a request with a JSON body and optional bearer token.
func JSONRequest(t testing.TB, method, path string, body any, token string) *http.Request {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// MultipartFile builds a multipart body holding a single file under field.
func MultipartFile(t testing.TB, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", "application/octet-stream")
	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

// FileHeader returns a parsed multipart.FileHeader holding content.
func FileHeader(t testing.TB, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	body, contentType := MultipartFile(t, "file", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", contentType)
	require.NoError(t, req.ParseMultipartForm(int64(len(content))+1024))

	files := req.MultipartForm.File["file"]
	require.Len(t, files, 1)
	return files[0]
}

// DecodeResponse unmarshals a recorded JSON response into a generic map.
func DecodeResponse(t testing.TB, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), "body: %s", w.Body.String())
	return response
}
