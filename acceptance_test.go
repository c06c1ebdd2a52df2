package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restaurant-oms/oms-api/middleware"
	"github.com/restaurant-oms/oms-api/testutil"
)

// startTestServer serves the full application over a real listener.
func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(setupRouter(newTestApplication(t)))
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, server *httptest.Server, method, path string, body any, token string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

// TestAPIHealthEndpointAcceptance is an end-to-end acceptance test
// It sends a real HTTP request to verify the API works as expected
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	server := startTestServer(t)

	resp, body := call(t, server, http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode, "Health endpoint should return 200 OK")

	var response struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &response), "Response should be valid JSON")
	assert.True(t, response.Success, "Success field should be true")
	assert.Equal(t, "Restaurant OMS API is running", response.Message)

	_, err := uuid.Parse(resp.Header.Get(middleware.RequestIDHeader))
	assert.NoError(t, err, "Every response should carry a request id")
}

// TestHealthEndpointAvailability tests that the health endpoint answers consistently
func TestHealthEndpointAvailability(t *testing.T) {
	server := startTestServer(t)

	for i := 0; i < 5; i++ {
		start := time.Now()
		resp, _ := call(t, server, http.MethodGet, "/api/v1/health", nil, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("Request %d should succeed", i+1))
		assert.Less(t, time.Since(start), time.Second)
	}
}

func TestRoutingAcceptance(t *testing.T) {
	server := startTestServer(t)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "health requires the api prefix", method: http.MethodGet, path: "/health", expectedStatus: http.StatusNotFound},
		{name: "health only answers GET", method: http.MethodPost, path: "/api/v1/health", expectedStatus: http.StatusNotFound},
		{name: "orders need a token", method: http.MethodGet, path: "/api/v1/orders", expectedStatus: http.StatusUnauthorized},
		{name: "analytics need a token", method: http.MethodGet, path: "/api/v1/ai/dashboard", expectedStatus: http.StatusUnauthorized},
		{name: "uploads are public", method: http.MethodGet, path: "/api/v1/uploads/missing.png", expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := call(t, server, tt.method, tt.path, nil, "")
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestCORSPreflightAcceptance(t *testing.T) {
	server := startTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/orders", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://pos.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization,Content-Type")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

// TestProductImageAcceptance uploads a product image and fetches it back
// through the public uploads route.
func TestProductImageAcceptance(t *testing.T) {
	server := startTestServer(t)

	resp, body := call(t, server, http.MethodPost, "/api/v1/auth/login",
		map[string]string{"username": testAdminUsername, "password": testAdminPassword}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var login struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &login))
	token := login.Data.Token

	resp, body = call(t, server, http.MethodPost, "/api/v1/products", map[string]any{
		"productName":   "Tiramisu",
		"category":      "Dessert",
		"price":         6.5,
		"ingredients":   []string{"mascarpone", "coffee"},
		"stockQuantity": 4,
	}, token)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &created))

	image := []byte("\x89PNG\r\n\x1a\nnot really a png")
	form, contentType := testutil.MultipartFile(t, "image", "tiramisu.png", image)
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/api/v1/products/%d/image", server.URL, created.Data.ID), form)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)

	uploadResp, err := server.Client().Do(req)
	require.NoError(t, err)
	uploadBody, err := io.ReadAll(uploadResp.Body)
	uploadResp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, uploadResp.StatusCode, string(uploadBody))

	var uploaded struct {
		Data struct {
			ImageURL string `json:"imageUrl"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(uploadBody, &uploaded))
	require.NotEmpty(t, uploaded.Data.ImageURL)

	resp, body = call(t, server, http.MethodGet, uploaded.Data.ImageURL, nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, image, body)
}
