/*
Copyright 2025 ReceivAI Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/receivai/receivai/config"
)

func newSecuredRouter(t *testing.T, secretKey string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.MockConfig(&config.Configuration{
		Server: config.ServerConfig{Secure: true, SecretKey: secretKey},
		Ledger: config.LedgerConfig{DemoMode: true},
	})
	router := gin.New()
	router.Use(SecretKeyAuthMiddleware())
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestSecretKeyAuthMiddleware(t *testing.T) {
	router := newSecuredRouter(t, "test-secret")

	tests := []struct {
		name         string
		key          string
		expectedCode int
	}{
		{"valid key", "test-secret", http.StatusOK},
		{"missing key", "", http.StatusUnauthorized},
		{"wrong key", "not-the-secret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.key != "" {
				req.Header.Set("X-Receivai-Key", tt.key)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			assert.Equal(t, tt.expectedCode, resp.Code)
		})
	}
}

func TestSecretKeyAuthMiddlewareUnconfigured(t *testing.T) {
	router := newSecuredRouter(t, "")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Receivai-Key", "anything")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
}

func TestRateLimitMiddlewareDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	config.MockConfig(&config.Configuration{
		Ledger: config.LedgerConfig{DemoMode: true},
	})
	conf, err := config.Fetch()
	assert.NoError(t, err)

	router := gin.New()
	router.Use(RateLimitMiddleware(conf))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusOK, resp.Code)
	}
}

func TestRateLimitMiddlewareThrottles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rps := 1.0
	burst := 1
	cleanup := 60
	config.MockConfig(&config.Configuration{
		Ledger: config.LedgerConfig{DemoMode: true},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond:  &rps,
			Burst:              &burst,
			CleanupIntervalSec: &cleanup,
		},
	})
	conf, err := config.Fetch()
	assert.NoError(t, err)

	router := gin.New()
	router.Use(RateLimitMiddleware(conf))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	throttled := false
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest("GET", "/", nil)
		req.RemoteAddr = "10.0.0.1:50000"
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code == http.StatusTooManyRequests {
			throttled = true
		}
	}
	assert.True(t, throttled)
}
