package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"anova_oven/internal/service"

	"github.com/gin-gonic/gin"
)

// minimal router wiring only the middleware + a protected endpoint
func newMiddlewareOnlyRouter(auth *mockAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(&service.Service{Authorization: auth}, nil)
	r.GET("/secure", h.userIdMiddleware, func(c *gin.Context) {
		uid, _ := c.Get(userIDKey)
		c.JSON(http.StatusOK, gin.H{"ok": true, "userId": uid})
	})
	return r
}

func TestUserIDMiddleware_Errors(t *testing.T) {
	cases := []struct {
		name     string
		target   string
		header   string
		parseErr error
		errMsg   string
	}{
		{name: "missing header", target: "/secure", errMsg: "missing Authorization header"},
		{name: "invalid scheme", target: "/secure", header: "Token abc", errMsg: "invalid Authorization header format"},
		{name: "bearer without token", target: "/secure", header: "Bearer", errMsg: "invalid Authorization header format"},
		{name: "bearer with empty token", target: "/secure", header: "Bearer ", errMsg: "invalid Authorization header format"},
		{name: "expired token", target: "/secure", header: "Bearer expired", parseErr: errors.New("expired"), errMsg: "invalid or expired token"},
		{name: "query token without upgrade", target: "/secure?token=abc", errMsg: "missing Authorization header"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newMiddlewareOnlyRouter(&mockAuth{parseErr: tc.parseErr})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status: got %d, want 401 (body=%s)", w.Code, w.Body.String())
			}
			var out struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(w.Body.Bytes(), &out)
			if out.Error != tc.errMsg {
				t.Fatalf("error message: got %q, want %q", out.Error, tc.errMsg)
			}
		})
	}
}

func TestUserIDMiddleware_Success(t *testing.T) {
	cases := []struct {
		name    string
		target  string
		header  string
		upgrade bool
		want    string
	}{
		{name: "header", target: "/secure", header: "Bearer good-token", want: "good-token"},
		{name: "query on upgrade", target: "/secure?token=ws-token", upgrade: true, want: "ws-token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &mockAuth{parseID: 123}
			r := newMiddlewareOnlyRouter(auth)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.upgrade {
				req.Header.Set("Upgrade", "websocket")
			}
			r.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status: got %d, body=%s", w.Code, w.Body.String())
			}
			var resp struct {
				OK     bool `json:"ok"`
				UserID int  `json:"userId"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !resp.OK || resp.UserID != 123 {
				t.Fatalf("unexpected response: %+v", resp)
			}
			if auth.lastParseToken != tc.want {
				t.Fatalf("ParseToken got %q, want %q", auth.lastParseToken, tc.want)
			}
		})
	}
}
