package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func authedRouter(key string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(key))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestAPIKeyAuth(t *testing.T) {
	r := authedRouter("secret")

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"valid key", "secret", 200},
		{"wrong key", "nope", 401},
		{"missing key", "", 401},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/ping", nil)
		if tc.key != "" {
			req.Header.Set("X-Bot-API-Key", tc.key)
		}
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("%s: got %d, want %d", tc.name, w.Code, tc.want)
		}
	}
}
