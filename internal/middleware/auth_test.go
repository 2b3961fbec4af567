package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newRouter(token string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", AuthRequired(token), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

// TestAuthRequired проверяет допуск по токену.
func TestAuthRequired(t *testing.T) {
	cases := []struct {
		name   string
		token  string
		header string
		want   int
	}{
		{"верный токен", "secret", "Bearer secret", http.StatusOK},
		{"неверный токен", "secret", "Bearer other", http.StatusUnauthorized},
		{"без заголовка", "secret", "", http.StatusUnauthorized},
		{"токен не настроен", "", "Bearer ", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			newRouter(tc.token).ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("ожидался код %d, получен %d", tc.want, w.Code)
			}
		})
	}
}
