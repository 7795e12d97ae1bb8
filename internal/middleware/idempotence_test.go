package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// The redis client is nil in these tests: the pass-through paths must never
// touch it, so a panic doubles as the assertion.
func idempotenceRouter() (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Idempotence(nil))
	hits := 0
	handler := func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"text": "answer"})
	}
	r.POST("/solve", handler)
	r.GET("/profile", handler)
	return r, &hits
}

func TestIdempotenceWithoutHeaderPassesThrough(t *testing.T) {
	r, hits := idempotenceRouter()

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/solve", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status %d, want 200", i+1, w.Code)
		}
	}
	if *hits != 2 {
		t.Errorf("handler ran %d times, want 2 (repeat questions must reach the handler)", *hits)
	}
}

func TestIdempotenceSkipsGET(t *testing.T) {
	r, hits := idempotenceRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.Header.Set("x-idempotence", "key-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK || *hits != 1 {
		t.Errorf("GET with header: status %d hits %d, want 200 and 1", w.Code, *hits)
	}
}
