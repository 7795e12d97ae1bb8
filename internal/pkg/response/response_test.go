package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func testContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	return body
}

func TestOKWrapsSlices(t *testing.T) {
	c, w := testContext()
	OK(c, []string{"a", "b"})
	body := decodeEnvelope(t, w)
	if _, ok := body["data"]; !ok {
		t.Error("slice responses must be wrapped in {data: [...]}")
	}
}

func TestOKPassesObjectsThrough(t *testing.T) {
	c, w := testContext()
	OK(c, gin.H{"text": "answer"})
	body := decodeEnvelope(t, w)
	if body["text"] != "answer" {
		t.Errorf("body = %v, want object passed through unwrapped", body)
	}
}

func TestErrorEnvelope(t *testing.T) {
	tests := []struct {
		name string
		fn   func(c *gin.Context)
		code int
	}{
		{"bad request", func(c *gin.Context) { BadRequest(c, "nope") }, http.StatusBadRequest},
		{"conflict", func(c *gin.Context) { Conflict(c, "dup") }, http.StatusConflict},
		{"unprocessable", func(c *gin.Context) { UnprocessableEntity(c, "bad output") }, http.StatusUnprocessableEntity},
		{"too many requests", func(c *gin.Context) { TooManyRequests(c, "slow down") }, http.StatusTooManyRequests},
		{"failed precondition", func(c *gin.Context) { FailedPrecondition(c, "no key") }, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext()
			tt.fn(c)
			if w.Code != tt.code {
				t.Fatalf("status = %d, want %d", w.Code, tt.code)
			}
			body := decodeEnvelope(t, w)
			if body["ok"] != float64(0) || body["code"] != float64(tt.code) {
				t.Errorf("envelope = %v, want {ok:0, code:%d, message}", body, tt.code)
			}
			if body["message"] == "" {
				t.Error("error envelope must carry a message")
			}
		})
	}
}
