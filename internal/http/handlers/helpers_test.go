package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/ricmelo/menuhub/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser stands in for the session middleware on protected routes.
func asUser(userID, rawToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		middlewares.StashIdentity(c, userID, rawToken)
		c.Next()
	}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	return doRequest(t, r, method, path, strings.NewReader(body), map[string]string{
		"Content-Type": "application/json",
	})
}

// errorCode digs the code out of the error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("response is not an error envelope: %v (body: %s)", err, rec.Body.String())
	}

	return payload.Error.Code
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body failed: %v (body: %s)", err, rec.Body.String())
	}
}
