package respond

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusTeapot, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, w.Body.String())
}

func TestJSON_nilData(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, nil)

	assert.Equal(t, "null", w.Body.String())
}

func TestString(t *testing.T) {
	w := httptest.NewRecorder()

	String(w, http.StatusOK, "plain text")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain;charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "plain text", w.Body.String())
}

func TestData_detectsContentType(t *testing.T) {
	w := httptest.NewRecorder()

	Data(w, http.StatusOK, "", []byte("<html></html>"))

	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
}

func TestRedirect(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/somewhere", nil)

	Redirect(w, r, http.StatusFound, "/login")

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}
