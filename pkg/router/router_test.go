package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-sqa-metrics/internal/monitoring"
)

func TestMain(m *testing.M) {
	monitoring.SetLogger(nil)
	m.Run()
}

func serve(r *Router, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func echo(name string) HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, name+":"+Param(req, "id"))
	}
}

func TestRouter_MatchesInRegistrationOrder(t *testing.T) {
	r := New()
	r.GET("/api/v1/results/:id/schema", echo("schema"))
	r.GET("/api/v1/results/:id", echo("get"))
	r.DELETE("/api/v1/results/:id", echo("delete"))
	r.GET("/api/v1/results", echo("list"))

	assert.Equal(t, "schema:abc", serve(r, http.MethodGet, "/api/v1/results/abc/schema").Body.String())
	assert.Equal(t, "get:abc", serve(r, http.MethodGet, "/api/v1/results/abc").Body.String())
	assert.Equal(t, "delete:abc", serve(r, http.MethodDelete, "/api/v1/results/abc/").Body.String())
	assert.Equal(t, "list:", serve(r, http.MethodGet, "/api/v1/results").Body.String())
}

func TestRouter_Errors(t *testing.T) {
	r := New()
	r.GET("/api/v1/results/:id", echo("get"))

	assert.Equal(t, http.StatusMethodNotAllowed, serve(r, http.MethodPost, "/api/v1/results/abc").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/results/abc/extra").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/v1/results//").Code)
}

func TestRouter_Mount(t *testing.T) {
	r := New()
	r.Handle("/swagger/", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	assert.Equal(t, http.StatusTeapot, serve(r, http.MethodGet, "/swagger/index.html").Code)
	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/other").Code)
}

func TestRouter_Routes(t *testing.T) {
	r := New()
	r.POST("/a", echo("a"))
	r.GET("/b/:id", echo("b"))
	assert.Equal(t, []string{"POST /a", "GET /b/:id"}, r.Routes())
}
