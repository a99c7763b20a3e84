package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHandleLiveness(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/health/live", "")

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestHandleReadiness_Healthy(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/health/ready", "")

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestHandleReadiness_DatabaseDown(t *testing.T) {
	srv := newTestServer(t, withStore(&mockStore{pingErr: errors.New("database is locked")}))

	rec := doRequest(srv, http.MethodGet, "/health/ready", "")

	assert.Equal(t, 503, rec.Code)
	assert.Contains(t, rec.Body.String(), `"failed_check":"database"`)
}
