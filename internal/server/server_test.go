package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"mathdrill/internal/config"
	"mathdrill/internal/worksheet"

	"github.com/stretchr/testify/assert"
)

func newTestRouter() http.Handler {
	apiStub := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("api:" + r.URL.Path))
	})
	return New(config.DefaultPresets(), worksheet.DefaultConfig()).NewRouter(apiStub)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest("GET", "/healthz", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestAPIMount(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rr, httptest.NewRequest("POST", "/api/v1/drills", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "api:/drills", rr.Body.String())
}

func TestWorksheet(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		wantStatus int
	}{
		{"таблица умножения", "/worksheet/multiplication?operands=3,7&signs=true&seed=5", http.StatusOK},
		{"все множители", "/worksheet/mul?operands=*&answers=false", http.StatusOK},
		{"сумма с лимитом", "/worksheet/sum?min=0&max=10&limit=10", http.StatusOK},
		{"готовое занятие", "/worksheet/preset?name=division-table", http.StatusOK},
		{"неизвестное занятие", "/worksheet/preset?name=nope", http.StatusNotFound},
		{"неизвестная операция", "/worksheet/pow", http.StatusUnprocessableEntity},
		{"лимит для деления", "/worksheet/division?limit=5", http.StatusUnprocessableEntity},
		{"битые операнды", "/worksheet/sum?operands=1,x", http.StatusBadRequest},
		{"битое зерно", "/worksheet/sum?seed=-1", http.StatusBadRequest},
		{"пустой диапазон", "/worksheet/sum?min=5&max=1", http.StatusUnprocessableEntity},
		{"слишком много операндов", "/worksheet/sum?min=0&max=200000", http.StatusBadRequest},
		{"край int", "/worksheet/sum?min=9223372036854775806&max=9223372036854775807", http.StatusBadRequest},
		{"огромный множитель", "/worksheet/mul?operands=100000000", http.StatusBadRequest},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest("GET", tt.url, nil))

			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
				assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF-")))
			}
		})
	}
}
