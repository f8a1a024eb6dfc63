package api

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"mathdrill/internal/auth"
	"mathdrill/internal/config"
	"mathdrill/internal/database"
	"mathdrill/internal/models"
	"mathdrill/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// тикающие часы: каждый вызов сдвигает время на 3 секунды
func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2024, 9, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(3 * time.Second)
		return now
	}
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	router, _ := newTestAPI(t)
	return router
}

func newTestAPI(t *testing.T) (*chi.Mux, *session.Manager) {
	t.Helper()

	store, err := database.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	sessions := session.NewManager()
	h := NewHandler(store, auth.NewManager("test-secret", time.Hour), sessions, config.DefaultPresets())
	h.Clock = tickingClock()
	return SetupRouter(h), sessions
}

func do(t *testing.T, router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&v), rr.Body.String())
	return v
}

func loginAs(t *testing.T, router http.Handler, login string) string {
	t.Helper()
	creds := models.Credentials{Login: login, Password: "pass"}

	rr := do(t, router, http.MethodPost, "/register", "", creds)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = do(t, router, http.MethodPost, "/login", "", creds)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	resp := decode[models.AuthResponse](t, rr)
	assert.Equal(t, 60, resp.ExpiresInMinutes)
	return resp.Token
}

func TestAuthHandlers(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		path       string
		body       interface{}
		wantStatus int
	}{
		{"регистрация", "/register", models.Credentials{Login: "masha", Password: "pass"}, http.StatusCreated},
		{"повторная регистрация", "/register", models.Credentials{Login: "masha", Password: "pass"}, http.StatusConflict},
		{"пустой пароль", "/register", models.Credentials{Login: "petya"}, http.StatusBadRequest},
		{"успешный вход", "/login", models.Credentials{Login: "masha", Password: "pass"}, http.StatusOK},
		{"неверный пароль", "/login", models.Credentials{Login: "masha", Password: "nope"}, http.StatusUnauthorized},
		{"неизвестный логин", "/login", models.Credentials{Login: "vasya", Password: "pass"}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, http.MethodPost, tt.path, "", tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}

	rr := do(t, router, http.MethodGet, "/token-info", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 60, decode[map[string]int](t, rr)["expirationMinutes"])
}

func TestProtectedRoutes(t *testing.T) {
	router := newTestRouter(t)

	rr := do(t, router, http.MethodGet, "/history", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, router, http.MethodGet, "/history", "broken", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	expired, err := auth.NewManager("test-secret", -time.Minute).GenerateToken(1, "masha")
	require.NoError(t, err)
	rr = do(t, router, http.MethodGet, "/history", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "expired")
}

func TestDrillFlow(t *testing.T) {
	router, sessions := newTestAPI(t)
	token := loginAs(t, router, "masha")

	noShuffle := false
	rr := do(t, router, http.MethodPost, "/drills", token, DrillRequest{
		Operation: "sum",
		Operands:  []int{1, 2},
		Shuffle:   &noShuffle,
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	drill := decode[DrillResponse](t, rr)
	assert.Equal(t, "sum", drill.Operation)
	require.Equal(t, 3, drill.Total)
	assert.Equal(t, 1, sessions.Len())

	answers := []string{"2", "4", "4"}
	wantTasks := []string{"1 + 1", "1 + 2", "2 + 2"}
	wantCorrect := []bool{true, false, true}

	for i, answer := range answers {
		rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/next", token, nil)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		next := decode[TaskResponse](t, rr)
		assert.Equal(t, i, next.Index)
		assert.Equal(t, wantTasks[i], next.Expression)
		assert.Equal(t, wantTasks[i]+" = ", next.Prompt)

		rr = do(t, router, http.MethodPost, "/drills/"+drill.ID+"/answer", token, AnswerRequest{Answer: answer})
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		resp := decode[AnswerResponse](t, rr)
		assert.Equal(t, wantCorrect[i], resp.Correct)
		assert.EqualValues(t, 3000, resp.ElapsedMS)
		assert.Equal(t, "fast", resp.Speed)
		assert.Equal(t, i == 2, resp.Done)
	}

	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/next", token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/summary", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	sum := decode[SummaryResponse](t, rr)
	assert.Equal(t, SummaryResponse{Total: 3, Answered: 3, Correct: 2, Fast: 3, ElapsedMS: 9000, Done: true}, sum)
	assert.Equal(t, 0, sessions.Len(), "законченное занятие удаляется после итога")

	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/summary", token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodGet, "/history", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	history := decode[models.AttemptList](t, rr)
	require.Len(t, history.Attempts, 3)
	assert.Equal(t, "1 + 2", history.Attempts[1].Expression)
	assert.Equal(t, "3", history.Attempts[1].Solved)
	assert.False(t, history.Attempts[1].Correct)
	assert.Equal(t, drill.ID, history.Attempts[0].SessionID)
}

func TestDrillErrors(t *testing.T) {
	router := newTestRouter(t)
	token := loginAs(t, router, "masha")
	limit := 10

	tests := []struct {
		name       string
		body       DrillRequest
		wantStatus int
	}{
		{"неизвестное занятие", DrillRequest{Preset: "nope"}, http.StatusNotFound},
		{"неизвестная операция", DrillRequest{Operation: "pow", Operands: []int{2}}, http.StatusUnprocessableEntity},
		{"лимит для деления", DrillRequest{Operation: "div", Operands: []int{2}, Limit: &limit}, http.StatusUnprocessableEntity},
		{"пустой диапазон", DrillRequest{Operation: "sum", Min: 5, Max: 1}, http.StatusUnprocessableEntity},
		{"слишком много операндов", DrillRequest{Operation: "sum", Min: 0, Max: config.MaxOperands}, http.StatusBadRequest},
		{"край int", DrillRequest{Operation: "sum", Min: math.MaxInt - 1, Max: math.MaxInt}, http.StatusBadRequest},
		{"готовое занятие", DrillRequest{Preset: "multiplication-table"}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, http.MethodPost, "/drills", token, tt.body)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestDrillAnswers(t *testing.T) {
	router := newTestRouter(t)
	token := loginAs(t, router, "masha")
	seed := uint64(42)

	rr := do(t, router, http.MethodPost, "/drills", token, DrillRequest{Preset: "division-table", Seed: &seed})
	require.Equal(t, http.StatusCreated, rr.Code)
	drill := decode[DrillResponse](t, rr)

	rr = do(t, router, http.MethodPost, "/drills/"+drill.ID+"/answer", token, AnswerRequest{Answer: "1"})
	assert.Equal(t, http.StatusConflict, rr.Code, "ответ до выдачи задания")

	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/next", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, decode[TaskResponse](t, rr).Prompt, "÷")

	rr = do(t, router, http.MethodPost, "/drills/"+drill.ID+"/answer", token, AnswerRequest{Answer: "пять"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	other := loginAs(t, router, "petya")
	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/next", other, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "чужое занятие")

	rr = do(t, router, http.MethodGet, "/history", other, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, decode[models.AttemptList](t, rr).Attempts)
}

func TestSummary_KeepsUnfinishedDrill(t *testing.T) {
	router, sessions := newTestAPI(t)
	token := loginAs(t, router, "masha")

	rr := do(t, router, http.MethodPost, "/drills", token, DrillRequest{Operation: "sum", Operands: []int{1, 2}})
	require.Equal(t, http.StatusCreated, rr.Code)
	drill := decode[DrillResponse](t, rr)

	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/summary", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, decode[SummaryResponse](t, rr).Done)
	assert.Equal(t, 1, sessions.Len())

	rr = do(t, router, http.MethodGet, "/drills/"+drill.ID+"/next", token, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
