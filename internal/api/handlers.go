package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"mathdrill/internal/config"
	"mathdrill/internal/generator"
	"mathdrill/internal/models"
	"mathdrill/internal/parser"
	"mathdrill/internal/session"
	"mathdrill/internal/task"

	"github.com/go-chi/chi/v5"
)

// DrillRequest - тело POST /drills: имя готового занятия или явные параметры
type DrillRequest struct {
	Preset    string        `json:"preset,omitempty"`
	Operation string        `json:"operation,omitempty"`
	Operands  []int         `json:"operands,omitempty"`
	Min       int           `json:"min,omitempty"`
	Max       int           `json:"max,omitempty"`
	Limit     *int          `json:"limit,omitempty"`
	Shuffle   *bool         `json:"shuffle,omitempty"`
	Seed      *uint64       `json:"seed,omitempty"`
	Display   *task.Display `json:"display,omitempty"`
}

type DrillResponse struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
	Total     int    `json:"total"`
}

type TaskResponse struct {
	Index      int    `json:"index"`
	Total      int    `json:"total"`
	Expression string `json:"expression"`
	Prompt     string `json:"prompt"`
}

type AnswerRequest struct {
	Answer string `json:"answer"`
}

type AnswerResponse struct {
	Correct   bool   `json:"correct"`
	Solved    string `json:"solved"`
	ElapsedMS int64  `json:"elapsed_ms"`
	Speed     string `json:"speed"`
	Done      bool   `json:"done"`
}

type SummaryResponse struct {
	Total     int   `json:"total"`
	Answered  int   `json:"answered"`
	Correct   int   `json:"correct"`
	Fast      int   `json:"fast"`
	Medium    int   `json:"medium"`
	Slow      int   `json:"slow"`
	ElapsedMS int64 `json:"elapsed_ms"`
	Done      bool  `json:"done"`
}

func (req DrillRequest) preset(presets []config.Preset) (config.Preset, bool) {
	if req.Preset != "" {
		cfg := config.Config{Presets: presets}
		return cfg.Preset(req.Preset)
	}

	p := config.Preset{
		Name:      "custom",
		Operation: req.Operation,
		Operands:  req.Operands,
		Min:       req.Min,
		Max:       req.Max,
		Limit:     req.Limit,
		Shuffle:   req.Shuffle,
		Display:   task.DefaultDisplay(),
	}
	return p, true
}

func (h *Handler) CreateDrill(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req DrillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	p, found := req.preset(h.presets)
	if !found {
		SendErrorResponse(w, http.StatusNotFound, "Preset not found")
		return
	}
	if req.Display != nil {
		p.Display = *req.Display
	}

	g := generator.New(nil)
	if req.Seed != nil {
		g = generator.NewSeeded(*req.Seed)
	}

	op, tasks, err := p.Tasks(g)
	if errors.Is(err, config.ErrOperandLimit) {
		SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len(tasks) == 0 {
		SendErrorResponse(w, http.StatusUnprocessableEntity, "No tasks for these operands")
		return
	}

	s := session.New(op, tasks, h.Clock)
	h.sessions.Add(s, userID)

	SendJSON(w, http.StatusCreated, DrillResponse{
		ID:        s.ID,
		Operation: string(op),
		Total:     s.Len(),
	})
}

func (h *Handler) drill(w http.ResponseWriter, r *http.Request) (*session.Session, int, bool) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return nil, 0, false
	}

	s, err := h.sessions.Get(chi.URLParam(r, "id"), userID)
	if err != nil {
		SendErrorResponse(w, http.StatusNotFound, "Drill not found")
		return nil, 0, false
	}
	return s, userID, true
}

// NextTask выдаёт текущее задание и запускает таймер
func (h *Handler) NextTask(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.drill(w, r)
	if !ok {
		return
	}

	index, a, err := s.Next()
	if errors.Is(err, session.ErrFinished) {
		SendErrorResponse(w, http.StatusConflict, "Drill is finished")
		return
	}
	if err != nil {
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	SendJSON(w, http.StatusOK, TaskResponse{
		Index:      index,
		Total:      s.Len(),
		Expression: a.Task.Text(),
		Prompt:     a.Task.Prompt(),
	})
}

// Answer принимает ответ на текущее задание и сохраняет его в истории
func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	s, userID, ok := h.drill(w, r)
	if !ok {
		return
	}

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		SendErrorResponse(w, http.StatusBadRequest, "Invalid request")
		return
	}

	value, err := parser.ParseAnswer(req.Answer)
	if err != nil {
		SendErrorResponse(w, http.StatusUnprocessableEntity, "Answer is not a number")
		return
	}

	a, err := s.Answer(value)
	if errors.Is(err, session.ErrNoActiveTask) {
		SendErrorResponse(w, http.StatusConflict, "No task in progress")
		return
	}
	if err != nil {
		SendErrorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	rec := s.Record(a, userID)
	if err := h.store.SaveAttempt(&rec); err != nil {
		log.Printf("Ошибка сохранения ответа для занятия %s: %v", s.ID, err)
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to save answer")
		return
	}

	solved := rec.Solved
	if result, err := a.Task.Solve(); err == nil {
		solved = a.Task.Display().FormatResult(result)
	}

	SendJSON(w, http.StatusOK, AnswerResponse{
		Correct:   rec.Correct,
		Solved:    solved,
		ElapsedMS: rec.ElapsedMS,
		Speed:     rec.Speed,
		Done:      s.Done(),
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.drill(w, r)
	if !ok {
		return
	}

	// итог законченного занятия выдаётся один раз
	done := s.Done()
	if done {
		h.sessions.Remove(s.ID)
	}

	sum := s.Summary()
	SendJSON(w, http.StatusOK, SummaryResponse{
		Total:     sum.Total,
		Answered:  sum.Answered,
		Correct:   sum.Correct,
		Fast:      sum.Fast,
		Medium:    sum.Medium,
		Slow:      sum.Slow,
		ElapsedMS: sum.Elapsed.Milliseconds(),
		Done:      done,
	})
}

// History возвращает все сохранённые ответы пользователя
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		SendErrorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	attempts, err := h.store.GetAttempts(userID)
	if err != nil {
		SendErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve history")
		return
	}
	if attempts == nil {
		attempts = []models.Attempt{}
	}

	SendJSON(w, http.StatusOK, models.AttemptList{Attempts: attempts})
}
