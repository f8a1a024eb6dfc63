package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"mathdrill/internal/api"
	"mathdrill/internal/config"
	"mathdrill/internal/generator"
	"mathdrill/internal/parser"
	"mathdrill/internal/task"
	"mathdrill/internal/worksheet"

	"github.com/gorilla/mux"
)

const APIPrefix = "/api/v1"

var errBadQuery = errors.New("bad query parameter")

// Server - верхний роутер: API, рабочие листы и проверка здоровья
type Server struct {
	presets []config.Preset
	sheet   worksheet.Config
}

func New(presets []config.Preset, sheet worksheet.Config) *Server {
	return &Server{presets: presets, sheet: sheet}
}

// NewRouter монтирует API под /api/v1
func (s *Server) NewRouter(apiHandler http.Handler) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", handleHealth).Methods("GET")
	r.HandleFunc("/worksheet/{operation}", s.handleWorksheet).Methods("GET")
	r.PathPrefix(APIPrefix + "/").Handler(http.StripPrefix(APIPrefix, apiHandler))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	api.SendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleWorksheet отдаёт PDF с заданиями. Параметры запроса:
// operands (список или "*"), min, max, limit, seed, shuffle, signs, answers.
// preset вместо операции в пути: /worksheet/preset?name=multiplication-table
func (s *Server) handleWorksheet(w http.ResponseWriter, r *http.Request) {
	p, err := s.presetFromRequest(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errPresetNotFound) {
			status = http.StatusNotFound
		}
		api.SendErrorResponse(w, status, err.Error())
		return
	}

	g := generator.New(nil)
	if seed := r.URL.Query().Get("seed"); seed != "" {
		v, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			api.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("%v: seed", errBadQuery))
			return
		}
		g = generator.NewSeeded(v)
	}

	op, tasks, err := p.Tasks(g)
	if errors.Is(err, config.ErrOperandLimit) {
		api.SendErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		api.SendErrorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if len(tasks) == 0 {
		api.SendErrorResponse(w, http.StatusUnprocessableEntity, worksheet.ErrNoTasks.Error())
		return
	}

	cfg := s.sheet
	if answers := r.URL.Query().Get("answers"); answers != "" {
		cfg.AnswerKey, err = strconv.ParseBool(answers)
		if err != nil {
			api.SendErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("%v: answers", errBadQuery))
			return
		}
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", string(op)+".pdf"))
	if err := worksheet.NewWriter(cfg).Write(w, op, tasks); err != nil {
		log.Printf("Ошибка формирования рабочего листа: %v", err)
		return
	}
	log.Printf("Сформирован рабочий лист: операция=%s, заданий=%d", op, len(tasks))
}

var errPresetNotFound = errors.New("preset not found")

func (s *Server) presetFromRequest(r *http.Request) (config.Preset, error) {
	q := r.URL.Query()

	if mux.Vars(r)["operation"] == "preset" {
		cfg := config.Config{Presets: s.presets}
		p, ok := cfg.Preset(q.Get("name"))
		if !ok {
			return config.Preset{}, fmt.Errorf("%w: %s", errPresetNotFound, q.Get("name"))
		}
		return p, nil
	}

	p := config.Preset{
		Name:      "worksheet",
		Operation: mux.Vars(r)["operation"],
		Display:   task.DefaultDisplay(),
	}
	if operands := q.Get("operands"); operands != "" {
		p.Operands = parser.ParseInput(operands)
		if len(p.Operands) == 0 {
			return p, fmt.Errorf("%w: operands", errBadQuery)
		}
	}

	var err error
	if p.Min, err = intParam(q.Get("min"), 0); err != nil {
		return p, fmt.Errorf("%w: min", errBadQuery)
	}
	if p.Max, err = intParam(q.Get("max"), 9); err != nil {
		return p, fmt.Errorf("%w: max", errBadQuery)
	}
	if limit := q.Get("limit"); limit != "" {
		v, err := strconv.Atoi(limit)
		if err != nil {
			return p, fmt.Errorf("%w: limit", errBadQuery)
		}
		p.Limit = &v
	}
	if shuffle := q.Get("shuffle"); shuffle != "" {
		v, err := strconv.ParseBool(shuffle)
		if err != nil {
			return p, fmt.Errorf("%w: shuffle", errBadQuery)
		}
		p.Shuffle = &v
	}
	if signs := q.Get("signs"); signs != "" {
		v, err := strconv.ParseBool(signs)
		if err != nil {
			return p, fmt.Errorf("%w: signs", errBadQuery)
		}
		if v {
			p.Display = task.Typographic()
		}
	}
	return p, nil
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	return strconv.Atoi(s)
}
