package session

import (
	"errors"
	"log"
	"strconv"
	"sync"
	"time"

	"mathdrill/internal/generator"
	"mathdrill/internal/models"
	"mathdrill/internal/task"

	"github.com/google/uuid"
)

var (
	ErrNoActiveTask = errors.New("no task in progress")
	ErrFinished     = errors.New("drill is finished")
)

// Session - одно занятие: задания выдаются по очереди, на каждое
// засекается время ответа.
type Session struct {
	ID        string
	Operation generator.Operation
	CreatedAt time.Time

	mu       sync.Mutex
	attempts []*task.Attempt
	current  int
	next     int
}

func New(op generator.Operation, tasks []*task.Task, clock task.Clock) *Session {
	if clock == nil {
		clock = time.Now
	}

	attempts := make([]*task.Attempt, 0, len(tasks))
	for _, t := range tasks {
		attempts = append(attempts, task.NewAttempt(t, clock))
	}

	return &Session{
		ID:        uuid.New().String(),
		Operation: op,
		CreatedAt: clock(),
		attempts:  attempts,
		current:   -1,
	}
}

func (s *Session) Len() int {
	return len(s.attempts)
}

// Next возвращает текущее задание и запускает его таймер. Пока на задание
// не ответили, повторный вызов возвращает то же задание без перезапуска таймера.
func (s *Session) Next() (int, *task.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current >= 0 {
		return s.current, s.attempts[s.current], nil
	}
	if s.next >= len(s.attempts) {
		return 0, nil, ErrFinished
	}

	s.current = s.next
	s.next++

	a := s.attempts[s.current]
	a.StartTimer()
	return s.current, a, nil
}

// Answer останавливает таймер текущего задания и записывает ответ
func (s *Session) Answer(value float64) (*task.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current < 0 {
		return nil, ErrNoActiveTask
	}

	a := s.attempts[s.current]
	if err := a.StopTimer(); err != nil {
		return nil, err
	}
	a.SetAnswer(value)
	s.current = -1

	logAttempt(a)
	return a, nil
}

func (s *Session) Done() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current < 0 && s.next >= len(s.attempts)
}

type Summary struct {
	Total    int           `json:"total"`
	Answered int           `json:"answered"`
	Correct  int           `json:"correct"`
	Fast     int           `json:"fast"`
	Medium   int           `json:"medium"`
	Slow     int           `json:"slow"`
	Elapsed  time.Duration `json:"elapsed"`
}

func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{Total: len(s.attempts)}
	for _, a := range s.attempts {
		elapsed, ok := a.Elapsed()
		if !ok {
			continue
		}
		if _, answered := a.Answer(); !answered {
			continue
		}

		sum.Answered++
		sum.Elapsed += elapsed
		if a.IsCorrect() {
			sum.Correct++
		}

		speed, _ := a.Speed()
		switch speed {
		case task.Fast:
			sum.Fast++
		case task.Medium:
			sum.Medium++
		case task.Slow:
			sum.Slow++
		}
	}
	return sum
}

// Record переводит ответ в запись для хранения в базе
func (s *Session) Record(a *task.Attempt, userID int) models.Attempt {
	rec := models.Attempt{
		ID:         uuid.New().String(),
		UserID:     userID,
		SessionID:  s.ID,
		Operation:  string(s.Operation),
		Expression: a.Task.Text(),
	}

	if solved, err := a.Task.Solve(); err == nil {
		rec.Solved = solved.String()
	}
	if answer, ok := a.Answer(); ok {
		rec.Answer = formatAnswer(answer)
	}
	rec.Correct = a.IsCorrect()

	if elapsed, ok := a.Elapsed(); ok {
		rec.ElapsedMS = elapsed.Milliseconds()
	}
	speed, _ := a.Speed()
	rec.Speed = speed.String()

	return rec
}

func logAttempt(a *task.Attempt) {
	solved := "?"
	if r, err := a.Task.Solve(); err == nil {
		solved = r.String()
	}
	answer, _ := a.Answer()
	elapsed, _ := a.Elapsed()

	verdict := "верно"
	if !a.IsCorrect() {
		verdict = "ошибка"
	}

	log.Printf("Задание: %s = %s | ответ: %s | %s | время: %.2f с",
		a.Task.Text(), solved, formatAnswer(answer), verdict, elapsed.Seconds())
}

func formatAnswer(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
