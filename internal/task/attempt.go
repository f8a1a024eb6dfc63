package task

import (
	"errors"
	"time"
)

// Clock возвращает текущее время; подменяется в тестах
type Clock func() time.Time

type Speed int

const (
	SpeedUnknown Speed = iota
	Fast
	Medium
	Slow
)

const (
	FastLimit   = 5 * time.Second
	MediumLimit = 10 * time.Second

	timerPrecision = 10 * time.Millisecond
)

var (
	ErrTimerNotStarted = errors.New("timer was not started")
	ErrTimerNotStopped = errors.New("timer was not stopped")
)

func (s Speed) String() string {
	switch s {
	case Fast:
		return "fast"
	case Medium:
		return "medium"
	case Slow:
		return "slow"
	}
	return "unknown"
}

// Classify относит время ответа к одной из трёх групп
func Classify(d time.Duration) Speed {
	switch {
	case d <= FastLimit:
		return Fast
	case d <= MediumLimit:
		return Medium
	}
	return Slow
}

// Attempt - ответ ребёнка на одно задание: введённое значение и время.
type Attempt struct {
	Task *Task

	clock     Clock
	answer    *float64
	startedAt time.Time
	elapsed   time.Duration
	stopped   bool
}

func NewAttempt(t *Task, clock Clock) *Attempt {
	if clock == nil {
		clock = time.Now
	}
	return &Attempt{Task: t, clock: clock}
}

func (a *Attempt) StartTimer() {
	a.startedAt = a.clock()
	a.elapsed = 0
	a.stopped = false
}

func (a *Attempt) StopTimer() error {
	if a.startedAt.IsZero() {
		return ErrTimerNotStarted
	}
	a.elapsed = a.clock().Sub(a.startedAt).Round(timerPrecision)
	a.stopped = true
	return nil
}

func (a *Attempt) Started() bool {
	return !a.startedAt.IsZero()
}

// Elapsed возвращает время ответа; false, пока таймер не остановлен
func (a *Attempt) Elapsed() (time.Duration, bool) {
	return a.elapsed, a.stopped
}

func (a *Attempt) SetAnswer(v float64) {
	a.answer = &v
}

func (a *Attempt) Answer() (float64, bool) {
	if a.answer == nil {
		return 0, false
	}
	return *a.answer, true
}

func (a *Attempt) IsCorrect() bool {
	if a.answer == nil {
		return false
	}
	solved, err := a.Task.Solve()
	if err != nil {
		return false
	}
	return solved.Equal(*a.answer)
}

func (a *Attempt) Speed() (Speed, error) {
	if !a.stopped {
		return SpeedUnknown, ErrTimerNotStopped
	}
	return Classify(a.elapsed), nil
}
