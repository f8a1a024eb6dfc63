package task

import (
	"fmt"
	"slices"

	"mathdrill/internal/calculator"
)

// Task - одно арифметическое задание, которое решает ребёнок.
// Текст задания не меняется после создания.
type Task struct {
	text    string
	display Display
}

// New создаёт задание из текста вида "2 * 5". Текст проверяется на
// допустимые символы и на то, что из него читаются числа.
func New(text string) (*Task, error) {
	if err := calculator.Validate(text); err != nil {
		return nil, fmt.Errorf("task %q: %w", text, err)
	}
	if _, err := calculator.Operands(text); err != nil {
		return nil, fmt.Errorf("task %q: %w", text, err)
	}
	return &Task{text: text, display: DefaultDisplay()}, nil
}

// MustNew как New, но паникует при недопустимом тексте. Используется
// генераторами: ошибка здесь означает ошибку в генераторе.
func MustNew(text string) *Task {
	t, err := New(text)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Task) Text() string {
	return t.text
}

func (t *Task) Display() Display {
	return t.display
}

// WithDisplay возвращает копию задания с другими настройками отображения
func (t *Task) WithDisplay(d Display) *Task {
	cp := *t
	cp.display = d
	return &cp
}

// Solve вычисляет задание. Текст проверяется повторно перед каждым вычислением.
func (t *Task) Solve() (calculator.Result, error) {
	if err := calculator.Validate(t.text); err != nil {
		return calculator.Result{}, fmt.Errorf("task %q: %w", t.text, err)
	}
	return calculator.Calc(t.text)
}

// Operands возвращает числа задания в порядке записи. New уже проверил,
// что текст разбирается, поэтому ошибка здесь - нарушение инварианта.
func (t *Task) Operands() []float64 {
	operands, err := calculator.Operands(t.text)
	if err != nil {
		panic(fmt.Sprintf("task %q: %v", t.text, err))
	}
	return operands
}

// Prompt - текст задания для показа ребёнку
func (t *Task) Prompt() string {
	return t.display.Render(t.text) + " = "
}

func (t *Task) String() string {
	return t.Prompt()
}

// Compare упорядочивает задания по их числам, а не по тексту и не по ответу:
// "2 * 10" идёт раньше "10 * 3".
func Compare(a, b *Task) int {
	return slices.Compare(a.Operands(), b.Operands())
}

func Sort(tasks []*Task) {
	slices.SortStableFunc(tasks, Compare)
}
