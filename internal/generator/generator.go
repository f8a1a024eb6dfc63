package generator

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"

	"mathdrill/internal/task"
)

// NoLimit отключает ограничение для Sum и Difference
const NoLimit = math.MaxInt

type Operation string

const (
	Sum            Operation = "sum"
	Difference     Operation = "difference"
	Multiplication Operation = "multiplication"
	Division       Operation = "division"
)

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrLimitUnsupported = errors.New("limit is not supported for this operation")
)

func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum", "add", "addition", "+":
		return Sum, nil
	case "difference", "sub", "subtraction", "-":
		return Difference, nil
	case "multiplication", "mul", "*":
		return Multiplication, nil
	case "division", "div", "/":
		return Division, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownOperation, s)
}

func (op Operation) Symbol() string {
	switch op {
	case Sum:
		return "+"
	case Difference:
		return "-"
	case Multiplication:
		return "*"
	case Division:
		return "/"
	}
	return "?"
}

// Range возвращает числа от lo до hi включительно. Работает и на краях
// диапазона int; размер результата ограничивает вызывающий код.
func Range(lo, hi int) []int {
	if lo > hi {
		return nil
	}
	// hi >= lo, поэтому разность в uint64 не переполняется
	span := uint64(hi) - uint64(lo)
	values := make([]int, 0, min(span, rangePrealloc-1)+1)
	for v := lo; ; v++ {
		values = append(values, v)
		if v == hi {
			break
		}
	}
	return values
}

const rangePrealloc = 1024

// Generator строит наборы заданий. Источник случайности передаётся явно,
// поэтому с одинаковым зерном результат повторяется. Не безопасен для
// одновременного использования из нескольких горутин.
type Generator struct {
	rnd *rand.Rand
}

func New(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rnd: rnd}
}

func NewSeeded(seed uint64) *Generator {
	return New(rand.New(rand.NewPCG(seed, seed)))
}

// Generate вызывает генератор нужной операции
func (g *Generator) Generate(op Operation, operands []int, limit int, shuffle bool) ([]*task.Task, error) {
	switch op {
	case Sum:
		return g.Sum(operands, limit, shuffle), nil
	case Difference:
		return g.Difference(operands, limit, shuffle), nil
	case Multiplication, Division:
		if limit != NoLimit {
			return nil, fmt.Errorf("%s: %w", op, ErrLimitUnsupported)
		}
		if op == Multiplication {
			return g.Multiplication(operands, shuffle), nil
		}
		return g.Division(operands, shuffle), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, op)
}

// Sum возвращает задания "x + y" для всех пар слагаемых. Задания с суммой
// больше limit отбрасываются.
func (g *Generator) Sum(summands []int, limit int, shuffle bool) []*task.Task {
	var tasks []*task.Task
	for _, p := range UniquePairs(summands, summands) {
		t := task.MustNew(fmt.Sprintf("%d + %d", p[0], p[1]))
		if limit != NoLimit && mustSolve(t) > float64(limit) {
			continue
		}
		tasks = append(tasks, t)
	}
	g.shuffle(tasks, shuffle)
	return tasks
}

// Difference строит задания обращением суммы: для пары [p0, p1] после
// случайной расстановки ролей уменьшаемое равно p0 + p1, вычитаемое p0.
// Задания с уменьшаемым больше limit отбрасываются.
//
// Известное ограничение: из каждой пары получается только одна из двух
// возможных разностей, часть значений не генерируется никогда.
func (g *Generator) Difference(values []int, limit int, shuffle bool) []*task.Task {
	var tasks []*task.Task
	for _, p := range UniquePairs(values, values) {
		p = g.assignRoles(p)
		minuend := p[0] + p[1]
		if limit != NoLimit && minuend > limit {
			continue
		}
		tasks = append(tasks, task.MustNew(fmt.Sprintf("%d - %d", minuend, p[0])))
	}
	g.shuffle(tasks, shuffle)
	return tasks
}

// Multiplication строит таблицу умножения: постоянные множители от 2 до
// max(9, max(multipliers)) в паре с каждым из multipliers.
func (g *Generator) Multiplication(multipliers []int, shuffle bool) []*task.Task {
	if len(multipliers) == 0 {
		return nil
	}
	constant := Range(2, max(9, slices.Max(multipliers)))

	var tasks []*task.Task
	for _, p := range UniquePairs(constant, multipliers) {
		tasks = append(tasks, task.MustNew(fmt.Sprintf("%d * %d", p[0], p[1])))
	}
	g.shuffle(tasks, shuffle)
	return tasks
}

// Division строит задания обращением умножения: делимое p0 * p1, делитель p0.
// Ограничение то же, что у Difference. Нулевой делитель заменяется вторым
// операндом пары, пара (0, 0) пропускается.
func (g *Generator) Division(multipliers []int, shuffle bool) []*task.Task {
	var tasks []*task.Task
	for _, p := range UniquePairs(multipliers, multipliers) {
		p = g.assignRoles(p)
		if p[0] == 0 {
			if p[1] == 0 {
				continue
			}
			p[0], p[1] = p[1], p[0]
		}
		tasks = append(tasks, task.MustNew(fmt.Sprintf("%d / %d", p[0]*p[1], p[0])))
	}
	g.shuffle(tasks, shuffle)
	return tasks
}

// assignRoles случайно меняет операнды пары местами, отдельно для каждой пары
func (g *Generator) assignRoles(p Pair) Pair {
	if g.rnd.IntN(2) == 1 {
		p[0], p[1] = p[1], p[0]
	}
	return p
}

func (g *Generator) shuffle(tasks []*task.Task, shuffle bool) {
	if !shuffle {
		return
	}
	g.rnd.Shuffle(len(tasks), func(i, j int) {
		tasks[i], tasks[j] = tasks[j], tasks[i]
	})
}

func mustSolve(t *task.Task) float64 {
	r, err := t.Solve()
	if err != nil {
		panic(fmt.Sprintf("generated task %q: %v", t.Text(), err))
	}
	return r.Value
}
