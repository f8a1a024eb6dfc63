package repl

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"mathdrill/internal/generator"
	"mathdrill/internal/parser"
	"mathdrill/internal/session"
	"mathdrill/internal/task"
)

const (
	operandsPrompt = "\nInsert operands. Examples: \n" +
		"3,7,9 \n" +
		"* (this means: 2,3,4,5,6,7,8,9) \n" +
		"Your operands: "

	repeatPrompt = "\nContinue? \n" +
		"      y - start again, \n" +
		"      n - select new operands \n" +
		"any key - stop \n"

	stoppedMessage = "Endless mode is stopped."
)

var errInputClosed = errors.New("input closed")

type Config struct {
	Operation generator.Operation
	Limit     int
	Shuffle   bool
	Display   task.Display
}

// REPL - бесконечный режим: раунд заданий, итог, вопрос о продолжении
type REPL struct {
	in  *bufio.Scanner
	out io.Writer
	gen *generator.Generator
	cfg Config

	// Clock подменяется в тестах
	Clock task.Clock
	// OnAnswer вызывается после каждого ответа
	OnAnswer func(s *session.Session, a *task.Attempt)
}

// New создаёт REPL. Для умножения и деления cfg.Limit должен быть generator.NoLimit.
func New(in io.Reader, out io.Writer, gen *generator.Generator, cfg Config) *REPL {
	return &REPL{
		in:  bufio.NewScanner(in),
		out: out,
		gen: gen,
		cfg: cfg,
	}
}

// Run крутит раунды, пока пользователь не остановится или не закончится ввод.
// Если operands пуст, операнды спрашиваются у пользователя.
func (r *REPL) Run(operands []int) error {
	err := r.run(operands)
	if errors.Is(err, errInputClosed) {
		err = nil
	}
	if err == nil {
		fmt.Fprintln(r.out, stoppedMessage)
	}
	return err
}

func (r *REPL) run(operands []int) error {
	var err error
	if len(operands) == 0 {
		if operands, err = r.selectOperands(); err != nil {
			return err
		}
	}

	for {
		if err := r.round(operands); err != nil {
			return err
		}

		answer, err := r.ask(repeatPrompt)
		if err != nil {
			return err
		}
		switch strings.ToLower(answer) {
		case "y":
		case "n":
			if operands, err = r.selectOperands(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (r *REPL) round(operands []int) error {
	tasks, err := r.gen.Generate(r.cfg.Operation, operands, r.cfg.Limit, r.cfg.Shuffle)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Fprintln(r.out, "No tasks for these operands.")
		return nil
	}
	for i, t := range tasks {
		tasks[i] = t.WithDisplay(r.cfg.Display)
	}

	s := session.New(r.cfg.Operation, tasks, r.Clock)
	for !s.Done() {
		_, a, err := s.Next()
		if err != nil {
			return err
		}

		value, err := r.readAnswer(a.Task)
		if err != nil {
			return err
		}
		if _, err := s.Answer(value); err != nil {
			return err
		}

		if a.IsCorrect() {
			fmt.Fprintln(r.out, "Correct!")
		} else {
			solved, _ := a.Task.Solve()
			fmt.Fprintf(r.out, "Error! %s%s\n", a.Task.Prompt(), a.Task.Display().FormatResult(solved))
		}

		if r.OnAnswer != nil {
			r.OnAnswer(s, a)
		}
	}

	r.printSummary(s.Summary())
	return nil
}

// readAnswer печатает задание и читает ответ; таймер идёт, пока ввод не станет числом
func (r *REPL) readAnswer(t *task.Task) (float64, error) {
	prompt := t.Prompt()
	for {
		line, err := r.ask(prompt)
		if err != nil {
			return 0, err
		}
		value, err := parser.ParseAnswer(line)
		if err == nil {
			return value, nil
		}
		fmt.Fprintf(r.out, "Not a number: %s\n", line)
	}
}

func (r *REPL) selectOperands() ([]int, error) {
	for {
		line, err := r.ask(operandsPrompt)
		if err != nil {
			return nil, err
		}
		if operands := parser.ParseInput(line); len(operands) > 0 {
			return operands, nil
		}
		fmt.Fprintf(r.out, "Unable to convert operands to integer values: %s\n", line)
	}
}

func (r *REPL) ask(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}
		fmt.Fprintln(r.out)
		return "", errInputClosed
	}
	return strings.TrimSpace(r.in.Text()), nil
}

func (r *REPL) printSummary(sum session.Summary) {
	fmt.Fprintf(r.out, "\nCorrect: %d of %d | fast: %d, medium: %d, slow: %d | time: %.2f s\n",
		sum.Correct, sum.Total, sum.Fast, sum.Medium, sum.Slow, sum.Elapsed.Seconds())
}
