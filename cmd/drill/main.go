package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"mathdrill/internal/database"
	"mathdrill/internal/generator"
	"mathdrill/internal/parser"
	"mathdrill/internal/repl"
	"mathdrill/internal/session"
	"mathdrill/internal/task"
	"mathdrill/internal/worksheet"
)

// локальные занятия сохраняются без учётной записи
const localUserID = 0

// limitFlag - значение -limit. Без флага ограничения нет, отрицательные
// значения допустимы.
type limitFlag struct {
	value int
}

func newLimitFlag() *limitFlag {
	return &limitFlag{value: generator.NoLimit}
}

func (f *limitFlag) String() string {
	if f == nil || f.value == generator.NoLimit {
		return "none"
	}
	return strconv.Itoa(f.value)
}

func (f *limitFlag) Set(s string) error {
	if s == "none" {
		f.value = generator.NoLimit
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("limit must be an integer or none: %q", s)
	}
	f.value = v
	return nil
}

func main() {
	var (
		opName   = flag.String("op", "mul", "операция: sum, difference, multiplication, division")
		operands = flag.String("operands", "", "операнды через запятую или * (2..9); если пусто, спросить")
		limit    = newLimitFlag()
		seed     = flag.Uint64("seed", 0, "зерно генератора (0 - случайное)")
		ordered  = flag.Bool("ordered", false, "не перемешивать задания")
		signs    = flag.Bool("signs", false, "печатать знаки × и ÷")
		pdfPath  = flag.String("pdf", "", "вместо занятия записать рабочий лист PDF в файл")
		answers  = flag.Bool("answers", true, "добавить в PDF страницу с ответами")
		dbPath   = flag.String("db", "", "сохранять ответы в базу SQLite по этому пути")
		verbose  = flag.Bool("v", false, "подробный журнал в stderr")
	)
	flag.Var(limit, "limit", "ограничение для суммы и разности (none - без ограничения)")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	if err := run(*opName, *operands, limit.value, *seed, *ordered, *signs, *pdfPath, *answers, *dbPath); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(opName, operandsInput string, limit int, seed uint64, ordered, signs bool, pdfPath string, answers bool, dbPath string) error {
	op, err := generator.ParseOperation(opName)
	if err != nil {
		return err
	}

	g := generator.New(nil)
	if seed != 0 {
		g = generator.NewSeeded(seed)
	}

	display := task.DefaultDisplay()
	if signs {
		display = task.Typographic()
	}

	var operands []int
	if operandsInput != "" {
		if operands = parser.ParseInput(operandsInput); len(operands) == 0 {
			return fmt.Errorf("unable to convert operands to integer values: %s", operandsInput)
		}
	}

	if pdfPath != "" {
		return writeWorksheet(g, op, operands, limit, !ordered, display, pdfPath, answers)
	}

	r := repl.New(os.Stdin, os.Stdout, g, repl.Config{
		Operation: op,
		Limit:     limit,
		Shuffle:   !ordered,
		Display:   display,
	})

	if dbPath != "" {
		store, err := database.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		r.OnAnswer = func(s *session.Session, a *task.Attempt) {
			rec := s.Record(a, localUserID)
			if err := store.SaveAttempt(&rec); err != nil {
				fmt.Fprintln(os.Stderr, "error:", err)
			}
		}
	}

	return r.Run(operands)
}

func writeWorksheet(g *generator.Generator, op generator.Operation, operands []int, limit int, shuffle bool, display task.Display, path string, answers bool) error {
	if len(operands) == 0 {
		operands = parser.ParseInput(parser.AllOperands)
	}

	tasks, err := g.Generate(op, operands, limit, shuffle)
	if err != nil {
		return err
	}
	for i, t := range tasks {
		tasks[i] = t.WithDisplay(display)
	}

	cfg := worksheet.DefaultConfig()
	cfg.AnswerKey = answers
	if err := worksheet.NewWriter(cfg).WriteFile(path, op, tasks); err != nil {
		return err
	}

	fmt.Printf("%s: %d tasks written to %s\n", worksheet.Title(op), len(tasks), path)
	return nil
}
