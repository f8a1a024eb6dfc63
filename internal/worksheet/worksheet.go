package worksheet

import (
	"errors"
	"fmt"
	"io"

	"mathdrill/internal/generator"
	"mathdrill/internal/task"

	"codeberg.org/go-pdf/fpdf"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrNoTasks = errors.New("worksheet has no tasks")

type Config struct {
	PageSize   string
	MarginsMM  float64
	FontFamily string
	FontSize   float64
	Columns    int
	AnswerKey  bool
}

func DefaultConfig() Config {
	return Config{
		PageSize:   "A4",
		MarginsMM:  15,
		FontFamily: "Helvetica",
		FontSize:   14,
		Columns:    3,
		AnswerKey:  true,
	}
}

// Writer печатает задания на лист PDF, ответы - на отдельной странице
type Writer struct {
	cfg Config
}

func NewWriter(cfg Config) *Writer {
	def := DefaultConfig()
	if cfg.PageSize == "" {
		cfg.PageSize = def.PageSize
	}
	if cfg.MarginsMM <= 0 {
		cfg.MarginsMM = def.MarginsMM
	}
	if cfg.FontFamily == "" {
		cfg.FontFamily = def.FontFamily
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	if cfg.Columns <= 0 {
		cfg.Columns = def.Columns
	}
	return &Writer{cfg: cfg}
}

func (w *Writer) Write(out io.Writer, op generator.Operation, tasks []*task.Task) error {
	pdf, err := w.build(op, tasks)
	if err != nil {
		return err
	}
	return pdf.Output(out)
}

func (w *Writer) WriteFile(path string, op generator.Operation, tasks []*task.Task) error {
	pdf, err := w.build(op, tasks)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

func Title(op generator.Operation) string {
	return fmt.Sprintf("%s Worksheet", cases.Title(language.English).String(string(op)))
}

func (w *Writer) build(op generator.Operation, tasks []*task.Task) (*fpdf.Fpdf, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	pdf := fpdf.New("P", "mm", w.cfg.PageSize, "")
	pdf.SetMargins(w.cfg.MarginsMM, w.cfg.MarginsMM, w.cfg.MarginsMM)
	// встроенные шрифты в cp1252: там есть × и ÷
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := Title(op)
	pdf.SetTitle(title, true)

	pdf.AddPage()
	w.heading(pdf, title)
	w.grid(pdf, tasks, func(t *task.Task) string {
		return tr(t.Prompt() + "____")
	})

	if w.cfg.AnswerKey {
		pdf.AddPage()
		w.heading(pdf, title+" Answer Key")
		w.grid(pdf, tasks, func(t *task.Task) string {
			answer := "?"
			if r, err := t.Solve(); err == nil {
				answer = t.Display().FormatResult(r)
			}
			return tr(t.Prompt() + answer)
		})
	}

	if pdf.Err() {
		return nil, fmt.Errorf("worksheet: %w", pdf.Error())
	}
	return pdf, nil
}

func (w *Writer) heading(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont(w.cfg.FontFamily, "B", 22)
	pdf.CellFormat(0, 15, text, "", 1, "C", false, 0, "")
	pdf.Ln(10)
}

func (w *Writer) grid(pdf *fpdf.Fpdf, tasks []*task.Task, text func(*task.Task) string) {
	pageWidth, _ := pdf.GetPageSize()
	cellWidth := (pageWidth - 2*w.cfg.MarginsMM) / float64(w.cfg.Columns)
	rowHeight := w.cfg.FontSize * 0.8

	pdf.SetFont(w.cfg.FontFamily, "", w.cfg.FontSize)
	for i, t := range tasks {
		ln := 0
		if (i+1)%w.cfg.Columns == 0 || i == len(tasks)-1 {
			ln = 1
		}
		pdf.CellFormat(cellWidth, rowHeight, fmt.Sprintf("%d. %s", i+1, text(t)), "", ln, "L", false, 0, "")
	}
}
