package calculator

import (
	"math"
	"strconv"
)

// Result - значение вычисленного выражения. Integer выставлен, если
// значение математически целое.
type Result struct {
	Value   float64
	Integer bool
}

func NewResult(value float64) Result {
	integer := !math.IsInf(value, 0) && !math.IsNaN(value) && value == math.Trunc(value)
	return Result{Value: value, Integer: integer}
}

// Int возвращает значение, усечённое до целого
func (r Result) Int() int64 {
	return int64(r.Value)
}

// Equal сравнивает результат с ответом с точностью до ошибок округления
func (r Result) Equal(v float64) bool {
	return math.Abs(r.Value-v) < 1e-9
}

func (r Result) String() string {
	if r.Integer {
		return strconv.FormatInt(r.Int(), 10)
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}
