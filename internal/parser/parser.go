package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	DefaultDelimiter = ","

	// AllOperands - ввод "*" означает стандартную таблицу 2..9
	AllOperands      = "*"
	allOperandsValue = "2,3,4,5,6,7,8,9"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// ParseOperands разбирает список целых чисел через разделитель.
// Если хотя бы одно значение не число, возвращается пустой список.
func ParseOperands(input, delimiter string) []int {
	parts := strings.Split(input, delimiter)

	operands := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return []int{}
		}
		operands = append(operands, v)
	}
	return operands
}

// ParseInput разбирает ввод пользователя: "3,7,9" или "*"
func ParseInput(input string) []int {
	input = strings.TrimSpace(input)
	if input == AllOperands {
		input = allOperandsValue
	}
	return ParseOperands(input, DefaultDelimiter)
}

// ParseAnswer разбирает ответ ребёнка. Допускается десятичная точка или запятая.
func ParseAnswer(input string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(input), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAnswer, input)
	}
	return v, nil
}
