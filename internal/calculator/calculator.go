package calculator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

type TokenType string

const (
	Number     TokenType = "number"
	Operator   TokenType = "operator"
	Negate     TokenType = "negate"
	LeftParen  TokenType = "left_paren"
	RightParen TokenType = "right_paren"
)

// AllowedCharacters - закрытый набор символов, из которых может состоять выражение
const AllowedCharacters = "0123456789+-*/(). "

var (
	ErrInvalidCharacters     = errors.New("invalid characters")
	ErrEmptyExpression       = errors.New("empty expression")
	ErrDivisionByZero        = errors.New("division by zero")
	ErrMismatchedParentheses = errors.New("mismatched parentheses")
	ErrInvalidExpression     = errors.New("invalid expression")
)

type Token struct {
	Type  TokenType
	Value string
}

type Calculator struct {
	tokens []Token
}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func Calc(expr string) (Result, error) {
	calc := NewCalculator()
	return calc.Calculate(expr)
}

// Validate проверяет, что выражение содержит только допустимые символы.
// Ошибка перечисляет все недопустимые символы.
func Validate(expr string) error {
	var unallowed []string
	for _, r := range expr {
		if !strings.ContainsRune(AllowedCharacters, r) {
			unallowed = append(unallowed, string(r))
		}
	}
	if len(unallowed) > 0 {
		return fmt.Errorf("%w: %q", ErrInvalidCharacters, unallowed)
	}
	return nil
}

func (c *Calculator) Calculate(expr string) (Result, error) {
	if err := c.Tokenize(expr); err != nil {
		return Result{}, fmt.Errorf("tokenization error: %w", err)
	}

	rpn, err := c.ToRPN()
	if err != nil {
		return Result{}, fmt.Errorf("RPN conversion error: %w", err)
	}

	value, err := c.EvaluateRPN(rpn)
	if err != nil {
		return Result{}, err
	}
	return NewResult(value), nil
}

// Tokenize разбивает выражение на токены. Минус в начале выражения,
// после оператора или открывающей скобки считается унарным.
func (c *Calculator) Tokenize(expr string) error {
	if err := Validate(expr); err != nil {
		return err
	}

	expr = strings.ReplaceAll(expr, " ", "")
	if expr == "" {
		return ErrEmptyExpression
	}

	c.tokens = []Token{}

	for i := 0; i < len(expr); i++ {
		char := expr[i]

		switch {
		case char == '(':
			c.tokens = append(c.tokens, Token{Type: LeftParen, Value: "("})
		case char == ')':
			c.tokens = append(c.tokens, Token{Type: RightParen, Value: ")"})
		case char == '-' && c.expectsOperand():
			c.tokens = append(c.tokens, Token{Type: Negate, Value: "neg"})
		case char == '+' || char == '-' || char == '*' || char == '/':
			c.tokens = append(c.tokens, Token{Type: Operator, Value: string(char)})
		case isDigit(char) || char == '.':
			j := i
			for j < len(expr) && (isDigit(expr[j]) || expr[j] == '.') {
				j++
			}
			c.tokens = append(c.tokens, Token{Type: Number, Value: expr[i:j]})
			i = j - 1
		default:
			return fmt.Errorf("%w: %q", ErrInvalidCharacters, string(char))
		}
	}

	return nil
}

func (c *Calculator) expectsOperand() bool {
	if len(c.tokens) == 0 {
		return true
	}
	switch c.tokens[len(c.tokens)-1].Type {
	case Operator, Negate, LeftParen:
		return true
	}
	return false
}

func isDigit(char byte) bool {
	return char >= '0' && char <= '9'
}

var precedence = map[string]int{
	"+":   1,
	"-":   1,
	"*":   2,
	"/":   2,
	"neg": 3,
}

func (c *Calculator) ToRPN() ([]Token, error) {
	var output []Token
	var stack []Token

	for _, token := range c.tokens {
		switch token.Type {
		case Number:
			output = append(output, token)
		case Negate:
			// префиксный оператор ничего не выталкивает
			stack = append(stack, token)
		case Operator:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.Type != Operator && top.Type != Negate {
					break
				}
				if precedence[top.Value] < precedence[token.Value] {
					break
				}
				output = append(output, top)
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, token)
		case LeftParen:
			stack = append(stack, token)
		case RightParen:
			foundLeftParen := false
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				if top.Type == LeftParen {
					foundLeftParen = true
					break
				}
				output = append(output, top)
			}
			if !foundLeftParen {
				return nil, ErrMismatchedParentheses
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top.Type == LeftParen {
			return nil, ErrMismatchedParentheses
		}
		output = append(output, top)
	}

	return output, nil
}

func (c *Calculator) EvaluateRPN(rpn []Token) (float64, error) {
	var stack []float64

	for _, token := range rpn {
		switch token.Type {
		case Number:
			num, err := strconv.ParseFloat(token.Value, 64)
			if err != nil {
				return 0, fmt.Errorf("%w: invalid number %s", ErrInvalidExpression, token.Value)
			}
			stack = append(stack, num)
		case Negate:
			if len(stack) < 1 {
				return 0, ErrInvalidExpression
			}
			stack[len(stack)-1] = -stack[len(stack)-1]
		case Operator:
			if len(stack) < 2 {
				return 0, ErrInvalidExpression
			}

			b := stack[len(stack)-1]
			a := stack[len(stack)-2]
			stack = stack[:len(stack)-2]

			var result float64
			switch token.Value {
			case "+":
				result = a + b
			case "-":
				result = a - b
			case "*":
				result = a * b
			case "/":
				if b == 0 {
					return 0, ErrDivisionByZero
				}
				result = a / b
			}

			stack = append(stack, result)
		}
	}

	if len(stack) != 1 {
		return 0, ErrInvalidExpression
	}

	return stack[0], nil
}

// Operands возвращает числа выражения в порядке записи. Унарный минус
// перед числом входит в значение, знаки операций и пробелы отбрасываются.
func Operands(expr string) ([]float64, error) {
	calc := NewCalculator()
	if err := calc.Tokenize(expr); err != nil {
		return nil, err
	}

	var operands []float64
	negative := false
	for _, token := range calc.tokens {
		switch token.Type {
		case Negate:
			negative = !negative
			continue
		case Number:
			num, err := strconv.ParseFloat(token.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: invalid number %s", ErrInvalidExpression, token.Value)
			}
			if negative {
				num = -num
			}
			operands = append(operands, num)
		}
		negative = false
	}
	return operands, nil
}
