package lexer_test

import (
	"testing"

	"bbcbasic/pkg/lexer"

	"github.com/stretchr/testify/assert"
)

func TestNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input       string
		expected    lexer.TokenType
		literal     string
		description string
	}{
		{"42", lexer.NUM, "42", "integer"},
		{"0", lexer.NUM, "0", "zero"},
		{"3.14", lexer.NUM, "3.14", "simple float"},
		{".5", lexer.NUM, ".5", "float without leading digit"},
		{"7.", lexer.NUM, "7.", "float with trailing point"},
		{"1E5", lexer.NUM, "1E5", "scientific notation"},
		{"2.5e-3", lexer.NUM, "2.5e-3", "negative exponent"},
		{"&FF", lexer.HEXNUM, "FF", "hexadecimal"},
		{"&7fffffff", lexer.HEXNUM, "7fffffff", "lower case hexadecimal"},
		{"%1010", lexer.BINNUM, "1010", "binary"},
		{"2147483648", lexer.NUM, "2147483648", "beyond 32 bits"},
	}

	for _, test := range tests {
		t.Run(test.description, func(t *testing.T) {
			tok := lexer.NewLineLexer(0, test.input).NextToken()
			assert.Equal(t, test.expected, tok.Type)
			assert.Equal(t, test.literal, tok.Literal)
			assert.Equal(t, test.input, tok.Lexeme)
		})
	}
}
