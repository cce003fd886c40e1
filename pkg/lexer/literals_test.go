package lexer_test

import (
	"testing"

	"bbcbasic/pkg/lexer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringLiteral(t *testing.T) {
	t.Parallel()

	tok := lexer.NewLineLexer(0, `"say ""hi"""`).NextToken()
	assert.Equal(t, lexer.STRING, tok.Type)
	assert.Equal(t, `say "hi"`, tok.Literal)
}

func TestRemarkSwallowsLine(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Tokenize(0, `x=1: REM set x: "ignored" @`)
	require.NoError(t, err)
	assert.Equal(t, []lexer.TokenType{lexer.ID, lexer.EQ, lexer.NUM, lexer.COLON, lexer.REM, lexer.EOF}, types(tokens))
	assert.Equal(t, `set x: "ignored" @`, tokens[4].Literal)
}

func TestPositions(t *testing.T) {
	t.Parallel()

	tokens, err := lexer.Tokenize(30, "a  + b")
	require.NoError(t, err)
	assert.Equal(t, lexer.Position{Line: 30, Column: 1, Offset: 0}, tokens[0].Pos)
	assert.Equal(t, lexer.Position{Line: 30, Column: 4, Offset: 3}, tokens[1].Pos)
	assert.Equal(t, lexer.Position{Line: 30, Column: 6, Offset: 5}, tokens[2].Pos)
}
