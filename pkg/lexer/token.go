package lexer

import (
	"fmt"
)

type TokenType int
type TokenCategory int

type Token struct {
	Type    TokenType // Type of the token
	Lexeme  string    // Actual text from the program line
	Literal string    // Literal value (if applicable), empty string if not
	Pos     Position  // Position in the program line
}

// NewToken creates a new Token instance
func NewToken(tokenType TokenType, lexeme string, literal string, pos Position) Token {
	return Token{
		Type:    tokenType,
		Lexeme:  lexeme,
		Literal: literal,
		Pos:     pos,
	}
}

const (
	NONE TokenCategory = iota
	KEYWORD
	BUILTIN
	IDENTIFIER
	LITERAL
	OPERATOR
	DELIMITER
)

const (
	EOF TokenType = iota // End of line

	// statement keywords
	DEF     // DEF
	LOCAL   // LOCAL
	RETURN  // RETURN (reference parameter marker)
	ENDPROC // ENDPROC
	PRINT   // PRINT
	LET     // LET
	DIM     // DIM
	END     // END
	REM     // REM
	IF      // IF
	THEN    // THEN
	ELSE    // ELSE
	BPUT    // BPUT#
	CLOSE   // CLOSE#

	// call prefixes
	FN   // FN
	PROC // PROC

	// word operators
	AND // AND
	OR  // OR
	EOR // EOR
	NOT // NOT
	DIV // DIV
	MOD // MOD

	TRUE  // TRUE
	FALSE // FALSE

	// built-in functions
	ABS     // ABS
	INT     // INT
	SGN     // SGN
	SQR     // SQR
	SIN     // SIN
	COS     // COS
	TAN     // TAN
	ATN     // ATN
	EXP     // EXP
	LN      // LN
	LOG     // LOG
	PI      // PI
	LEN     // LEN
	ASC     // ASC
	CHRS    // CHR$
	STRS    // STR$
	VAL     // VAL
	LEFTS   // LEFT$
	RIGHTS  // RIGHT$
	MIDS    // MID$
	STRINGS // STRING$
	INSTR   // INSTR
	SUM     // SUM
	OPENUP  // OPENUP
	BGET    // BGET#
	EOFH    // EOF#

	ID     // identifier, including its type suffix
	NUM    // decimal number
	HEXNUM // &hex number
	BINNUM // %binary number
	STRING // string literal

	PLUS  // +
	MINUS // -
	MULT  // *
	SLASH // /
	POW   // ^
	EQ    // =
	NE    // <>
	LT    // <
	GT    // >
	LE    // <=
	GE    // >=
	SHL   // <<
	SHR   // >>
	LSR   // >>>

	COMMA      // ,
	COLON      // :
	SEMICOLON  // ;
	APOSTROPHE // '
	HASH       // #
	LPAREN     // (
	RPAREN     // )

	ILLEGAL // illegal token

	NumTokens // size of per-token tables
)

var Keywords = map[string]TokenType{
	"DEF":     DEF,
	"LOCAL":   LOCAL,
	"RETURN":  RETURN,
	"ENDPROC": ENDPROC,
	"PRINT":   PRINT,
	"LET":     LET,
	"DIM":     DIM,
	"END":     END,
	"REM":     REM,
	"IF":      IF,
	"THEN":    THEN,
	"ELSE":    ELSE,
	"BPUT#":   BPUT,
	"CLOSE#":  CLOSE,
	"FN":      FN,
	"PROC":    PROC,
	"AND":     AND,
	"OR":      OR,
	"EOR":     EOR,
	"NOT":     NOT,
	"DIV":     DIV,
	"MOD":     MOD,
	"TRUE":    TRUE,
	"FALSE":   FALSE,
	"ABS":     ABS,
	"INT":     INT,
	"SGN":     SGN,
	"SQR":     SQR,
	"SIN":     SIN,
	"COS":     COS,
	"TAN":     TAN,
	"ATN":     ATN,
	"EXP":     EXP,
	"LN":      LN,
	"LOG":     LOG,
	"PI":      PI,
	"LEN":     LEN,
	"ASC":     ASC,
	"CHR$":    CHRS,
	"STR$":    STRS,
	"VAL":     VAL,
	"LEFT$":   LEFTS,
	"RIGHT$":  RIGHTS,
	"MID$":    MIDS,
	"STRING$": STRINGS,
	"INSTR":   INSTR,
	"SUM":     SUM,
	"OPENUP":  OPENUP,
	"BGET#":   BGET,
	"EOF#":    EOFH,
}

var symbols = map[TokenType]string{
	ID:         "identifier",
	NUM:        "number",
	HEXNUM:     "&number",
	BINNUM:     "%number",
	STRING:     "string",
	PLUS:       "+",
	MINUS:      "-",
	MULT:       "*",
	SLASH:      "/",
	POW:        "^",
	EQ:         "=",
	NE:         "<>",
	LT:         "<",
	GT:         ">",
	LE:         "<=",
	GE:         ">=",
	SHL:        "<<",
	SHR:        ">>",
	LSR:        ">>>",
	COMMA:      ",",
	COLON:      ":",
	SEMICOLON:  ";",
	APOSTROPHE: "'",
	HASH:       "#",
	LPAREN:     "(",
	RPAREN:     ")",
	EOF:        "end of line",
}

var names = func() map[TokenType]string {
	m := make(map[TokenType]string, len(Keywords)+len(symbols))
	for k, v := range Keywords {
		m[v] = k
	}
	for k, v := range symbols {
		m[k] = v
	}
	return m
}()

// TokenToString converts a TokenType to its string representation
func (t Token) TokenToString() (string, bool) {
	str, ok := names[t.Type]
	return str, ok
}

// String returns a string representation of the Token
func (t Token) String() string {
	if t.Literal == "" {
		return fmt.Sprintf("T_{%s, %v, nil, %s}",
			t.Type, t.Lexeme, t.Pos.String())
	}

	return fmt.Sprintf("T_{%s, %v, %q, %s}",
		t.Type, t.Lexeme, t.Literal, t.Pos.String())
}

// String returns a string representation of the TokenType
func (t TokenType) String() string {
	if str, ok := (Token{Type: t}).TokenToString(); ok {
		return str
	}

	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// GetCategory returns the category of the token
func (t TokenType) GetCategory() TokenCategory {
	switch {
	case t >= DEF && t <= PROC:
		return KEYWORD
	case t >= AND && t <= MOD:
		return OPERATOR
	case t == TRUE || t == FALSE:
		return LITERAL
	case t >= ABS && t <= EOFH:
		return BUILTIN
	case t == ID:
		return IDENTIFIER
	case t >= NUM && t <= STRING:
		return LITERAL
	case t >= PLUS && t <= LSR:
		return OPERATOR
	case t >= COMMA && t <= RPAREN:
		return DELIMITER
	default:
		return NONE
	}
}

// EndsStatement reports whether the token terminates a statement
func (t TokenType) EndsStatement() bool {
	return t == EOF || t == COLON || t == ELSE
}
