package lexer

import (
	"regexp"
	"sort"
	"strings"
)

// Non-keyword token regex patterns
var tokenRegexes = map[TokenType]*regexp.Regexp{
	LSR: regexp.MustCompile(`^>>>`),
	SHR: regexp.MustCompile(`^>>`),
	SHL: regexp.MustCompile(`^<<`),
	LE:  regexp.MustCompile(`^<=`),
	GE:  regexp.MustCompile(`^>=`),
	NE:  regexp.MustCompile(`^<>`),

	PLUS:  regexp.MustCompile(`^\+`),
	MINUS: regexp.MustCompile(`^-`),
	MULT:  regexp.MustCompile(`^\*`),
	SLASH: regexp.MustCompile(`^/`),
	POW:   regexp.MustCompile(`^\^`),
	EQ:    regexp.MustCompile(`^=`),
	LT:    regexp.MustCompile(`^<`),
	GT:    regexp.MustCompile(`^>`),

	COMMA:      regexp.MustCompile(`^,`),
	COLON:      regexp.MustCompile(`^:`),
	SEMICOLON:  regexp.MustCompile(`^;`),
	APOSTROPHE: regexp.MustCompile(`^'`),
	HASH:       regexp.MustCompile(`^#`),
	LPAREN:     regexp.MustCompile(`^\(`),
	RPAREN:     regexp.MustCompile(`^\)`),

	NUM:    regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`),
	HEXNUM: regexp.MustCompile(`^&[0-9A-Fa-f]+`),
	BINNUM: regexp.MustCompile(`^%[01]+`),
	STRING: regexp.MustCompile(`^"([^"]|"")*"`),
	ID:     regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(%%|%|\$)?`),
}

var (
	whitespaceRegex = regexp.MustCompile(`^[ \t\r\n]+`)
)

// Token precedence order for matching (keywords longest first, then operators, literals and identifiers)
var tokenPrecedenceOrder []TokenType

func init() {
	words := make([]string, 0, len(Keywords))
	for w := range Keywords {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if len(words[i]) != len(words[j]) {
			return len(words[i]) > len(words[j])
		}
		return words[i] < words[j]
	})

	for _, w := range words {
		t := Keywords[w]
		raw := "^" + regexp.QuoteMeta(w)
		// FN and PROC glue directly onto the routine name; '$' and '#' end the word already
		if t != FN && t != PROC && !strings.HasSuffix(w, "$") && !strings.HasSuffix(w, "#") {
			raw += `\b`
		}
		tokenRegexes[t] = regexp.MustCompile(raw)
		tokenPrecedenceOrder = append(tokenPrecedenceOrder, t)
	}

	tokenPrecedenceOrder = append(tokenPrecedenceOrder,
		LSR, SHR, SHL, LE, GE, NE,
		PLUS, MINUS, MULT, SLASH, POW, EQ, LT, GT,
		COMMA, COLON, SEMICOLON, APOSTROPHE, HASH, LPAREN, RPAREN,
		HEXNUM, BINNUM, NUM, STRING, ID,
	)
}

// Match the highest priority token at the start of the string
func MatchToken(s string) (TokenType, string, bool) {
	if s == "" {
		return EOF, "", false
	} else if match := whitespaceRegex.FindString(s); match != "" {
		return EOF, match, true
	}

	for _, tokenType := range tokenPrecedenceOrder {
		if regex, ok := tokenRegexes[tokenType]; ok {
			if match := regex.FindString(s); match != "" {
				return tokenType, match, true
			}
		}
	}

	return ILLEGAL, string(s[0]), false
}
