package eval

import (
	"bbcbasic/pkg/lexer"
	"bbcbasic/pkg/value"
)

type assoc int

const (
	leftAssoc assoc = iota
	rightAssoc
)

// opInfo describes a binary operator; prec 0 marks tokens that are not one.
type opInfo struct {
	prec  int
	assoc assoc
	op    value.Op
}

// Lowest precedence accepted by a full expression.
const minPrecedence = 1

var precedence [lexer.NumTokens]opInfo

func init() {
	set := func(prec int, a assoc, op value.Op, types ...lexer.TokenType) {
		for _, t := range types {
			precedence[t] = opInfo{prec: prec, assoc: a, op: op}
		}
	}

	set(1, leftAssoc, value.OpOr, lexer.OR)
	set(1, leftAssoc, value.OpEor, lexer.EOR)
	set(2, leftAssoc, value.OpAnd, lexer.AND)
	set(3, leftAssoc, value.OpEq, lexer.EQ)
	set(3, leftAssoc, value.OpNe, lexer.NE)
	set(3, leftAssoc, value.OpLt, lexer.LT)
	set(3, leftAssoc, value.OpGt, lexer.GT)
	set(3, leftAssoc, value.OpLe, lexer.LE)
	set(3, leftAssoc, value.OpGe, lexer.GE)
	set(3, leftAssoc, value.OpShl, lexer.SHL)
	set(3, leftAssoc, value.OpShr, lexer.SHR)
	set(3, leftAssoc, value.OpLsr, lexer.LSR)
	set(4, leftAssoc, value.OpAdd, lexer.PLUS)
	set(4, leftAssoc, value.OpSub, lexer.MINUS)
	set(5, leftAssoc, value.OpMul, lexer.MULT)
	set(5, leftAssoc, value.OpDiv, lexer.SLASH)
	set(5, leftAssoc, value.OpIntDiv, lexer.DIV)
	set(5, leftAssoc, value.OpMod, lexer.MOD)
	set(6, rightAssoc, value.OpPow, lexer.POW)
}

// binaryOperator returns the operator details for a token, if it is one.
func binaryOperator(t lexer.TokenType) (opInfo, bool) {
	info := precedence[t]
	return info, info.prec > 0
}
