package eval_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bbcbasic/pkg/eval"
	"bbcbasic/pkg/value"
)

// pipe is an in-memory stream with a single handle.
type pipe struct {
	addr string
	in   []int
	out  []byte
}

var errClosed = errors.New("closed")

func (p *pipe) Open(addr string) (int, error) {
	p.addr = addr
	return 1, nil
}

func (p *pipe) NextByte(h int) (int, error) {
	if h != 1 {
		return 0, errClosed
	}
	if len(p.in) == 0 {
		return eval.EndOfStream, nil
	}
	b := p.in[0]
	p.in = p.in[1:]
	return b, nil
}

func (p *pipe) PutByte(_ int, b byte) error {
	p.out = append(p.out, b)
	return nil
}

func (p *pipe) PutBlock(_ int, data []byte) error {
	p.out = append(p.out, data...)
	return nil
}

func (p *pipe) EOF(int) (bool, error) {
	return len(p.in) == 0, nil
}

func (p *pipe) Close(int) error {
	return nil
}

func TestStreamBuiltins(t *testing.T) {
	t.Parallel()

	p := &pipe{in: []int{65, eval.NoData, 66}}
	e := newEnv(t, eval.WithStreams(p))

	assert.Equal(t, value.Int(1), e.mustEval(t, `OPENUP "ip4:example.org:80"`))
	assert.Equal(t, "ip4:example.org:80", p.addr)

	e.set(t, "h%", value.Int(1))
	assert.Equal(t, value.Int(66), e.mustEval(t, "BGET#h%+1"))
	assert.Equal(t, value.Int(eval.NoData), e.mustEval(t, "BGET#h%"))
	assert.Equal(t, value.Int(value.False), e.mustEval(t, "EOF#h%"))
	assert.Equal(t, value.Int(66), e.mustEval(t, "BGET#h%"))
	assert.Equal(t, value.Int(value.True), e.mustEval(t, "EOF#h%"))
	assert.Equal(t, value.Int(eval.EndOfStream), e.mustEval(t, "BGET#h%"))

	_, err := e.eval(t, "BGET#2")
	require.ErrorIs(t, err, eval.ErrBadHandle)
	assert.ErrorIs(t, err, errClosed)
}
