package interpreter

import "bbcbasic/pkg/eval"

// Frame represents a FN or PROC call in progress.
type Frame struct {
	Def    *eval.Definition // routine being executed
	Caller int              // line number the call was made from, 0 for immediate
	Scope  int              // variable scope depth before the call
}

func (f *Frame) String() string {
	return f.Def.Kind.String() + f.Def.Name
}
