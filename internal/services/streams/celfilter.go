package streamsvc

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// streamFilter wraps a compiled CEL program evaluated per stream. When
// disabled, Eval always returns true.
type streamFilter struct {
	prog    cel.Program
	enabled bool
}

func newStreamFilter(expr string) (streamFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return streamFilter{}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.UintType),
		cel.Variable("deposit", cel.IntType),
		cel.Variable("remaining", cel.IntType),
		cel.Variable("start", cel.IntType),
		cel.Variable("stop", cel.IntType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("recipient", cel.StringType),
		// derived at evaluation time
		cel.Variable("vested", cel.IntType),
		cel.Variable("available", cel.IntType),
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return streamFilter{}, err
	}
	ast, iss := env.Compile(expr)
	if iss != nil && iss.Err() != nil {
		return streamFilter{}, iss.Err()
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return streamFilter{}, fmt.Errorf("filter must evaluate to bool, got %s", ast.OutputType())
	}
	prog, err := env.Program(ast)
	if err != nil {
		return streamFilter{}, err
	}
	return streamFilter{prog: prog, enabled: true}, nil
}

func (f streamFilter) Eval(v StreamView) bool {
	if !f.enabled {
		return true
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":        v.ID,
		"deposit":   v.Deposit,
		"remaining": v.Remaining,
		"start":     v.Start,
		"stop":      v.Stop,
		"sender":    v.Sender.String(),
		"recipient": v.Recipient.String(),
		"vested":    v.Vested,
		"available": v.Available,
		"now_ms":    v.AtMs,
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
