package hostlib

import (
	"time"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
)

// registerAsync wires the future-producing natives. delayed is the only
// way language code obtains a Future: the value materializes when first
// consumed, after the given delay.
func registerAsync(reg *native.Registry) {
	reg.Register("delayed", native.Fixed(2), func(args ...evaluator.Object) evaluator.Object {
		ms, ok := evaluator.Force(args[0]).(*evaluator.Integer)
		if !ok {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"delayed expects an Int delay, got %s", evaluator.TypeName(args[0]))
		}
		if ms.Value < 0 {
			return evaluator.NewError(evaluator.ValueErrorKind,
				"delayed expects a non-negative delay, got %d", ms.Value)
		}
		value := args[1]
		return &evaluator.Future{Resolve: func() evaluator.Object {
			time.Sleep(time.Duration(ms.Value) * time.Millisecond)
			return value
		}}
	})

	reg.Register("sleep", native.Fixed(1), func(args ...evaluator.Object) evaluator.Object {
		ms, ok := evaluator.Force(args[0]).(*evaluator.Integer)
		if !ok {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"sleep expects an Int, got %s", evaluator.TypeName(args[0]))
		}
		if ms.Value > 0 {
			time.Sleep(time.Duration(ms.Value) * time.Millisecond)
		}
		return evaluator.NULL
	})

	reg.Register("now", native.Fixed(0), func(args ...evaluator.Object) evaluator.Object {
		return &evaluator.Integer{Value: time.Now().UnixMilli()}
	})
}
