package hostlib

import (
	"github.com/google/uuid"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
)

// registerUUID wires uuidNew and uuidParse.
func registerUUID(reg *native.Registry) {
	reg.Register("uuidNew", native.Fixed(0), func(args ...evaluator.Object) evaluator.Object {
		return &evaluator.String{Value: uuid.NewString()}
	})

	reg.Register("uuidParse", native.Fixed(1), func(args ...evaluator.Object) evaluator.Object {
		src, ok := evaluator.Force(args[0]).(*evaluator.String)
		if !ok {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"uuidParse expects a String, got %s", evaluator.TypeName(args[0]))
		}
		id, err := uuid.Parse(src.Value)
		if err != nil {
			return evaluator.NewError(evaluator.ValueErrorKind, "uuidParse: %v", err)
		}
		return &evaluator.String{Value: id.String()}
	})
}
