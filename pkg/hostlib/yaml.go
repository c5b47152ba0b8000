package hostlib

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
	"github.com/solisoft/soli-lang-sub002/internal/native"
)

// registerYAML wires yamlEncode and yamlDecode. Hashes map to YAML
// mappings, arrays to sequences, scalars to scalars. Decimals encode as
// their display string since YAML has no exact-decimal scalar.
func registerYAML(reg *native.Registry) {
	reg.Register("yamlEncode", native.Fixed(1), func(args ...evaluator.Object) evaluator.Object {
		value, errObj := yamlValue(args[0])
		if errObj != nil {
			return errObj
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return evaluator.NewError(evaluator.ValueErrorKind, "yamlEncode: %v", err)
		}
		return &evaluator.String{Value: string(out)}
	})

	reg.Register("yamlDecode", native.Fixed(1), func(args ...evaluator.Object) evaluator.Object {
		src, ok := evaluator.Force(args[0]).(*evaluator.String)
		if !ok {
			return evaluator.NewError(evaluator.TypeErrorKind,
				"yamlDecode expects a String, got %s", evaluator.TypeName(args[0]))
		}
		var data interface{}
		if err := yaml.Unmarshal([]byte(src.Value), &data); err != nil {
			return evaluator.NewError(evaluator.ValueErrorKind, "yamlDecode: %v", err)
		}
		return yamlObject(data)
	})
}

// yamlValue converts a language value to the shape yaml.Marshal expects.
// The returned *evaluator.Error is a raised TypeError for values that
// have no data representation.
func yamlValue(obj evaluator.Object) (interface{}, *evaluator.Error) {
	switch v := evaluator.Force(obj).(type) {
	case *evaluator.Null:
		return nil, nil
	case *evaluator.Boolean:
		return v.Value, nil
	case *evaluator.Integer:
		return v.Value, nil
	case *evaluator.Float:
		return v.Value, nil
	case *evaluator.Decimal:
		return evaluator.DisplayString(v), nil
	case *evaluator.String:
		return v.Value, nil
	case *evaluator.Array:
		out := make([]interface{}, len(v.Elements))
		for i, el := range v.Elements {
			converted, err := yamlValue(el)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case *evaluator.Hash:
		out := make(map[string]interface{}, len(v.Order))
		for _, key := range v.Order {
			pair, ok := v.Pairs[key]
			if !ok {
				continue
			}
			converted, err := yamlValue(pair.Value)
			if err != nil {
				return nil, err
			}
			out[evaluator.DisplayString(pair.Key)] = converted
		}
		return out, nil
	default:
		return nil, evaluator.NewError(evaluator.TypeErrorKind,
			"cannot encode %s to YAML", evaluator.TypeName(obj))
	}
}

// yamlObject converts a yaml.Unmarshal result to language values.
func yamlObject(data interface{}) evaluator.Object {
	switch v := data.(type) {
	case nil:
		return evaluator.NULL
	case bool:
		return evaluator.NativeBoolToBooleanObject(v)
	case int:
		return &evaluator.Integer{Value: int64(v)}
	case int64:
		return &evaluator.Integer{Value: v}
	case float64:
		return &evaluator.Float{Value: v}
	case string:
		return &evaluator.String{Value: v}
	case []interface{}:
		elements := make([]evaluator.Object, len(v))
		for i, item := range v {
			elements[i] = yamlObject(item)
		}
		return &evaluator.Array{Elements: elements}
	case map[string]interface{}:
		hash := evaluator.NewHash()
		for key, item := range v {
			hash.Set(&evaluator.String{Value: key}, yamlObject(item))
		}
		return hash
	case map[interface{}]interface{}:
		hash := evaluator.NewHash()
		for key, item := range v {
			hash.Set(&evaluator.String{Value: fmt.Sprintf("%v", key)}, yamlObject(item))
		}
		return hash
	default:
		return evaluator.NewError(evaluator.ValueErrorKind,
			"yamlDecode: unsupported value of type %T", data)
	}
}
