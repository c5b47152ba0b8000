package vm

import (
	"fmt"
	"math/big"

	"github.com/fxamacker/cbor/v2"

	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

const (
	bundleMagic   = "SOLIB"
	bundleVersion = 1
)

// Bundle is the on-disk form of a compiled script (.solib). Programs
// whose chunks carry interpreter-fallback AST constants cannot be
// bundled; they must be run from source.
type Bundle struct {
	Magic   string     `cbor:"magic"`
	Version int        `cbor:"version"`
	Main    *chunkData `cbor:"main"`
}

type chunkData struct {
	Code      []byte         `cbor:"code"`
	Lines     []int          `cbor:"lines"`
	Constants []constantData `cbor:"constants"`
}

type constantData struct {
	Kind  string  `cbor:"kind"`
	Int   int64   `cbor:"int,omitempty"`
	Float float64 `cbor:"float,omitempty"`
	Bool  bool    `cbor:"bool,omitempty"`
	Str   string  `cbor:"str,omitempty"`
	Scale int     `cbor:"scale,omitempty"`
	Msg   string  `cbor:"msg,omitempty"`
	Line  int     `cbor:"line,omitempty"`
	Fn    *fnData `cbor:"fn,omitempty"`
}

type fnData struct {
	Chunk        *chunkData `cbor:"chunk"`
	NumParams    int        `cbor:"params"`
	Variadic     bool       `cbor:"variadic,omitempty"`
	UpvalueCount int        `cbor:"upvalues,omitempty"`
	Name         string     `cbor:"name,omitempty"`
}

// EncodeBundle serializes a compiled script.
func EncodeBundle(fn *CompiledFunction) ([]byte, error) {
	main, err := encodeChunk(fn.Chunk)
	if err != nil {
		return nil, err
	}
	return cbor.Marshal(&Bundle{Magic: bundleMagic, Version: bundleVersion, Main: main})
}

// DecodeBundle restores a compiled script from its serialized form.
func DecodeBundle(data []byte) (*CompiledFunction, error) {
	var bundle Bundle
	if err := cbor.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if bundle.Magic != bundleMagic {
		return nil, fmt.Errorf("not a compiled bundle")
	}
	if bundle.Version != bundleVersion {
		return nil, fmt.Errorf("unsupported bundle version %d", bundle.Version)
	}
	chunk, err := decodeChunk(bundle.Main)
	if err != nil {
		return nil, err
	}
	return &CompiledFunction{Chunk: chunk, Name: "(script)"}, nil
}

func encodeChunk(chunk *Chunk) (*chunkData, error) {
	data := &chunkData{Code: chunk.Code, Lines: chunk.Lines}
	for _, obj := range chunk.Constants {
		constant, err := encodeConstant(obj)
		if err != nil {
			return nil, err
		}
		data.Constants = append(data.Constants, constant)
	}
	return data, nil
}

func encodeConstant(obj evaluator.Object) (constantData, error) {
	switch v := obj.(type) {
	case *evaluator.Integer:
		return constantData{Kind: "int", Int: v.Value}, nil
	case *evaluator.Float:
		return constantData{Kind: "float", Float: v.Value}, nil
	case *evaluator.Decimal:
		return constantData{Kind: "decimal", Str: v.Value.RatString(), Scale: v.Scale}, nil
	case *evaluator.Boolean:
		return constantData{Kind: "bool", Bool: v.Value}, nil
	case *evaluator.Null:
		return constantData{Kind: "null"}, nil
	case *evaluator.String:
		return constantData{Kind: "string", Str: v.Value}, nil
	case *evaluator.Error:
		return constantData{Kind: "error", Str: v.Kind, Msg: v.Message, Line: v.Line}, nil
	case *CompiledFunction:
		chunk, err := encodeChunk(v.Chunk)
		if err != nil {
			return constantData{}, err
		}
		return constantData{Kind: "fn", Fn: &fnData{
			Chunk:        chunk,
			NumParams:    v.NumParams,
			Variadic:     v.Variadic,
			UpvalueCount: v.UpvalueCount,
			Name:         v.Name,
		}}, nil
	case *astNode:
		return constantData{}, fmt.Errorf(
			"program uses constructs that cannot be precompiled; run it from source")
	default:
		return constantData{}, fmt.Errorf("cannot serialize constant of type %s", obj.Type())
	}
}

func decodeChunk(data *chunkData) (*Chunk, error) {
	chunk := &Chunk{Code: data.Code, Lines: data.Lines}
	for _, constant := range data.Constants {
		obj, err := decodeConstant(constant)
		if err != nil {
			return nil, err
		}
		chunk.Constants = append(chunk.Constants, obj)
	}
	return chunk, nil
}

func decodeConstant(data constantData) (evaluator.Object, error) {
	switch data.Kind {
	case "int":
		return &evaluator.Integer{Value: data.Int}, nil
	case "float":
		return &evaluator.Float{Value: data.Float}, nil
	case "decimal":
		rat, ok := new(big.Rat).SetString(data.Str)
		if !ok {
			return nil, fmt.Errorf("corrupt decimal constant %q", data.Str)
		}
		return &evaluator.Decimal{Value: rat, Scale: data.Scale}, nil
	case "bool":
		return evaluator.NativeBoolToBooleanObject(data.Bool), nil
	case "null":
		return evaluator.NULL, nil
	case "string":
		return &evaluator.String{Value: data.Str}, nil
	case "error":
		err := evaluator.NewError(data.Str, "%s", data.Msg)
		err.Line = data.Line
		return err.AsValue(), nil
	case "fn":
		chunk, err := decodeChunk(data.Fn.Chunk)
		if err != nil {
			return nil, err
		}
		return &CompiledFunction{
			Chunk:        chunk,
			NumParams:    data.Fn.NumParams,
			Variadic:     data.Fn.Variadic,
			UpvalueCount: data.Fn.UpvalueCount,
			Name:         data.Fn.Name,
		}, nil
	default:
		return nil, fmt.Errorf("corrupt bundle: unknown constant kind %q", data.Kind)
	}
}
