package vm

import (
	"github.com/solisoft/soli-lang-sub002/internal/evaluator"
)

// Chunk is a compiled unit: instruction stream, constant pool and a
// per-byte source line table used for runtime error positions.
type Chunk struct {
	Code      []byte
	Constants []evaluator.Object
	Lines     []int
}

func NewChunk() *Chunk {
	return &Chunk{}
}

func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

func (c *Chunk) WriteOp(op Opcode, line int) {
	c.Write(byte(op), line)
}

// AddConstant interns simple scalar constants so repeated literals share
// one pool slot. Composite objects always get a fresh slot.
func (c *Chunk) AddConstant(obj evaluator.Object) int {
	switch v := obj.(type) {
	case *evaluator.Integer:
		for i, existing := range c.Constants {
			if e, ok := existing.(*evaluator.Integer); ok && e.Value == v.Value {
				return i
			}
		}
	case *evaluator.String:
		for i, existing := range c.Constants {
			if e, ok := existing.(*evaluator.String); ok && e.Value == v.Value {
				return i
			}
		}
	case *evaluator.Float:
		for i, existing := range c.Constants {
			if e, ok := existing.(*evaluator.Float); ok && e.Value == v.Value {
				return i
			}
		}
	}
	c.Constants = append(c.Constants, obj)
	return len(c.Constants) - 1
}

// Line reports the source line for the instruction at offset ip.
func (c *Chunk) Line(ip int) int {
	if ip >= 0 && ip < len(c.Lines) {
		return c.Lines[ip]
	}
	return 0
}

func readUint16(code []byte, ip int) int {
	return int(code[ip])<<8 | int(code[ip+1])
}
