package wgpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/videograph/binding"
)

// encodeUniform lays v out the way WGSL expects it in a uniform buffer of
// size bytes. A mat3x3<f32> is three vec3 columns, each padded to 16 bytes.
func encodeUniform(v binding.Value, size uint64) ([]byte, error) {
	buf := make([]byte, size)
	put := func(off int, f float32) {
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(f))
	}
	need := uint64(0)
	switch v.Kind() {
	case binding.KindFloat:
		need = 4
	case binding.KindInt:
		need = 4
	case binding.KindVec2:
		need = 8
	case binding.KindVec3:
		need = 12
	case binding.KindMat3:
		need = 48
	default:
		return nil, fmt.Errorf("%w: %s is not a uniform", binding.ErrUnsupportedKind, v.Kind())
	}
	if size < need {
		return nil, fmt.Errorf("%w: %s needs %d bytes, buffer has %d", binding.ErrKindMismatch, v.Kind(), need, size)
	}

	switch v.Kind() {
	case binding.KindFloat:
		put(0, v.AsFloat())
	case binding.KindInt:
		binary.LittleEndian.PutUint32(buf, uint32(v.AsInt()))
	case binding.KindVec2:
		c := v.AsVec2()
		put(0, c[0])
		put(4, c[1])
	case binding.KindVec3:
		c := v.AsVec3()
		put(0, c[0])
		put(4, c[1])
		put(8, c[2])
	case binding.KindMat3:
		m := v.AsMat3()
		for col := range 3 {
			for row := range 3 {
				put(col*16+row*4, m[col*3+row])
			}
		}
	}
	return buf, nil
}
