package meshsync

import (
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// PointPool recycles position buffers of one fixed length.
type PointPool struct {
	pool sync.Pool
	size int
}

func NewPointPool(size int) *PointPool {
	return &PointPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]mgl64.Vec3, size)
			},
		},
	}
}

func (p *PointPool) Size() int { return p.size }

func (p *PointPool) Get() []mgl64.Vec3 {
	return p.pool.Get().([]mgl64.Vec3)
}

func (p *PointPool) Put(s []mgl64.Vec3) {
	if len(s) == p.size {
		p.pool.Put(s)
	}
}

func (p *PointPool) GetAndCopy(src []mgl64.Vec3) []mgl64.Vec3 {
	dst := p.Get()
	copy(dst, src)
	return dst
}
