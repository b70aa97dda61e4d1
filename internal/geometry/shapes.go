package geometry

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// NewBoxMesh builds a box centred on the origin.
func NewBoxMesh(size rl.Vector3) *Mesh {
	h := rl.Vector3Scale(size, 0.5)
	vertices := []rl.Vector3{
		{X: -h.X, Y: -h.Y, Z: -h.Z}, // 0
		{X: h.X, Y: -h.Y, Z: -h.Z},  // 1
		{X: h.X, Y: h.Y, Z: -h.Z},   // 2
		{X: -h.X, Y: h.Y, Z: -h.Z},  // 3
		{X: -h.X, Y: -h.Y, Z: h.Z},  // 4
		{X: h.X, Y: -h.Y, Z: h.Z},   // 5
		{X: h.X, Y: h.Y, Z: h.Z},    // 6
		{X: -h.X, Y: h.Y, Z: h.Z},   // 7
	}
	indices := []uint16{
		4, 5, 6, 4, 6, 7, // front (+Z)
		1, 0, 3, 1, 3, 2, // back (-Z)
		3, 7, 6, 3, 6, 2, // top (+Y)
		0, 1, 5, 0, 5, 4, // bottom (-Y)
		1, 2, 6, 1, 6, 5, // right (+X)
		0, 4, 7, 0, 7, 3, // left (-X)
	}
	return mustMesh(vertices, indices)
}

// NewQuadMesh builds a horizontal quad in the XZ plane facing +Y.
func NewQuadMesh(width, depth float32) *Mesh {
	hw, hd := width/2, depth/2
	vertices := []rl.Vector3{
		{X: -hw, Z: -hd},
		{X: hw, Z: -hd},
		{X: hw, Z: hd},
		{X: -hw, Z: hd},
	}
	return mustMesh(vertices, []uint16{0, 3, 2, 0, 2, 1})
}

// NewCylinderMesh builds a capped cylinder along Y centred on the origin.
func NewCylinderMesh(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	hh := height / 2

	vertices := make([]rl.Vector3, 0, 2*segments+2)
	for i := 0; i < segments; i++ {
		a := 2 * math32.Pi * float32(i) / float32(segments)
		x, z := radius*math32.Cos(a), radius*math32.Sin(a)
		vertices = append(vertices, rl.Vector3{X: x, Y: -hh, Z: z}, rl.Vector3{X: x, Y: hh, Z: z})
	}
	bottom := uint16(len(vertices))
	top := bottom + 1
	vertices = append(vertices, rl.Vector3{Y: -hh}, rl.Vector3{Y: hh})

	indices := make([]uint16, 0, segments*12)
	for i := 0; i < segments; i++ {
		b0, t0 := uint16(2*i), uint16(2*i+1)
		j := (i + 1) % segments
		b1, t1 := uint16(2*j), uint16(2*j+1)
		indices = append(indices,
			b0, t0, t1, b0, t1, b1, // side
			bottom, b0, b1, // bottom cap
			top, t1, t0, // top cap
		)
	}
	return mustMesh(vertices, indices)
}

// NewStarMesh builds an extruded star lying in the XY plane, thickness along Z.
func NewStarMesh(outerRadius, innerRadius, thickness float32, points int) *Mesh {
	if points < 3 {
		points = 3
	}
	n := points * 2
	hz := thickness / 2

	vertices := make([]rl.Vector3, 0, 2*n+2)
	for i := 0; i < n; i++ {
		r := outerRadius
		if i%2 == 1 {
			r = innerRadius
		}
		a := math32.Pi/2 + math32.Pi*float32(i)/float32(points)
		x, y := r*math32.Cos(a), r*math32.Sin(a)
		vertices = append(vertices, rl.Vector3{X: x, Y: y, Z: hz}, rl.Vector3{X: x, Y: y, Z: -hz})
	}
	front := uint16(len(vertices))
	back := front + 1
	vertices = append(vertices, rl.Vector3{Z: hz}, rl.Vector3{Z: -hz})

	indices := make([]uint16, 0, n*12)
	for i := 0; i < n; i++ {
		f0, k0 := uint16(2*i), uint16(2*i+1)
		j := (i + 1) % n
		f1, k1 := uint16(2*j), uint16(2*j+1)
		indices = append(indices,
			front, f0, f1,
			back, k1, k0,
			f0, k0, k1, f0, k1, f1,
		)
	}
	return mustMesh(vertices, indices)
}

// NewSphereMesh builds a UV sphere centred on the origin.
func NewSphereMesh(radius float32, rings, slices int) *Mesh {
	if rings < 2 {
		rings = 2
	}
	if slices < 3 {
		slices = 3
	}

	vertices := make([]rl.Vector3, 0, (rings+1)*(slices+1))
	for r := 0; r <= rings; r++ {
		phi := math32.Pi * float32(r) / float32(rings)
		y := radius * math32.Cos(phi)
		ring := radius * math32.Sin(phi)
		for s := 0; s <= slices; s++ {
			theta := 2 * math32.Pi * float32(s) / float32(slices)
			vertices = append(vertices, rl.Vector3{X: ring * math32.Cos(theta), Y: y, Z: ring * math32.Sin(theta)})
		}
	}

	stride := uint16(slices + 1)
	indices := make([]uint16, 0, rings*slices*6)
	for r := 0; r < rings; r++ {
		for s := 0; s < slices; s++ {
			a := uint16(r)*stride + uint16(s)
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}
	return mustMesh(vertices, indices)
}
