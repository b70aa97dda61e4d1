package physics

import (
	"clawmachine/internal/geometry"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// upAxis is the fallback normal when two centres coincide.
var upAxis = rl.Vector3{X: 0, Y: 1, Z: 0}

// clamp restricts a value to a range
func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func lengthSq(v rl.Vector3) float32 {
	return rl.Vector3DotProduct(v, v)
}

func deref(b *geometry.AABB) (geometry.AABB, bool) {
	if b == nil {
		return geometry.AABB{}, false
	}
	return *b, true
}
