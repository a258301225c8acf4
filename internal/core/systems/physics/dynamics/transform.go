package dynamics

import "github.com/go-gl/mathgl/mgl64"

// Transform is a rigid world transform: rotation followed by translation.
type Transform struct {
	Origin   mgl64.Vec3
	Rotation mgl64.Quat
}

func IdentityTransform() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

// Apply maps a point from local to world space.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(p).Add(t.Origin)
}

func mulComponents(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func divComponents(a, b mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range out {
		if b[i] != 0 {
			out[i] = a[i] / b[i]
		}
	}
	return out
}

func absComponents(v mgl64.Vec3) mgl64.Vec3 {
	for i := range v {
		if v[i] < 0 {
			v[i] = -v[i]
		}
	}
	return v
}

// reciprocal inverts each non-zero component; zero stays zero.
func reciprocal(v mgl64.Vec3) mgl64.Vec3 {
	return divComponents(mgl64.Vec3{1, 1, 1}, v)
}
