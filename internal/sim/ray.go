package sim

import (
	"cmp"
	gomath "math"
	"slices"

	"github.com/Faultbox/midgard-ar/pkg/math"
)

// Ray is a half-line cast from the viewer into the simulated room.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Normalized direction
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// IntersectPlaneY intersects the ray with a horizontal plane at the given Y level.
// Returns the distance along the ray and whether the intersection is valid.
func (r Ray) IntersectPlaneY(planeY float32) (t float32, ok bool) {
	if gomath.Abs(float64(r.Direction.Y)) < 0.001 {
		return 0, false // Ray parallel to plane
	}

	t = (planeY - r.Origin.Y) / r.Direction.Y
	if t < 0 {
		return 0, false // Intersection behind ray origin
	}
	return t, true
}

// Box is an axis-aligned solid, such as a table or a shelf, whose faces are
// hit-testable.
type Box struct {
	Min [3]float32 `yaml:"min"`
	Max [3]float32 `yaml:"max"`
}

// IntersectBox tests the ray against the box using the slab method. It
// returns the entry distance and the outward normal of the entry face. A ray
// starting inside the box does not hit it.
func (r Ray) IntersectBox(box Box) (t float32, normal math.Vec3, hit bool) {
	origin := [3]float32{r.Origin.X, r.Origin.Y, r.Origin.Z}
	dir := [3]float32{r.Direction.X, r.Direction.Y, r.Direction.Z}

	tmin := float32(-gomath.MaxFloat32)
	tmax := float32(gomath.MaxFloat32)
	axis := -1
	var side float32

	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if origin[i] < box.Min[i] || origin[i] > box.Max[i] {
				return 0, math.Vec3{}, false
			}
			continue
		}
		t1 := (box.Min[i] - origin[i]) / dir[i]
		t2 := (box.Max[i] - origin[i]) / dir[i]
		s := float32(-1) // entering through the min face
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1
		}
		if t1 > tmin {
			tmin, axis, side = t1, i, s
		}
		if t2 < tmax {
			tmax = t2
		}
	}

	if tmax < tmin || tmin < 0 || axis < 0 {
		return 0, math.Vec3{}, false
	}

	var n [3]float32
	n[axis] = side
	return tmin, math.Vec3{X: n[0], Y: n[1], Z: n[2]}, true
}

// Surfaces is the room geometry hit-test rays are cast against.
type Surfaces struct {
	// Floor is the height of an infinite horizontal plane, if any.
	Floor *float32 `yaml:"floor,omitempty"`
	Boxes []Box    `yaml:"boxes,omitempty"`
}

// Cast returns hit poses for r ranked nearest first. Each pose sits on the
// surface with its local +Y along the surface normal.
func (s Surfaces) Cast(r Ray) []math.Mat4 {
	type hit struct {
		t    float32
		pose math.Mat4
	}
	var hits []hit

	if s.Floor != nil {
		if t, ok := r.IntersectPlaneY(*s.Floor); ok {
			up := math.Vec3{Y: 1}
			if r.Origin.Y < *s.Floor {
				up = math.Vec3{Y: -1}
			}
			hits = append(hits, hit{t, surfacePose(r.At(t), up)})
		}
	}
	for _, b := range s.Boxes {
		if t, n, ok := r.IntersectBox(b); ok {
			hits = append(hits, hit{t, surfacePose(r.At(t), n)})
		}
	}

	slices.SortStableFunc(hits, func(a, b hit) int { return cmp.Compare(a.t, b.t) })
	poses := make([]math.Mat4, len(hits))
	for i, h := range hits {
		poses[i] = h.pose
	}
	return poses
}

// surfacePose places a pose at p with local +Y rotated onto normal.
func surfacePose(p, normal math.Vec3) math.Mat4 {
	up := math.Vec3{Y: 1}
	d := up.Dot(normal)

	var rot math.Quat
	switch {
	case d > 0.9999:
		rot = math.QuatIdentity()
	case d < -0.9999:
		rot = math.QuatFromAxisAngle(math.Vec3{X: 1}, gomath.Pi)
	default:
		angle := float32(gomath.Acos(float64(d)))
		rot = math.QuatFromAxisAngle(up.Cross(normal).Normalize(), angle)
	}
	return math.Compose(p, rot, math.Uniform(1))
}

// Look places the viewer for one frame. Yaw turns left about +Y and pitch
// raises the gaze about +X, both in degrees. The hit-test ray runs along the
// viewer's -Z.
type Look struct {
	From  []float32 `yaml:"from,omitempty"`
	Yaw   float32   `yaml:"yaw"`
	Pitch float32   `yaml:"pitch"`
}

// Pose returns the viewer transform.
func (l Look) Pose() math.Mat4 {
	var x, y, z float32
	if len(l.From) == 3 {
		x, y, z = l.From[0], l.From[1], l.From[2]
	}
	return math.Translate(x, y, z).
		Mul(math.RotateY(radians(l.Yaw))).
		Mul(math.RotateX(radians(l.Pitch)))
}

// Ray returns the viewer's gaze ray.
func (l Look) Ray() Ray {
	pose := l.Pose()
	o := pose.TransformPoint([3]float32{0, 0, 0})
	f := pose.TransformPoint([3]float32{0, 0, -1})
	origin := math.Vec3{X: o[0], Y: o[1], Z: o[2]}
	tip := math.Vec3{X: f[0], Y: f[1], Z: f[2]}
	return Ray{Origin: origin, Direction: tip.Sub(origin).Normalize()}
}

func radians(deg float32) float32 {
	return deg * gomath.Pi / 180
}
