package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	// Diagonal should be 1
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	// Off-diagonal should be 0
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTranslate(t *testing.T) {
	m := Translate(5, 10, 15)

	// Translation should be in column 4 (indices 12, 13, 14)
	if m[12] != 5 || m[13] != 10 || m[14] != 15 {
		t.Errorf("Translate: got (%f, %f, %f), want (5, 10, 15)", m[12], m[13], m[14])
	}
}

func TestScale(t *testing.T) {
	m := Scale(2, 3, 4)

	if m[0] != 2 || m[5] != 3 || m[10] != 4 {
		t.Errorf("Scale diagonal: got (%f, %f, %f), want (2, 3, 4)", m[0], m[5], m[10])
	}
}

func TestTransformPoint(t *testing.T) {
	// Translate by (10, 20, 30)
	m := Translate(10, 20, 30)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestTransformPointScale(t *testing.T) {
	m := Scale(2, 2, 2)
	p := [3]float32{1, 2, 3}
	result := m.TransformPoint(p)

	expected := [3]float32{2, 4, 6}
	if result != expected {
		t.Errorf("TransformPoint with scale: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2)) // 90 degrees
	p := [3]float32{1, 0, 0}           // Point on X axis
	result := m.TransformPoint(p)

	// After 90 degree Y rotation, (1,0,0) should become approximately (0,0,-1)
	if abs(result[0]) > 0.001 || abs(result[1]) > 0.001 || abs(result[2]+1) > 0.001 {
		t.Errorf("RotateY 90: got %v, want (0, 0, -1)", result)
	}
}

func TestPosition(t *testing.T) {
	m := Translate(1.5, -2, 3)
	if got := m.Position(); got != (Vec3{1.5, -2, 3}) {
		t.Errorf("Position: got %v, want (1.5, -2, 3)", got)
	}
}

func TestDecomposeRoundTrip(t *testing.T) {
	pos := Vec3{0.3, -1.2, -2}
	rot := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/3))
	scale := Vec3{2, 2, 2}

	gotPos, gotRot, gotScale := Compose(pos, rot, scale).Decompose()

	if gotPos.Sub(pos).Length() > 0.0001 {
		t.Errorf("Decompose position: got %v, want %v", gotPos, pos)
	}
	if gotScale.Sub(scale).Length() > 0.0001 {
		t.Errorf("Decompose scale: got %v, want %v", gotScale, scale)
	}
	// q and -q are the same rotation
	if d := abs(gotRot.Dot(rot)); abs(d-1) > 0.0001 {
		t.Errorf("Decompose rotation: got %v, want %v", gotRot, rot)
	}
}

func TestDecomposeRigidPose(t *testing.T) {
	// A hit-test pose: rotation plus translation, no scale.
	m := Translate(1, 0, -3).Mul(RotateX(float32(-math.Pi / 2)))

	_, _, scale := m.Decompose()
	if scale.Sub(Uniform(1)).Length() > 0.0001 {
		t.Errorf("rigid pose scale: got %v, want (1, 1, 1)", scale)
	}
}

func TestDecomposeNegativeDeterminant(t *testing.T) {
	m := Scale(-1, 1, 1)
	_, rot, scale := m.Decompose()

	if scale.X != -1 || scale.Y != 1 || scale.Z != 1 {
		t.Errorf("mirrored scale: got %v, want (-1, 1, 1)", scale)
	}
	if abs(abs(rot.W)-1) > 0.0001 {
		t.Errorf("mirrored rotation should be identity, got %v", rot)
	}
}

func TestDecomposeDegenerate(t *testing.T) {
	var m Mat4
	m[15] = 1
	_, rot, _ := m.Decompose()
	if rot != QuatIdentity() {
		t.Errorf("zero-scale rotation: got %v, want identity", rot)
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
