package sim

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-ar/internal/xr"
	"github.com/Faultbox/midgard-ar/pkg/math"
)

// Object kinds.
const (
	KindModel          = "model"
	KindReticle        = "reticle"
	KindLight          = "light"
	KindEstimatedLight = "estimated-light"
)

// Object is a scene-graph node in the simulated renderer.
type Object struct {
	ID         uuid.UUID
	Kind       string
	Source     string
	ClonedFrom uuid.UUID

	Position math.Vec3
	Rotation math.Quat
	Scale    math.Vec3

	Ring  xr.RingGeometry
	Light xr.HemisphereLight

	visible bool
	matrix  math.Mat4
}

func newObject(kind, source string) *Object {
	return &Object{
		ID:       uuid.New(),
		Kind:     kind,
		Source:   source,
		Rotation: math.QuatIdentity(),
		Scale:    math.Uniform(1),
		matrix:   math.Identity(),
	}
}

func (o *Object) SetVisible(visible bool) { o.visible = visible }

func (o *Object) Visible() bool { return o.visible }

func (o *Object) SetMatrix(m math.Mat4) {
	o.matrix = m
	o.Position, o.Rotation, o.Scale = m.Decompose()
}

func (o *Object) SetTransform(position math.Vec3, rotation math.Quat, scale math.Vec3) {
	o.Position, o.Rotation, o.Scale = position, rotation, scale
	o.matrix = math.Compose(position, rotation, scale)
}

func (o *Object) Matrix() math.Mat4 { return o.matrix }

func (o *Object) clone() *Object {
	c := *o
	c.ID = uuid.New()
	c.ClonedFrom = o.ID
	return &c
}

// asObject unwraps an xr.SceneObject created by this package.
func asObject(obj xr.SceneObject) *Object {
	o, _ := obj.(*Object)
	return o
}
