package interaction

import (
	"log/slog"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"

	"clawmachine/internal/components"
	"clawmachine/internal/engine"
)

// Finger identifies one of the three claw fingers.
type Finger int

const (
	FingerA Finger = iota
	FingerB
	FingerC
	fingerCount
)

func (f Finger) String() string {
	switch f {
	case FingerA:
		return "A"
	case FingerB:
		return "B"
	case FingerC:
		return "C"
	default:
		return "?"
	}
}

// Fingers lists the fingers in the order candidates are counted.
var Fingers = [...]Finger{FingerA, FingerB, FingerC}

// proxyFingers maps collision proxy names to the finger they belong to.
var proxyFingers = map[string]Finger{
	"Cylinder":    FingerA,
	"Cylinder003": FingerB,
	"Cylinder008": FingerC,
}

// FingerForProxy returns the finger a proxy object name stands for.
func FingerForProxy(name string) (Finger, bool) {
	f, ok := proxyFingers[name]
	return f, ok
}

// Contact response tuning
const (
	springStiffness = 20.0
	dampingFactor   = 0.8
	minDepth        = 0.005
	depthPadding    = 0.01
	// fallbackReach and fallbackBias replace the surface query when it fails.
	fallbackReach = 0.15
	fallbackBias  = 0.6
)

// Object is a body the claw can touch and pick up.
type Object struct {
	Body *components.Rigidbody
	Name string
}

// Contact is the response computed for one finger touching one object.
type Contact struct {
	Object *Object
	Point  rl.Vector3
	Normal rl.Vector3
	Depth  float32
}

// FingerContact is the payload of OnFingerContact.
type FingerContact struct {
	Finger Finger
	Contact
}

// Candidate is the result of GrabbableCandidate. OK is false when no object
// is held by enough fingers.
type Candidate struct {
	Body *components.Rigidbody
	Name string
	OK   bool
}

// Interaction detects finger contacts on grabbable objects and pushes the
// objects away with a spring-damper force. State is recomputed from scratch
// on every Update.
type Interaction struct {
	fingers [fingerCount]*components.MeshCollider
	objects []*Object

	collisions [fingerCount]bool
	details    [fingerCount]*Object
	contacts   [fingerCount]Contact

	// OnFingerContact fires when a finger starts touching an object it did
	// not touch on the previous update.
	OnFingerContact engine.EventWithArg[FingerContact]
}

// New wires the detector to the finger proxies. Proxies are matched by
// object name; unknown names are ignored with a warning.
func New(proxies []*engine.GameObject) *Interaction {
	in := &Interaction{}
	for _, g := range proxies {
		if g == nil {
			continue
		}
		f, ok := FingerForProxy(g.Name)
		if !ok {
			slog.Warn("unknown finger proxy, ignoring", "object", g.Name)
			continue
		}
		col := engine.GetComponent[*components.MeshCollider](g)
		if !col.IsBuilt() {
			slog.Warn("finger proxy has no bounds tree", "finger", f, "object", g.Name)
		}
		in.fingers[f] = col
	}
	return in
}

func (in *Interaction) AddGrabbableObject(body *components.Rigidbody, name string) {
	in.objects = append(in.objects, &Object{Body: body, Name: name})
	slog.Debug("added grabbable object", "name", name)
}

func (in *Interaction) RemoveGrabbableObject(body *components.Rigidbody) {
	for i, o := range in.objects {
		if o.Body == body {
			in.objects = append(in.objects[:i], in.objects[i+1:]...)
			slog.Debug("removed grabbable object", "name", o.Name)
			return
		}
	}
}

func (in *Interaction) Objects() []*Object {
	return in.objects
}

// Update recomputes every finger contact and applies the contact forces.
func (in *Interaction) Update() {
	previous := in.details
	in.collisions = [fingerCount]bool{}
	in.details = [fingerCount]*Object{}
	in.contacts = [fingerCount]Contact{}

	for _, obj := range in.objects {
		b := obj.Body
		if b == nil || b.InverseMass == 0 || b.IsHeld || b.IgnoreClawCollision {
			continue
		}
		in.checkObject(obj, previous)
	}
}

func (in *Interaction) checkObject(obj *Object, previous [fingerCount]*Object) {
	objCol := obj.Body.Collider()
	if !objCol.IsBuilt() {
		slog.Warn("grabbable object has no bounds tree", "name", obj.Name)
		return
	}

	for _, f := range Fingers {
		finger := in.fingers[f]
		if !finger.IsBuilt() {
			continue
		}
		if !objCol.Intersects(finger) {
			continue
		}

		in.collisions[f] = true
		in.details[f] = obj
		slog.Debug("finger intersection", "finger", f, "object", obj.Name)

		c := contactFor(finger, objCol)
		c.Object = obj
		in.contacts[f] = c
		resolve(obj.Body, c)

		if previous[f] != obj {
			in.OnFingerContact.Invoke(FingerContact{Finger: f, Contact: c})
		}
	}
}

// contactFor estimates where and how deep a finger presses into an object.
func contactFor(finger, obj *components.MeshCollider) Contact {
	objCenter := obj.Center()
	fingerCenter := finger.Center()

	offset := rl.Vector3Subtract(objCenter, fingerCenter)
	distance := rl.Vector3Length(offset)
	normal := rl.Vector3Normalize(offset)

	closest, _, err := obj.ClosestPoint(fingerCenter)
	if err != nil {
		slog.Warn("closest point failed, using fallback contact", "err", err)
		return Contact{
			Point:  rl.Vector3Lerp(fingerCenter, objCenter, fallbackBias),
			Normal: normal,
			Depth:  math32.Max(minDepth, fallbackReach-distance),
		}
	}

	fingerWidth := finger.Mesh.Bounds().Size().X
	actual := rl.Vector3Distance(fingerCenter, closest)
	return Contact{
		Point:  closest,
		Normal: normal,
		Depth:  math32.Max(minDepth, fingerWidth*0.5-actual+depthPadding),
	}
}

// resolve applies the spring-damper push. The finger is treated as still.
func resolve(body *components.Rigidbody, c Contact) {
	body.Wake()

	penalty := rl.Vector3Scale(c.Normal, c.Depth*springStiffness)
	along := rl.Vector3DotProduct(body.LinearVelocity, c.Normal)
	damping := rl.Vector3Scale(c.Normal, -along*dampingFactor)

	body.AddForceAtPoint(rl.Vector3Add(penalty, damping), c.Point)
}

// TouchedObjects returns each touched object once, in finger order.
func (in *Interaction) TouchedObjects() []*Object {
	var out []*Object
	for _, f := range Fingers {
		obj := in.details[f]
		if obj == nil || containsObject(out, obj) {
			continue
		}
		out = append(out, obj)
	}
	return out
}

func (in *Interaction) HasCollisions() bool {
	return in.collisions[FingerA] || in.collisions[FingerB] || in.collisions[FingerC]
}

func (in *Interaction) CollidingFingers() []Finger {
	var out []Finger
	for _, f := range Fingers {
		if in.collisions[f] {
			out = append(out, f)
		}
	}
	return out
}

// Contact returns the last contact computed for a finger this update.
func (in *Interaction) Contact(f Finger) (Contact, bool) {
	if f < 0 || f >= fingerCount || !in.collisions[f] {
		return Contact{}, false
	}
	return in.contacts[f], true
}

// GrabbableCandidate returns the first object touched by at least
// threshold distinct fingers, counting fingers in A, B, C order.
func (in *Interaction) GrabbableCandidate(threshold int) Candidate {
	var order []*Object
	counts := make(map[*Object]int)
	for _, f := range Fingers {
		obj := in.details[f]
		if obj == nil {
			continue
		}
		if _, seen := counts[obj]; !seen {
			order = append(order, obj)
		}
		counts[obj]++
	}

	for _, obj := range order {
		if counts[obj] >= threshold {
			slog.Debug("grabbable candidate", "name", obj.Name, "fingers", counts[obj])
			return Candidate{Body: obj.Body, Name: obj.Name, OK: true}
		}
	}
	return Candidate{}
}

func containsObject(list []*Object, obj *Object) bool {
	for _, o := range list {
		if o == obj {
			return true
		}
	}
	return false
}
