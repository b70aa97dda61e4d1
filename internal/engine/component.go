package engine

// Component is a behaviour attached to a GameObject: a collider, a
// rigidbody or a renderer. Start runs once before the first Update.
type Component interface {
	Start()
	Update(deltaTime float32)
	SetGameObject(g *GameObject)
	GetGameObject() *GameObject
}

// BaseComponent is embedded by components that only need the owner link.
type BaseComponent struct {
	owner *GameObject
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Update(deltaTime float32) {}

func (b *BaseComponent) SetGameObject(g *GameObject) {
	b.owner = g
}

// GetGameObject returns the owning object, or nil for a detached component.
func (b *BaseComponent) GetGameObject() *GameObject {
	return b.owner
}
