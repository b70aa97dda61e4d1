package engine

import "testing"

func TestSceneAddGameObject(t *testing.T) {
	scene := NewScene("Test")
	obj := NewGameObject("Machine")

	scene.AddGameObject(obj)

	if len(scene.GameObjects) != 1 || scene.GameObjects[0] != obj {
		t.Errorf("Expected the object in the scene, got %v", scene.GameObjects)
	}
	if obj.Scene != scene {
		t.Error("GameObject.Scene not set")
	}
	if scene.FindByUID(obj.UID) != obj {
		t.Error("FindByUID failed")
	}
	if scene.FindByUID(99999999) != nil {
		t.Error("FindByUID should return nil for non-existent UID")
	}
}

func TestSceneRemoveGameObject(t *testing.T) {
	scene := NewScene("Test")
	obj1 := NewGameObject("Star_0")
	obj2 := NewGameObject("Star_1")

	scene.AddGameObject(obj1)
	scene.AddGameObject(obj2)
	scene.RemoveGameObject(obj1)

	if len(scene.GameObjects) != 1 || scene.GameObjects[0] != obj2 {
		t.Errorf("Wrong GameObject removed, left %v", scene.GameObjects)
	}
	if scene.FindByUID(obj1.UID) != nil {
		t.Error("Removed GameObject still in UID index")
	}
	if obj1.Scene != nil {
		t.Error("Removed GameObject should drop its scene")
	}
}

func TestSceneFindByName(t *testing.T) {
	scene := NewScene("Test")
	claw := NewGameObject("Claw")
	cyl := NewGameObject("Cylinder003")
	claw.AddChild(cyl)
	scene.AddGameObject(claw)

	tests := []struct {
		name string
		want *GameObject
	}{
		{"Claw", claw},
		{"Cylinder003", cyl},
		{"DoesNotExist", nil},
	}
	for _, tt := range tests {
		if got := scene.FindByName(tt.name); got != tt.want {
			t.Errorf("FindByName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSceneFindByTag(t *testing.T) {
	scene := NewScene("Test")
	obj1 := NewGameObject("Star_0")
	obj2 := NewGameObject("Star_1")
	obj3 := NewGameObject("Candy_0")

	obj1.Tags = []string{"prize"}
	obj2.Tags = []string{"prize"}
	obj3.Tags = []string{"candy"}

	scene.AddGameObject(obj1)
	scene.AddGameObject(obj2)
	scene.AddGameObject(obj3)

	if prizes := scene.FindByTag("prize"); len(prizes) != 2 {
		t.Errorf("Expected 2 prizes, got %d", len(prizes))
	}
	if none := scene.FindByTag("nonexistent"); len(none) != 0 {
		t.Error("FindByTag should return empty slice for non-existent tag")
	}
}
