package input

import (
	"testing"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func TestEdgesAndHold(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyW, glfw.Press)
	if !im.IsActive(ActionMoveForward) || !im.JustPressed(ActionMoveForward) {
		t.Fatalf("press not seen")
	}
	im.PostUpdate()
	im.HandleKeyEvent(glfw.KeyW, glfw.Repeat)
	if !im.IsActive(ActionMoveForward) || im.JustPressed(ActionMoveForward) {
		t.Fatalf("repeat reported as a new press")
	}
	im.HandleKeyEvent(glfw.KeyW, glfw.Release)
	if im.IsActive(ActionMoveForward) || !im.JustReleased(ActionMoveForward) {
		t.Fatalf("release not seen")
	}
	im.PostUpdate()
	if im.JustReleased(ActionMoveForward) {
		t.Fatalf("edge survived PostUpdate")
	}
}

func TestBindings(t *testing.T) {
	im := NewInputManager()
	im.HandleKeyEvent(glfw.KeyUp, glfw.Press)
	if !im.IsActive(ActionMoveForward) {
		t.Fatalf("arrow key not bound")
	}
	im.HandleKeyEvent(glfw.Key3, glfw.Press)
	if !im.JustPressed(SlotActions[2]) {
		t.Fatalf("slot key not bound")
	}
	im.HandleMouseButtonEvent(glfw.MouseButtonRight, glfw.Press)
	if !im.IsActive(ActionMouseRight) {
		t.Fatalf("mouse button not bound")
	}

	im.UnbindKey(glfw.KeyT)
	im.HandleKeyEvent(glfw.KeyT, glfw.Press)
	if im.IsActive(ActionSunUp) {
		t.Fatalf("unbound key still acts")
	}
	if im.IsActive(ActionCount) || im.JustPressed(-1) {
		t.Fatalf("out of range actions must read false")
	}
}
