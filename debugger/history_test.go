package debugger

import "testing"

func TestCommandHistory_Add(t *testing.T) {
	h := NewCommandHistory(0)
	h.Add("step")
	h.Add("continue")

	all := h.All()
	if len(all) != 2 || all[0] != "step" || all[1] != "continue" {
		t.Fatalf("expected [step continue], got %v", all)
	}
}

func TestCommandHistory_SkipsEmptyAndRepeats(t *testing.T) {
	h := NewCommandHistory(0)
	h.Add("step")
	h.Add("")
	h.Add("step")

	if h.Size() != 1 {
		t.Errorf("expected a single entry after an empty add and an immediate repeat, got %d", h.Size())
	}
}

func TestCommandHistory_PreviousNext(t *testing.T) {
	h := NewCommandHistory(0)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	if got := h.Previous(); got != "c" {
		t.Errorf("expected 'c', got %q", got)
	}
	if got := h.Previous(); got != "b" {
		t.Errorf("expected 'b', got %q", got)
	}
	if got := h.Next(); got != "c" {
		t.Errorf("expected 'c', got %q", got)
	}
}

func TestCommandHistory_CapsAtMaxSize(t *testing.T) {
	h := NewCommandHistory(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	all := h.All()
	if len(all) != 2 || all[0] != "b" || all[1] != "c" {
		t.Fatalf("expected the oldest entry to be evicted, got %v", all)
	}
}
