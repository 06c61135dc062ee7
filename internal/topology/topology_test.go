package topology

import (
	"reflect"
	"testing"
)

func set[T comparable](vs ...T) map[T]struct{} {
	m := make(map[T]struct{}, len(vs))
	for _, v := range vs {
		m[v] = struct{}{}
	}
	return m
}

func TestChain(t *testing.T) {
	vertices := []int{0, 1, 2}
	graph := map[int]map[int]struct{}{
		0: set[int](),
		1: set(0),
		2: set(1),
	}

	expected := []map[int]struct{}{set(0), set(1), set(2)}
	actual := Find(vertices, graph)

	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func TestCycle(t *testing.T) {
	vertices := []int{0, 1, 2}
	graph := map[int]map[int]struct{}{
		0: set(2),
		1: set(0),
		2: set(1),
	}

	expected := []map[int]struct{}{set(0, 1, 2)}
	actual := Find(vertices, graph)

	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func TestDependOnCycle(t *testing.T) {
	vertices := []int{0, 1, 2, 3}
	graph := map[int]map[int]struct{}{
		0: set[int](),
		1: set(2, 0),
		2: set(1),
		3: set(1),
	}

	expected := []map[int]struct{}{set(0), set(1, 2), set(3)}
	actual := Find(vertices, graph)

	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func TestDisjoint(t *testing.T) {
	vertices := []int{0, 1, 2}
	graph := map[int]map[int]struct{}{
		0: set[int](),
		1: set[int](),
		2: set[int](),
	}

	actual := Find(vertices, graph)

	if len(actual) != 3 {
		t.Fatalf("expected 3 components, got %d", len(actual))
	}
	for _, want := range []map[int]struct{}{set(0), set(1), set(2)} {
		found := false
		for _, got := range actual {
			if reflect.DeepEqual(want, got) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing component %v in %v", want, actual)
		}
	}
}
