package dag

import "testing"

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := New[string]()

	g.AddNode("a", "node A")
	g.AddNode("b", "node B")
	g.AddNode("c", "node C")

	if len(g.nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(g.nodes))
	}

	// b depends on a
	if err := g.AddEdge("a", "b"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// c depends on b
	if err := g.AddEdge("b", "c"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	if len(g.edges["a"]) != 1 || len(g.edges["b"]) != 1 {
		t.Errorf("unexpected edges: %v", g.edges)
	}
}

func TestGraph_AddNode_ReplacesData(t *testing.T) {
	g := New[int]()
	g.AddNode("a", 1)
	g.AddNode("a", 2)

	if g.nodes["a"] != 2 {
		t.Errorf("expected replaced data 2, got %d", g.nodes["a"])
	}
	if len(g.nodes) != 1 {
		t.Errorf("expected 1 node, got %d", len(g.nodes))
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := New[any]()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "nonexistent"); err == nil {
		t.Error("expected error for nonexistent child node")
	}
	if err := g.AddEdge("nonexistent", "a"); err == nil {
		t.Error("expected error for nonexistent parent node")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := New[any]()
	g.AddNode("a", nil)

	if err := g.AddEdge("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_AddEdge_Duplicate(t *testing.T) {
	g := New[any]()
	g.AddNode("a", nil)
	g.AddNode("b", nil)

	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("failed to add edge: %v", err)
	}
	if err := g.AddEdge("a", "b"); err != nil {
		t.Fatalf("duplicate edge should be ignored, got %v", err)
	}
	if len(g.edges["a"]) != 1 {
		t.Errorf("expected 1 edge after duplicate add, got %d", len(g.edges["a"]))
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := New[any]()
	g.AddNode("a", nil)
	g.AddNode("b", nil)
	g.AddNode("c", nil)
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")

	if hasCycle, _ := g.HasCycle(); hasCycle {
		t.Error("acyclic graph reported a cycle")
	}

	g.AddEdge("c", "a")
	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle to be detected")
	}
	if len(path) < 3 {
		t.Errorf("expected cycle path with at least 3 nodes, got %v", path)
	}
}

func TestGraph_HasCycle_DisconnectedComponents(t *testing.T) {
	g := New[any]()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id, nil)
	}
	g.AddEdge("a", "b")
	g.AddEdge("c", "d")
	g.AddEdge("d", "c")

	hasCycle, path := g.HasCycle()
	if !hasCycle {
		t.Fatal("expected cycle in the second component")
	}
	if len(path) < 2 {
		t.Errorf("expected cycle path, got %v", path)
	}
}
