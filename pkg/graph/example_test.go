package graph_test

import (
	"fmt"

	"github.com/pumldock/pumldock/pkg/graph"
)

func ExampleGraph_basic() {
	// Overview references the auth and storage diagrams.
	g := graph.New()
	_ = g.AddNode("overview.puml")
	_ = g.AddNode("auth.puml")
	_ = g.AddNode("storage.puml")
	_ = g.AddEdge("overview.puml", "auth.puml")
	_ = g.AddEdge("overview.puml", "storage.puml")

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Children of overview.puml:", g.Children("overview.puml"))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Children of overview.puml: [auth.puml storage.puml]
}

func ExampleGraph_Validate() {
	// Two diagrams referencing each other cannot be resolved.
	g := graph.New()
	_ = g.AddNode("a.puml")
	_ = g.AddNode("b.puml")
	_ = g.AddEdge("a.puml", "b.puml")
	_ = g.AddEdge("b.puml", "a.puml")

	fmt.Println(g.Validate())
	// Output:
	// graph contains a cycle: a.puml -> b.puml -> a.puml
}
