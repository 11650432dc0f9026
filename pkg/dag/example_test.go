package dag_test

import (
	"fmt"

	"github.com/matzehuels/pipecheck/pkg/dag"
)

func ExampleBuild() {
	// Edges touching unknown nodes are dropped, not rejected.
	nodes := []string{"input", "transform", "output"}
	edges := []dag.Edge{
		{From: "input", To: "transform"},
		{From: "transform", To: "output"},
		{From: "transform", To: "missing"},
	}

	adj := dag.Build(nodes, edges)

	fmt.Println("Keys:", len(adj))
	fmt.Println("Edges kept:", adj.EdgeCount())
	fmt.Println("Successors of transform:", adj["transform"])
	// Output:
	// Keys: 3
	// Edges kept: 2
	// Successors of transform: [output]
}

func ExampleIsAcyclic() {
	nodes := []string{"load", "clean", "train"}
	edges := []dag.Edge{
		{From: "load", To: "clean"},
		{From: "clean", To: "train"},
	}

	fmt.Println(dag.IsAcyclic(nodes, dag.Build(nodes, edges)))
	// Output:
	// true
}

func ExampleIsAcyclic_cycle() {
	nodes := []string{"a", "b", "c"}
	edges := []dag.Edge{
		{From: "a", To: "b"},
		{From: "b", To: "c"},
		{From: "c", To: "a"},
	}

	fmt.Println(dag.IsAcyclic(nodes, dag.Build(nodes, edges)))
	// Output:
	// false
}
