package ioc

import (
	"context"
	"slices"

	"go.uber.org/multierr"
)

// DependencyGraph is the static dependency graph recorded by constructor
// registrations. Services registered through a Factory have no known edges.
type DependencyGraph struct {
	nodes map[ServiceType]*node
	order []ServiceType // Preserve registration order
}

type node struct {
	service      ServiceType
	dependencies []ServiceType
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[ServiceType]*node),
	}
}

// AddNode adds a node with its dependencies.
func (g *DependencyGraph) AddNode(service ServiceType, dependencies []ServiceType) {
	if _, exists := g.nodes[service]; !exists {
		g.order = append(g.order, service)
	}

	g.nodes[service] = &node{service: service, dependencies: dependencies}
}

// GetDependencies returns the dependencies of a node.
func (g *DependencyGraph) GetDependencies(service ServiceType) []ServiceType {
	if n, ok := g.nodes[service]; ok {
		return n.dependencies
	}

	return nil
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(service ServiceType) bool {
	_, ok := g.nodes[service]

	return ok
}

// TopologicalSort returns nodes with dependencies before dependents.
// Nodes without dependencies maintain their registration order.
// Returns ErrCircularDependency with the cycle if one exists.
func (g *DependencyGraph) TopologicalSort() ([]ServiceType, error) {
	visited := make(map[ServiceType]bool)
	var stack []ServiceType
	result := make([]ServiceType, 0, len(g.nodes))

	for _, service := range g.order {
		if err := g.visit(service, visited, &stack, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs DFS traversal. stack holds the current path for cycle reporting.
func (g *DependencyGraph) visit(service ServiceType, visited map[ServiceType]bool, stack, result *[]ServiceType) error {
	if visited[service] {
		return nil
	}

	if i := slices.Index(*stack, service); i >= 0 {
		cycle := append(slices.Clone((*stack)[i:]), service)

		return errCircular(cycle)
	}

	n := g.nodes[service]
	if n == nil {
		// Not in graph; reported by Validate as unregistered
		return nil
	}

	*stack = append(*stack, service)

	for _, dep := range n.dependencies {
		if err := g.visit(dep, visited, stack, result); err != nil {
			return err
		}
	}

	*stack = (*stack)[:len(*stack)-1]
	visited[service] = true
	*result = append(*result, service)

	return nil
}

// Graph returns the dependency graph of the current registrations.
func (c *Container) Graph() *DependencyGraph {
	g := NewDependencyGraph()

	for _, t := range c.registry.types() {
		b, _ := c.registry.peek(t)
		g.AddNode(t, b.deps)
	}

	return g
}

// Validate checks the registrations without building anything: every
// constructor parameter must be registered and the graph must be acyclic.
// All missing dependencies are reported together. Validate does not seal
// the container.
func (c *Container) Validate() error {
	g := c.Graph()

	var err error

	for _, t := range g.order {
		for i, dep := range g.GetDependencies(t) {
			if !g.HasNode(dep) {
				b, _ := c.registry.peek(t)
				err = multierr.Append(err, errParameterUnresolvable(b.implementation, i, dep, errUnregistered(dep)))
			}
		}
	}

	if _, cycleErr := g.TopologicalSort(); cycleErr != nil {
		err = multierr.Append(err, cycleErr)
	}

	return err
}

// Warmup builds every singleton in dependency order so construction errors
// surface at startup instead of on first use. It seals the container.
func (c *Container) Warmup(ctx context.Context) error {
	order, err := c.Graph().TopologicalSort()
	if err != nil {
		return err
	}

	for _, t := range order {
		b, _ := c.registry.peek(t)
		if b.lifecycle != Singleton {
			continue
		}

		if _, err := c.ResolveContext(ctx, t); err != nil {
			return err
		}
	}

	return nil
}
