package ioc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestDependencyGraph_TopologicalSort(t *testing.T) {
	g := NewDependencyGraph()

	a, b, c := TypeOf[Logger](), TypeOf[Worker](), TypeOf[Store]()
	g.AddNode(c, []ServiceType{b})
	g.AddNode(b, []ServiceType{a})
	g.AddNode(a, nil)

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []ServiceType{a, b, c}, order)
}

func TestDependencyGraph_Cycle(t *testing.T) {
	g := NewDependencyGraph()

	a, b := TypeOf[cycleA](), TypeOf[cycleB]()
	g.AddNode(a, []ServiceType{b})
	g.AddNode(b, []ServiceType{a})

	_, err := g.TopologicalSort()
	require.ErrorIs(t, err, ErrCircularDependency)
	assert.Contains(t, err.Error(), "ioc.cycleA -> ioc.cycleB -> ioc.cycleA")
}

func TestContainer_Graph(t *testing.T) {
	c := New()

	_, err := Register[Worker](c, NewWorker)
	require.NoError(t, err)
	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))

	g := c.Graph()
	assert.True(t, g.HasNode(TypeOf[Worker]()))
	assert.Equal(t, []ServiceType{TypeOf[Logger]()}, g.GetDependencies(TypeOf[Worker]()))

	order, err := g.TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []ServiceType{TypeOf[Logger](), TypeOf[Worker]()}, order)
}

func TestContainer_Validate(t *testing.T) {
	c := New()

	_, err := Register[Worker](c, NewWorker)
	require.NoError(t, err)
	_, err = Register[Store](c, func(Logger, Ping) *namedStore { return nil })
	require.NoError(t, err)

	err = c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParameterUnresolvable)
	assert.ErrorIs(t, err, ErrUnregisteredService)
	assert.Len(t, multierr.Errors(err), 3)

	// Validation leaves the container open for registration.
	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))
	require.NoError(t, RegisterSingleton[Ping](c, newPinger))
	assert.NoError(t, c.Validate())
}

func TestContainer_ValidateCycle(t *testing.T) {
	c := New()

	_, err := Register[cycleA](c, newCycleA)
	require.NoError(t, err)
	_, err = Register[cycleB](c, newCycleB)
	require.NoError(t, err)

	assert.ErrorIs(t, c.Validate(), ErrCircularDependency)
	assert.ErrorIs(t, c.Warmup(context.Background()), ErrCircularDependency)
}

func TestContainer_Warmup(t *testing.T) {
	c := New()
	workers := 0

	_, err := Register[Worker](c, func(l Logger) *worker {
		workers++

		return NewWorker(l)
	})
	require.NoError(t, err)
	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))

	require.NoError(t, c.Warmup(context.Background()))

	info, _ := c.Inspect(TypeOf[Logger]())
	assert.True(t, info.Cached)
	assert.Equal(t, 0, workers)

	_, err = Register[Store](c, NewDiskStore)
	assert.ErrorIs(t, err, ErrSealed)
}

func TestContainer_WarmupReportsFailure(t *testing.T) {
	c := New()

	reg, err := RegisterFactory[Logger](c, func(Resolver) (Logger, error) {
		return nil, assert.AnError
	})
	require.NoError(t, err)
	require.NoError(t, reg.AsSingleton())

	err = c.Warmup(context.Background())
	assert.ErrorIs(t, err, ErrServiceFailed)
	assert.ErrorIs(t, err, assert.AnError)
}
