package ioc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScope_PerScopeIsolation(t *testing.T) {
	c := New()

	require.NoError(t, RegisterPerScope[Logger](c, NewConsoleLogger))

	s1 := c.CreateScope()
	defer func() { _ = s1.Dispose() }()
	s2 := c.CreateScope()
	defer func() { _ = s2.Dispose() }()

	a1 := MustResolve[Logger](s1)
	a2 := MustResolve[Logger](s1)
	b1 := MustResolve[Logger](s2)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b1)
}

// Logger singleton, Worker per-scope: workers differ per scope but share the
// container's logger.
func TestScope_SingletonLoggerPerScopeWorker(t *testing.T) {
	c := New()
	defer func() { _ = c.Dispose() }()

	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))
	require.NoError(t, RegisterPerScope[Worker](c, NewWorker))

	s1 := c.CreateScope()
	defer func() { _ = s1.Dispose() }()
	s2 := c.CreateScope()
	defer func() { _ = s2.Dispose() }()

	w1 := MustResolve[Worker](s1)
	w2 := MustResolve[Worker](s2)
	root := MustResolve[Logger](c)

	assert.NotSame(t, w1, w2)
	assert.Same(t, root, w1.Logger())
	assert.Same(t, root, w2.Logger())
}

func TestScope_TransientFresh(t *testing.T) {
	c := New()

	_, err := Register[Logger](c, NewConsoleLogger)
	require.NoError(t, err)

	s := c.CreateScope()
	defer func() { _ = s.Dispose() }()

	assert.NotSame(t, MustResolve[Logger](s), MustResolve[Logger](s))
}

func TestScope_TransientSeesScope(t *testing.T) {
	c := New()

	require.NoError(t, RegisterPerScope[Logger](c, NewConsoleLogger))
	_, err := Register[Worker](c, NewWorker)
	require.NoError(t, err)

	s := c.CreateScope()
	defer func() { _ = s.Dispose() }()

	w := MustResolve[Worker](s)
	assert.Same(t, MustResolve[Logger](s), w.Logger())
	assert.NotSame(t, MustResolve[Logger](c), w.Logger())
}

// A singleton resolved first through a scope must not capture that scope's
// per-scope instances.
func TestScope_SingletonDoesNotCaptureScopedDependency(t *testing.T) {
	c := New()

	require.NoError(t, RegisterPerScope[Logger](c, NewConsoleLogger))
	require.NoError(t, RegisterSingleton[Worker](c, NewWorker))

	s := c.CreateScope()
	w := MustResolve[Worker](s)
	scoped := MustResolve[Logger](s)
	require.NoError(t, s.Dispose())

	assert.NotSame(t, scoped, w.Logger())
	assert.Same(t, MustResolve[Logger](c), w.Logger())
	assert.Equal(t, 0, w.Logger().(*consoleLogger).disposed)
}

func TestScope_DisposeReleasesOnlyScoped(t *testing.T) {
	c := New()

	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))
	require.NoError(t, RegisterPerScope[Worker](c, NewWorker))

	s := c.CreateScope()
	w := MustResolve[Worker](s).(*worker)

	require.NoError(t, s.Dispose())
	require.NoError(t, s.Dispose())

	assert.Equal(t, 1, w.disposed)
	assert.Equal(t, 0, w.Logger().(*consoleLogger).disposed)

	_, err := s.Resolve(TypeOf[Worker]())
	assert.ErrorIs(t, err, ErrDisposed)

	// The container is unaffected.
	_, err = Resolve[Logger](c)
	assert.NoError(t, err)
}

func TestScope_ContainerDisposeLeavesScopes(t *testing.T) {
	c := New()

	require.NoError(t, RegisterPerScope[Worker](c, NewWorker))
	require.NoError(t, RegisterSingleton[Logger](c, NewConsoleLogger))

	s := c.CreateScope()
	w := MustResolve[Worker](s).(*worker)

	require.NoError(t, c.Dispose())
	assert.Equal(t, 0, w.disposed)

	require.NoError(t, s.Dispose())
	assert.Equal(t, 1, w.disposed)
}

func TestScope_ResolveNotFound(t *testing.T) {
	c := New()

	s := c.CreateScope()
	defer func() { _ = s.Dispose() }()

	_, err := Resolve[Logger](s)
	assert.ErrorIs(t, err, ErrUnregisteredService)
}

func TestScope_ConcurrentPerScopeBuiltOnce(t *testing.T) {
	c := New()

	require.NoError(t, RegisterPerScope[Logger](c, NewConsoleLogger))

	s := c.CreateScope()
	defer func() { _ = s.Dispose() }()

	const n = 20
	results := make([]Logger, n)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = MustResolve[Logger](s)
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}
