package container_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/km-arc/go-laravel-container/framework/container"
)

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     int
}

func (p *eagerProvider) Register(app *container.Container) error {
	p.registerCalled = true
	app.Singleton("eager-svc", value("eager"))
	return nil
}

func (p *eagerProvider) Boot(*container.Container) error {
	p.bootCalled++
	return nil
}

// deferredProvider is lazy: only registered when "deferred-svc" is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCalls int
	bootCalled    bool
}

func (p *deferredProvider) Register(app *container.Container) error {
	p.registerCalls++
	app.Singleton("deferred-svc", value("deferred-value"))
	app.Singleton("deferred-other", value("other-value"))
	return nil
}

func (p *deferredProvider) Boot(*container.Container) error {
	p.bootCalled = true
	return nil
}

func (p *deferredProvider) IsDeferred() bool { return true }
func (p *deferredProvider) Provides() []string {
	return []string{"deferred-svc", "deferred-other"}
}

type failingProvider struct {
	container.BaseProvider
	registerErr error
	bootErr     error
}

func (p *failingProvider) Register(*container.Container) error { return p.registerErr }
func (p *failingProvider) Boot(*container.Container) error     { return p.bootErr }

// multiProvider registers multiple abstracts.
type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Register(app *container.Container) error {
	app.Singleton("alpha", value("α"))
	app.Singleton("beta", value("β"))
	return nil
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestRegistry_EagerProvider_RegisterCalled(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.True(t, p.registerCalled, "Register() should be called immediately for eager providers")
}

func TestRegistry_EagerProvider_BootCalledAfterBoot(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	assert.Zero(t, p.bootCalled, "Boot() should NOT be called before registry.Boot()")

	require.NoError(t, reg.Boot())
	assert.Equal(t, 1, p.bootCalled)
}

func TestRegistry_EagerProvider_ServiceResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	assert.Equal(t, "eager", container.MustResolve[string](c, "eager-svc"))
}

func TestRegistry_Boot_IdempotentCallsAreIgnored(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	require.NoError(t, reg.Boot())
	require.NoError(t, reg.Boot())

	assert.True(t, reg.Booted())
	assert.Equal(t, 1, p.bootCalled)
}

func TestRegistry_Booted_FalseBeforeBoot(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	assert.False(t, reg.Booted())
}

func TestRegistry_DuplicateRegister_Ignored(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Register(p))

	assert.Len(t, reg.Providers(), 1)
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestRegistry_DeferredProvider_NotRegisteredEagerly(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	assert.Zero(t, p.registerCalls, "deferred provider Register() should not be called until Make()")
	assert.ElementsMatch(t, []string{"deferred-svc", "deferred-other"}, reg.Deferred())
}

func TestRegistry_DeferredProvider_RegisteredOnFirstMake(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	require.NoError(t, reg.Register(p))
	require.NoError(t, reg.Boot())

	assert.Equal(t, "deferred-value", container.MustResolve[string](c, "deferred-svc"))
	assert.Equal(t, "other-value", container.MustResolve[string](c, "deferred-other"))
	assert.Equal(t, 1, p.registerCalls)
	assert.True(t, p.bootCalled, "deferred provider loaded after Boot() should be booted")
	assert.Empty(t, reg.Deferred())
}

func TestRegistry_DeferredProvider_KeepsQueuedExtenders(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&deferredProvider{}))
	require.NoError(t, c.Extend("deferred-svc", appendString("+ext")))

	assert.Equal(t, "deferred-value+ext", container.MustResolve[string](c, "deferred-svc"))
}

func TestRegistry_DeferredProvider_SurvivesFlush(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&deferredProvider{}))

	c.Flush()

	assert.Equal(t, "deferred-value", container.MustResolve[string](c, "deferred-svc"))
}

// ── Errors ────────────────────────────────────────────────────────────────────

func TestRegistry_RegisterError(t *testing.T) {
	boom := errors.New("register failed")
	reg := container.NewProviderRegistry(container.New())

	err := reg.Register(&failingProvider{registerErr: boom})

	assert.ErrorIs(t, err, boom)
	assert.Empty(t, reg.Providers())
}

func TestRegistry_BootAggregatesErrors(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")
	reg := container.NewProviderRegistry(container.New())
	ok := &eagerProvider{}
	require.NoError(t, reg.Register(&failingProvider{bootErr: first}))
	require.NoError(t, reg.Register(ok))
	require.NoError(t, reg.Register(&failingProvider{bootErr: second}))

	err := reg.Boot()

	require.Error(t, err)
	assert.ErrorIs(t, err, first)
	assert.ErrorIs(t, err, second)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, 1, ok.bootCalled, "healthy providers still boot")
}

func TestRegistry_DeferredRegisterErrorSurfacesFromMake(t *testing.T) {
	boom := errors.New("lazy failure")
	c := container.New()
	reg := container.NewProviderRegistry(c)
	p := &lazyFailing{failingProvider{registerErr: boom}}
	require.NoError(t, reg.Register(p))

	_, err := c.Make("lazy")
	assert.ErrorIs(t, err, boom)
}

type lazyFailing struct{ failingProvider }

func (p *lazyFailing) IsDeferred() bool   { return true }
func (p *lazyFailing) Provides() []string { return []string{"lazy"} }

// ── Multiple providers ────────────────────────────────────────────────────────

func TestRegistry_MultipleProviders_AllServicesResolvable(t *testing.T) {
	c := container.New()
	reg := container.NewProviderRegistry(c)
	require.NoError(t, reg.Register(&multiProvider{}))
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Boot())

	assert.Equal(t, "α", container.MustResolve[string](c, "alpha"))
	assert.Equal(t, "β", container.MustResolve[string](c, "beta"))
	assert.Equal(t, "eager", container.MustResolve[string](c, "eager-svc"))
}

func TestRegistry_Providers_ReturnsEagerOnes(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Register(&eagerProvider{}))
	require.NoError(t, reg.Register(&deferredProvider{}))

	assert.Len(t, reg.Providers(), 1)
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	var p container.BaseProvider

	assert.NoError(t, p.Boot(container.New()))
	assert.False(t, p.IsDeferred())
	assert.Empty(t, p.Provides())
}

// ── Boot after registration (late provider) ───────────────────────────────────

func TestRegistry_RegisterAfterBoot_BootsImmediately(t *testing.T) {
	reg := container.NewProviderRegistry(container.New())
	require.NoError(t, reg.Boot())

	p := &eagerProvider{}
	require.NoError(t, reg.Register(p))

	assert.Equal(t, 1, p.bootCalled, "provider registered after Boot() should be booted immediately")
}
