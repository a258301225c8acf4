package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/physync/internal/core/events/bus"
	"github.com/zeusync/physync/internal/core/models"
	"github.com/zeusync/physync/internal/core/systems/physics/dynamics"
)

const frame = 1.0 / 60.0

func newPhysics(t *testing.T, mutate ...func(*Config)) *Physics {
	t.Helper()
	cfg := DefaultConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	p, err := New(cfg)
	require.NoError(t, err)
	return p
}

func newBall(t *testing.T, p *Physics, pos mgl64.Vec3, opts ...RigidbodyOption) (*models.GameObject, *SphereCollider, *Rigidbody) {
	t.Helper()
	g := models.NewGameObject("ball")
	g.Transform().SetPosition(pos)
	sc, err := models.AddComponent(g, NewSphereCollider(0.5))
	require.NoError(t, err)
	rb, err := models.AddComponent(g, NewRigidbody(p, opts...))
	require.NoError(t, err)
	return g, sc, rb
}

func newGround(t *testing.T, p *Physics) *models.GameObject {
	t.Helper()
	g := models.NewGameObject("ground")
	_, err := models.AddComponent(g, NewPlaneCollider(mgl64.Vec3{0, 1, 0}, 0))
	require.NoError(t, err)
	_, err = models.AddComponent(g, NewRigidbody(p, WithMass(0)))
	require.NoError(t, err)
	return g
}

func TestSetMassRoundTrip(t *testing.T) {
	p := newPhysics(t)
	g, sc, rb := newBall(t, p, mgl64.Vec3{})
	defer g.Destroy()

	for _, m := range []float64{0.5, 1, 3, 7.25, 1000} {
		require.NoError(t, rb.SetMass(m))
		assert.InDelta(t, m, rb.Mass(), 1e-9*m)

		want := sc.Shape().CalculateLocalInertia(m)
		assert.True(t, rb.body.Get().LocalInertia().ApproxEqualThreshold(want, 1e-9), "inertia for mass %v", m)
		assert.True(t, rb.LocalInertia().ApproxEqualThreshold(want, 1e-9))
	}
}

func TestSetMassZeroIsStatic(t *testing.T) {
	p := newPhysics(t)
	g, _, rb := newBall(t, p, mgl64.Vec3{})
	defer g.Destroy()

	require.NoError(t, rb.SetMass(0))
	assert.Equal(t, 0.0, rb.Mass())
	assert.True(t, rb.IsStatic())
	assert.Equal(t, mgl64.Vec3{}, rb.LocalInertia())

	assert.ErrorIs(t, rb.SetMass(-1), ErrInvalidMass)
	assert.Equal(t, 0.0, rb.Mass())
}

func TestSphereRadiusIgnoresScaling(t *testing.T) {
	for _, r := range []float64{0.5, 2} {
		for _, s := range []float64{0.25, 1, 3, 10} {
			g := models.NewGameObject("sphere")
			sc, err := models.AddComponent(g, NewSphereCollider(r))
			require.NoError(t, err)

			require.NoError(t, sc.SetLocalScaling(mgl64.Vec3{s, s, s}))
			assert.InDelta(t, r, sc.Radius(), 1e-12, "radius %v scale %v", r, s)
			assert.InDelta(t, r*s, sc.sphere().Radius(), 1e-12, "shape stores the scaled radius")
			g.Destroy()
		}
	}
}

func TestSetRadiusUpdatesShapeInPlace(t *testing.T) {
	p := newPhysics(t)
	g, sc, rb := newBall(t, p, mgl64.Vec3{})
	defer g.Destroy()

	shape := sc.Shape()
	require.NoError(t, sc.SetLocalScaling(mgl64.Vec3{2, 2, 2}))
	require.NoError(t, sc.SetRadius(1.5))

	assert.Same(t, shape, sc.Shape())
	assert.InDelta(t, 1.5, sc.Radius(), 1e-12)
	assert.True(t, rb.body.Get().LocalInertia().ApproxEqualThreshold(sc.Shape().CalculateLocalInertia(rb.Mass()), 1e-9),
		"rigidbody inertia follows the shape")

	assert.ErrorIs(t, sc.SetRadius(0), ErrInvalidDimension)
	assert.ErrorIs(t, sc.SetLocalScaling(mgl64.Vec3{1, 0, 1}), ErrInvalidDimension)
}

func TestBoxHalfExtentsIgnoreScaling(t *testing.T) {
	g := models.NewGameObject("crate")
	defer g.Destroy()
	bc, err := models.AddComponent(g, NewBoxCollider(mgl64.Vec3{1, 2, 3}))
	require.NoError(t, err)

	require.NoError(t, bc.SetLocalScaling(mgl64.Vec3{2, 0.5, 4}))
	assert.True(t, bc.HalfExtents().ApproxEqualThreshold(mgl64.Vec3{1, 2, 3}, 1e-12))

	require.NoError(t, bc.SetHalfExtents(mgl64.Vec3{0.5, 0.5, 0.5}))
	assert.True(t, bc.HalfExtents().ApproxEqualThreshold(mgl64.Vec3{0.5, 0.5, 0.5}, 1e-12))
	assert.Equal(t, ShapeBox, bc.Kind())

	_, err = models.AddComponent(models.NewGameObject("bad"), NewBoxCollider(mgl64.Vec3{1, -1, 1}))
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestOneColliderPerGameObject(t *testing.T) {
	g := models.NewGameObject("ball")
	defer g.Destroy()
	_, err := models.AddComponent(g, NewSphereCollider(0.5))
	require.NoError(t, err)

	_, err = models.AddComponent(g, NewBoxCollider(mgl64.Vec3{1, 1, 1}))
	assert.ErrorIs(t, err, ErrColliderExists)
	_, err = models.AddComponent(g, NewSphereCollider(1))
	assert.ErrorIs(t, err, models.ErrDuplicateComponent)
}

func TestRigidbodyRequiresCollider(t *testing.T) {
	p := newPhysics(t)
	before := dynamics.LiveObjects()

	g := models.NewGameObject("naked")
	_, err := models.AddComponent(g, NewRigidbody(p))
	assert.ErrorIs(t, err, ErrColliderRequired)

	assert.Zero(t, p.Len())
	assert.False(t, models.HasComponent[*Rigidbody](g))
	assert.Equal(t, before, dynamics.LiveObjects())
}

func TestRigidbodyCapabilityLookup(t *testing.T) {
	p := newPhysics(t)
	g := models.NewGameObject("crate")
	bc, err := models.AddComponent(g, NewBoxCollider(mgl64.Vec3{1, 1, 1}))
	require.NoError(t, err)
	rb, err := models.AddComponent(g, NewRigidbody(p, WithMass(2)))
	require.NoError(t, err)
	defer g.Destroy()

	assert.Same(t, bc, rb.Collider())
	assert.InDelta(t, 2, rb.Mass(), 1e-12)
	assert.True(t, p.Contains(rb))
}

func TestSyncRoundTripWithoutStep(t *testing.T) {
	p := newPhysics(t)
	g, _, rb := newBall(t, p, mgl64.Vec3{1, 2, 3})
	defer g.Destroy()

	rb.CopyTransformToBullet()
	rb.CopyTransformFromBullet()
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, g.Transform().Position())

	g.Transform().SetPosition(mgl64.Vec3{-4.25, 0.1, 7})
	rb.CopyTransformToBullet()
	rb.CopyTransformFromBullet()
	assert.Equal(t, mgl64.Vec3{-4.25, 0.1, 7}, g.Transform().Position())
}

func TestImpulseChangesVelocityBeforeStep(t *testing.T) {
	p := newPhysics(t)
	g, _, rb := newBall(t, p, mgl64.Vec3{})
	defer g.Destroy()

	require.Equal(t, mgl64.Vec3{}, rb.Velocity())
	rb.ApplyImpulseXYZ(0, 10, 0)
	assert.Greater(t, rb.Velocity().Y(), 0.0)
	assert.InDelta(t, 10, rb.Velocity().Y(), 1e-12)
}

func TestForceLastsOneStep(t *testing.T) {
	p := newPhysics(t, func(c *Config) { c.Gravity = mgl64.Vec3{} })
	g, _, rb := newBall(t, p, mgl64.Vec3{})
	defer g.Destroy()

	rb.ApplyForceXYZ(60, 0, 0)
	require.NoError(t, p.Step(frame))
	assert.InDelta(t, 1, rb.Velocity().X(), 1e-9)

	require.NoError(t, p.Step(frame))
	assert.InDelta(t, 1, rb.Velocity().X(), 1e-9, "force must be reapplied to keep accelerating")
}

func TestFreeFallStrictlyDecreasing(t *testing.T) {
	p := newPhysics(t)
	g, _, rb := newBall(t, p, mgl64.Vec3{0, 10, 0})
	defer g.Destroy()
	require.Nil(t, rb.SettlePolicy())

	prev := g.Transform().Position().Y()
	for i := range 60 {
		g.Update(frame)
		require.NoError(t, p.Step(frame))
		g.LateUpdate(frame)

		y := g.Transform().Position().Y()
		require.Less(t, y, prev, "frame %d", i)
		prev = y
	}
	assert.Less(t, rb.Velocity().Y(), 0.0)
}

func TestKeepAwakeBreaksFallAfterLanding(t *testing.T) {
	p := newPhysics(t)
	ground := newGround(t, p)
	defer ground.Destroy()

	policy := NewKeepAwake(DefaultSettleThreshold, mgl64.Vec3{0, 10, 0})
	ball, _, rb := newBall(t, p, mgl64.Vec3{0, 10, 0}, WithSettlePolicy(policy))
	defer ball.Destroy()

	// start moving so the policy stays quiet until the ball lands
	rb.ApplyImpulseXYZ(0, -1, 0)

	ys := []float64{ball.Transform().Position().Y()}
	fired := -1
	for i := 1; i <= 300 && fired < 0; i++ {
		before := policy.Triggers()
		ball.Update(frame)
		ground.Update(frame)
		require.NoError(t, p.Step(frame))
		ys = append(ys, ball.Transform().Position().Y())
		if policy.Triggers() > before {
			fired = i
		}
	}

	require.Greater(t, fired, 1, "policy must fire after landing")
	for i := 1; i < fired; i++ {
		assert.Less(t, ys[i], ys[i-1], "frame %d must still be falling", i)
	}
	assert.InDelta(t, 0.5, ys[fired-1], 1e-6, "ball rests on the ground before the kick")
	assert.Greater(t, ys[fired], ys[fired-1], "impulse breaks the decrease")
	assert.Equal(t, 1, policy.Triggers())
}

func TestKeepAwakeThreshold(t *testing.T) {
	p := newPhysics(t, func(c *Config) { c.Gravity = mgl64.Vec3{} })
	policy := NewKeepAwake(0.01, mgl64.Vec3{0, 1, 0})
	g, _, rb := newBall(t, p, mgl64.Vec3{}, WithSettlePolicy(policy))
	defer g.Destroy()

	rb.body.Get().SetLinearVelocity(mgl64.Vec3{0, -0.01, 0})
	assert.True(t, policy.Apply(rb, frame), "exactly at the threshold fires")
	assert.InDelta(t, 0.99, rb.Velocity().Y(), 1e-12)

	rb.body.Get().SetLinearVelocity(mgl64.Vec3{5, 0.0101, 0})
	assert.False(t, policy.Apply(rb, frame))
	assert.Equal(t, 1, policy.Triggers())
}

func TestDisabledRigidbodySkipsPolicy(t *testing.T) {
	p := newPhysics(t)
	policy := NewKeepAwake(DefaultSettleThreshold, mgl64.Vec3{0, 10, 0})
	g, _, rb := newBall(t, p, mgl64.Vec3{}, WithSettlePolicy(policy))
	defer g.Destroy()
	live := dynamics.LiveObjects()

	rb.SetEnabled(false)
	g.Update(frame)
	assert.Zero(t, policy.Triggers())
	assert.True(t, p.Contains(rb), "disabling keeps the body registered")
	assert.Equal(t, live, dynamics.LiveObjects())

	rb.SetEnabled(true)
	g.Update(frame)
	assert.Equal(t, 1, policy.Triggers())
}

func TestConfiguredKeepAwakeOnlyForDynamicBodies(t *testing.T) {
	p := newPhysics(t, func(c *Config) { c.KeepAwake.Enabled = true })
	g, _, rb := newBall(t, p, mgl64.Vec3{})
	defer g.Destroy()
	ground := newGround(t, p)
	defer ground.Destroy()

	assert.IsType(t, &KeepAwake{}, rb.SettlePolicy())
	groundRB, ok := models.GetComponent[*Rigidbody](ground)
	require.True(t, ok)
	assert.Nil(t, groundRB.SettlePolicy())
}

func TestStepPushesTransformEdits(t *testing.T) {
	p := newPhysics(t)
	a, _, _ := newBall(t, p, mgl64.Vec3{0, 10, 0})
	defer a.Destroy()
	b, _, _ := newBall(t, p, mgl64.Vec3{5, 10, 0})
	defer b.Destroy()

	require.NoError(t, p.Step(frame))
	a.Transform().SetPosition(mgl64.Vec3{0, 100, 0})
	require.NoError(t, p.Step(frame))

	ya, yb := a.Transform().Position().Y(), b.Transform().Position().Y()
	assert.Less(t, ya, 100.0)
	assert.Greater(t, ya, 99.9, "teleport reached the simulation before stepping")
	assert.Less(t, yb, 10.0)
	assert.Equal(t, 5.0, b.Transform().Position().X())
}

func TestRotationSyncIsOptIn(t *testing.T) {
	p := newPhysics(t, func(c *Config) { c.Gravity = mgl64.Vec3{} })
	plain, _, rbPlain := newBall(t, p, mgl64.Vec3{})
	defer plain.Destroy()
	synced, _, rbSynced := newBall(t, p, mgl64.Vec3{3, 0, 0}, WithRotationSync(true))
	defer synced.Destroy()

	assert.False(t, rbPlain.SyncsRotation())
	rbPlain.ApplyTorque(mgl64.Vec3{0, 5, 0})
	rbSynced.ApplyTorque(mgl64.Vec3{0, 5, 0})
	require.NoError(t, p.Step(frame))

	// rotation flows engine -> physics always, physics -> engine only when enabled
	assert.Equal(t, mgl64.QuatIdent(), plain.Transform().Rotation())
	assert.False(t, synced.Transform().Rotation().ApproxEqual(mgl64.QuatIdent()))
	assert.Greater(t, rbPlain.AngularVelocity().Y(), 0.0)
}

func TestDestroyDeregistersAndReleases(t *testing.T) {
	b := bus.New()
	var added, removed int
	_, _ = b.Subscribe(EventRigidbodyAdded, func(bus.Event) error { added++; return nil })
	_, _ = b.Subscribe(EventRigidbodyRemoved, func(bus.Event) error { removed++; return nil })

	p, err := New(DefaultConfig(), WithEventBus(b))
	require.NoError(t, err)
	before := dynamics.LiveObjects()

	g, _, rb := newBall(t, p, mgl64.Vec3{})
	assert.Equal(t, before+3, dynamics.LiveObjects())
	assert.Equal(t, 1, p.Len())

	g.Destroy()
	assert.False(t, p.Contains(rb))
	assert.Zero(t, p.Len())
	assert.Equal(t, before, dynamics.LiveObjects())
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, removed)

	world, err := p.World()
	require.NoError(t, err)
	assert.Zero(t, world.NumBodies())
}

func TestColliderPinnedByRigidbody(t *testing.T) {
	p := newPhysics(t)
	before := dynamics.LiveObjects()
	g, sc, rb := newBall(t, p, mgl64.Vec3{})

	assert.ErrorIs(t, g.RemoveComponent(sc), models.ErrComponentInUse)
	assert.True(t, p.Contains(rb))

	require.NoError(t, g.RemoveComponent(rb))
	assert.False(t, p.Contains(rb))
	require.NoError(t, g.RemoveComponent(sc))
	assert.Equal(t, before, dynamics.LiveObjects())
}

func TestCloseLifecycle(t *testing.T) {
	p := newPhysics(t)
	g, _, _ := newBall(t, p, mgl64.Vec3{})

	assert.ErrorIs(t, p.Close(), ErrBodiesRegistered)
	g.Destroy()
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.True(t, p.IsClosed())

	assert.ErrorIs(t, p.Step(frame), ErrClosed)
	other := models.NewGameObject("late")
	_, err := models.AddComponent(other, NewSphereCollider(1))
	require.NoError(t, err)
	_, err = models.AddComponent(other, NewRigidbody(p))
	assert.ErrorIs(t, err, ErrClosed)
	other.Destroy()
}

func TestStepValidation(t *testing.T) {
	p := newPhysics(t)
	assert.ErrorIs(t, p.Step(-frame), ErrInvalidTimeStep)
	require.NoError(t, p.Step(0))

	require.NoError(t, p.Step(frame))
	stats := p.Stats()
	assert.EqualValues(t, 2, stats.Steps)
	assert.EqualValues(t, 1, stats.SubSteps)
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FixedTimeStep = 0
	_, err := New(cfg)
	assert.Error(t, err)

	cfg = DefaultConfig()
	cfg.DefaultMass = -2
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrInvalidMass)

	_, err = models.AddComponent(models.NewGameObject("x"), NewRigidbody(nil))
	assert.ErrorIs(t, err, ErrNilRegistry)
}

type detacher struct {
	models.BaseComponent
	target models.Component
}

func newDetacher(g *models.GameObject) (*detacher, error) {
	d := &detacher{}
	d.Init(g, false)
	return d, nil
}

func (d *detacher) Update(float64) {
	if d.target != nil {
		_ = d.GameObject().RemoveComponent(d.target)
		d.target = nil
	}
}

func TestRemoveRigidbodyDuringUpdateSkipsStep(t *testing.T) {
	p := newPhysics(t)
	before := dynamics.LiveObjects()

	g := models.NewGameObject("ball")
	defer g.Destroy()
	g.Transform().SetPosition(mgl64.Vec3{0, 5, 0})
	_, err := models.AddComponent(g, NewSphereCollider(0.5))
	require.NoError(t, err)
	d, err := models.AddComponent(g, newDetacher)
	require.NoError(t, err)
	keep := NewKeepAwake(DefaultSettleThreshold, mgl64.Vec3{0, 10, 0})
	rb, err := models.AddComponent(g, NewRigidbody(p, WithSettlePolicy(keep)))
	require.NoError(t, err)
	d.target = rb
	require.Equal(t, 1, p.Len())

	assert.NotPanics(t, func() { g.Update(frame) })
	assert.Zero(t, keep.Triggers(), "a removed rigidbody does not run its policy")
	assert.Zero(t, p.Len())
	assert.False(t, p.Contains(rb))
	assert.Equal(t, before+1, dynamics.LiveObjects(), "only the collider shape stays live")

	assert.NotPanics(t, func() { require.NoError(t, p.Step(frame)) })
	assert.EqualValues(t, 1, p.Stats().Steps)
	assert.Equal(t, mgl64.Vec3{0, 5, 0}, g.Transform().Position())

	_, ok := models.GetComponent[*Rigidbody](g)
	assert.False(t, ok)
}
