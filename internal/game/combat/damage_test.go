package combat

import (
	"context"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/beastarena/internal/data"
	"github.com/udisondev/beastarena/internal/model"
)

func TestMitigate(t *testing.T) {
	tests := []struct {
		name       string
		raw        float64
		def        int
		armorBreak int
		pen        float64
		want       float64
	}{
		{"no defense", 100, 0, 0, 0, 100},
		{"def 100 halves", 100, 100, 0, 0, 50},
		{"armor break", 100, 150, 50, 0, 50},
		{"armor break over def", 100, 20, 50, 0, 100},
		{"half pen", 90, 100, 0, 0.5, 60},
		{"full pen", 90, 100, 0, 1, 90},
		{"pen clamped", 90, 100, 0, 3, 90},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Mitigate(tt.raw, tt.def, tt.armorBreak, tt.pen), 1e-9)
		})
	}
}

func TestResolve_PhysicalMitigationProperty(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range 300 {
		att := fighter("a", model.SideLeft, 0, 4, 1000, 10)
		def := fighter("d", model.SideRight, 0, 5, 1_000_000, 10)
		def.Def = rng.IntN(400)
		raw := float64(1 + rng.IntN(500))

		s, _ := newTestSession(t, att, def)
		res := s.ResolveHit(att, def, raw, model.DamagePhysical, HitOptions{ForceHit: true})

		want := max(1, int(math.Round(raw*100/(100+float64(def.Def)))))
		require.False(t, res.Crit, "case %d", i)
		assert.Equal(t, want, res.Final, "case %d raw=%v def=%d", i, raw, def.Def)
	}
}

func TestResolve_CritSkipsMitigation(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	for i := range 100 {
		att := fighter("a", model.SideLeft, 0, 4, 1000, 10)
		att.Mods.CritPct = 1
		def := fighter("d", model.SideRight, 0, 5, 1_000_000, 10)
		def.Def = rng.IntN(400)
		raw := float64(1 + rng.IntN(500))

		s, _ := newTestSession(t, att, def)
		res := s.ResolveHit(att, def, raw, model.DamagePhysical, HitOptions{ForceHit: true})

		require.True(t, res.Crit, "case %d", i)
		assert.Equal(t, int(math.Round(raw*1.5)), res.Final, "case %d", i)
	}
}

func TestResolve_ShieldConservesDamage(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	for i := range 300 {
		att := fighter("a", model.SideLeft, 0, 4, 1000, 10)
		def := fighter("d", model.SideRight, 0, 5, 1_000_000, 10)
		shieldBefore := rng.IntN(200)
		def.AddShield(shieldBefore)

		s, _ := newTestSession(t, att, def)
		res := s.ResolveHit(att, def, float64(1+rng.IntN(300)), model.DamageTrue, HitOptions{})

		assert.Equal(t, res.Final, res.Absorbed+res.HPLoss, "case %d", i)
		assert.Equal(t, max(0, res.Final-shieldBefore), res.HPLoss, "case %d", i)
		assert.GreaterOrEqual(t, def.Shield(), 0)
	}
}

func TestResolve_ElementalCounter(t *testing.T) {
	tests := []struct {
		name     string
		attClass model.Class
		defClass model.Class
		attElem  model.Element
		defElem  model.Element
		want     int
	}{
		{"non-tank counters non-tank", model.ClassFighter, model.ClassMage, model.ElementFire, model.ElementSpirit, 60},
		{"tank defender halves", model.ClassFighter, model.ClassTanker, model.ElementFire, model.ElementSpirit, 20},
		{"tank attacker no bonus", model.ClassTanker, model.ClassMage, model.ElementFire, model.ElementSpirit, 40},
		{"tank vs tank", model.ClassTanker, model.ClassTanker, model.ElementFire, model.ElementSpirit, 40},
		{"no counter", model.ClassFighter, model.ClassMage, model.ElementSpirit, model.ElementFire, 40},
		{"swarm counters nothing", model.ClassFighter, model.ClassMage, model.ElementSwarm, model.ElementSpirit, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			att := fighter("a", model.SideLeft, 0, 4, 1000, 10)
			att.Class, att.Element = tt.attClass, tt.attElem
			def := fighter("d", model.SideRight, 0, 5, 1000, 10)
			def.Class, def.Element = tt.defClass, tt.defElem

			s, _ := newTestSession(t, att, def)
			res := s.ResolveHit(att, def, 40, model.DamageTrue, HitOptions{})
			assert.Equal(t, tt.want, res.Final)
		})
	}
}

func TestResolve_RejectsNoOps(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 100, 10)
	s, log := newTestSession(t, att, def)

	assert.Zero(t, s.Resolve(att, def, math.NaN(), model.DamageTrue, HitOptions{}))
	assert.Zero(t, s.Resolve(att, def, -5, model.DamageTrue, HitOptions{}))
	assert.Zero(t, s.Resolve(att, def, 0, model.DamageTrue, HitOptions{}))
	assert.Equal(t, 100, def.HP())
	assert.Zero(t, def.Rage())
	assert.Zero(t, att.Rage())

	att.Kill()
	assert.Zero(t, s.Resolve(att, def, 50, model.DamageTrue, HitOptions{}))
	assert.Empty(t, log.Events)
}

func TestResolve_UnknownDamageTypeIsPhysical(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 100, 10)
	def.Def = 100
	s, _ := newTestSession(t, att, def)

	res := s.ResolveHit(att, def, 40, model.DamageType("chaos"), HitOptions{ForceHit: true})
	assert.Equal(t, 20, res.Final)
}

func TestResolve_Rage(t *testing.T) {
	t.Run("basic hit", func(t *testing.T) {
		att := fighter("a", model.SideLeft, 0, 4, 100, 10)
		def := fighter("d", model.SideRight, 0, 5, 100, 10)
		s, _ := newTestSession(t, att, def)

		s.Resolve(att, def, 10, model.DamageTrue, HitOptions{})
		assert.Equal(t, 1, att.Rage())
		assert.Equal(t, 1, def.Rage())
	})

	t.Run("non-caster skill hit gives no attacker rage", func(t *testing.T) {
		att := fighter("a", model.SideLeft, 0, 4, 100, 10)
		def := fighter("d", model.SideRight, 0, 5, 100, 10)
		s, _ := newTestSession(t, att, def)

		s.Resolve(att, def, 10, model.DamageTrue, HitOptions{IsSkill: true})
		assert.Zero(t, att.Rage())
		assert.Equal(t, 1, def.Rage())
	})

	t.Run("caster skill hit gives rage", func(t *testing.T) {
		att := fighter("a", model.SideLeft, 0, 4, 100, 10)
		att.Class = model.ClassMage
		def := fighter("d", model.SideRight, 0, 5, 100, 10)
		s, _ := newTestSession(t, att, def)

		s.Resolve(att, def, 10, model.DamageTrue, HitOptions{IsSkill: true})
		assert.Equal(t, 1, att.Rage())
	})

	t.Run("fully absorbed hit still feeds the defender", func(t *testing.T) {
		att := fighter("a", model.SideLeft, 0, 4, 100, 10)
		def := fighter("d", model.SideRight, 0, 5, 100, 10)
		def.AddShield(500)
		s, _ := newTestSession(t, att, def)

		s.Resolve(att, def, 10, model.DamageTrue, HitOptions{})
		assert.Zero(t, att.Rage(), "no HP damage, no attacker rage")
		assert.Equal(t, 1, def.Rage())
	})

	t.Run("enemy side uses profile rage gain", func(t *testing.T) {
		att := fighter("a", model.SideRight, 0, 5, 100, 10)
		def := fighter("d", model.SideLeft, 0, 4, 100, 10)
		s, _ := newTestSession(t, att, def)
		s.Profile.RageGain = 3

		s.Resolve(att, def, 10, model.DamageTrue, HitOptions{})
		assert.Equal(t, 3, att.Rage())
	})

	t.Run("no rage", func(t *testing.T) {
		att := fighter("a", model.SideLeft, 0, 4, 100, 10)
		def := fighter("d", model.SideRight, 0, 5, 100, 10)
		s, _ := newTestSession(t, att, def)

		s.Resolve(att, def, 10, model.DamageTrue, HitOptions{NoRage: true})
		assert.Zero(t, att.Rage())
		assert.Zero(t, def.Rage())
	})
}

func TestResolve_RageFilledListener(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 100, 10)
	def.RageMax = 2
	s, _ := newTestSession(t, att, def)

	var filled []string
	s.OnRageFilled(func(u *model.CombatUnit) { filled = append(filled, u.ID) })

	s.Resolve(att, def, 1, model.DamageTrue, HitOptions{})
	assert.Empty(t, filled)
	s.Resolve(att, def, 1, model.DamageTrue, HitOptions{})
	assert.Equal(t, []string{"d"}, filled)
	s.Resolve(att, def, 1, model.DamageTrue, HitOptions{})
	assert.Equal(t, []string{"d"}, filled, "a full bar does not fire again")
}

func TestResolve_MissFeedsDefender(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 1_000_000, 10)
	def.Mods.EvadePct = 1
	s, log := newTestSession(t, att, def)

	for range 400 {
		s.Resolve(att, def, 10, model.DamagePhysical, HitOptions{})
	}
	misses := log.Count(EventMiss)
	assert.InDelta(t, 240, misses, 60, "evasion is capped at 60%%")

	// forced and skill hits never miss
	before := log.Count(EventMiss)
	for range 50 {
		s.Resolve(att, def, 10, model.DamagePhysical, HitOptions{ForceHit: true})
		s.Resolve(att, def, 10, model.DamagePhysical, HitOptions{IsSkill: true})
		s.Resolve(att, def, 10, model.DamageMagic, HitOptions{})
	}
	assert.Equal(t, before, log.Count(EventMiss))
}

func TestResolve_ReflectDepthIsBounded(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 9))
	for i := range 200 {
		a := fighter("a", model.SideLeft, 0, 4, 1000, 20+rng.IntN(50))
		d := fighter("d", model.SideRight, 0, 5, 1000, 20+rng.IntN(50))
		for _, u := range []*model.CombatUnit{a, d} {
			u.Statuses.Apply(model.StatusReflect, 3, rng.Float64(), "")
			u.Statuses.Apply(model.StatusPhysReflect, 3, 0, "")
			u.Statuses.Apply(model.StatusCounter, 3, 0, "")
			u.Mods.LifestealPct = 0.3
		}

		s, _ := newTestSession(t, a, d)
		s.Resolve(a, d, float64(1+rng.IntN(200)), model.DamagePhysical, HitOptions{ForceHit: true})
		s.BasicAttack(d, a, HitOptions{})

		assert.LessOrEqual(t, s.MaxDepth(), 2, "case %d", i)
	}
}

func TestResolve_Reflect(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	att.Range = 4
	def := fighter("d", model.SideRight, 0, 5, 1000, 10)
	def.Statuses.Apply(model.StatusReflect, 2, 0.5, "")
	s, _ := newTestSession(t, att, def)

	s.Resolve(att, def, 40, model.DamageTrue, HitOptions{})
	assert.Equal(t, 960, def.HP())
	assert.Equal(t, 80, att.HP())

	att2 := fighter("a2", model.SideLeft, 1, 4, 100, 10)
	att2.Range = 4
	def.Statuses.Clear(model.StatusReflect)
	def.Statuses.Apply(model.StatusPhysReflect, 2, 0, "")
	s.Units = append(s.Units, att2)

	s.Resolve(att2, def, 30, model.DamagePhysical, HitOptions{ForceHit: true})
	assert.Equal(t, 70, att2.HP(), "physical reflect returns the full amount")

	s.Resolve(att2, def, 30, model.DamageMagic, HitOptions{})
	assert.Equal(t, 70, att2.HP(), "physical reflect ignores magic")
}

func TestResolve_MeleeCounter(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 1000, 10)
	def := fighter("d", model.SideRight, 0, 5, 1000, 30)
	def.Statuses.Apply(model.StatusCounter, 2, 0, "")
	s, _ := newTestSession(t, att, def)

	s.Resolve(att, def, 10, model.DamageTrue, HitOptions{})
	assert.Less(t, att.HP(), 1000, "melee attacker eats the counter")

	ranged := fighter("r", model.SideLeft, 1, 3, 1000, 10)
	ranged.Range = 4
	s.Units = append(s.Units, ranged)
	s.Resolve(ranged, def, 10, model.DamageTrue, HitOptions{})
	assert.Equal(t, 1000, ranged.HP())
}

func TestResolve_Lifesteal(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	att.Mods.LifestealPct = 0.5
	att.SetHP(50)
	def := fighter("d", model.SideRight, 0, 5, 1000, 10)
	s, _ := newTestSession(t, att, def)

	s.Resolve(att, def, 40, model.DamageTrue, HitOptions{})
	assert.Equal(t, 70, att.HP())
}

func TestResolve_OnHitProcs(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	att.Mods.BurnOnHit = 4
	att.Mods.PoisonOnHit = 3
	def := fighter("d", model.SideRight, 0, 5, 1000, 10)
	s, _ := newTestSession(t, att, def)

	s.Resolve(att, def, 10, model.DamageTrue, HitOptions{})
	assert.Equal(t, 4.0, def.Statuses.Value(model.StatusBurn))
	assert.Equal(t, 3.0, def.Statuses.Value(model.StatusPoison))
	assert.Equal(t, 2, def.Statuses.Turns(model.StatusBurn))
}

func TestResolve_SplashRedirect(t *testing.T) {
	att := fighter("a", model.SideLeft, 2, 4, 100, 10)
	victim := fighter("v", model.SideRight, 2, 6, 1000, 10)
	tank := fighter("t", model.SideRight, 2, 5, 1000, 10)
	tank.Class = model.ClassTanker
	tank.Statuses.Apply(model.StatusProtecting, 2, 0, "")
	far := fighter("f", model.SideRight, 0, 9, 1000, 10)
	s, _ := newTestSession(t, att, victim, tank, far)

	res := s.ResolveHit(att, victim, 40, model.DamageTrue, HitOptions{IsSplash: true})
	assert.True(t, res.Redirected)
	assert.Equal(t, 1000, victim.HP())
	assert.Equal(t, 970, tank.HP())

	res = s.ResolveHit(att, far, 40, model.DamageTrue, HitOptions{IsSplash: true})
	assert.False(t, res.Redirected, "protector must be adjacent")
	assert.Equal(t, 960, far.HP())

	res = s.ResolveHit(att, victim, 40, model.DamageTrue, HitOptions{})
	assert.False(t, res.Redirected, "single-target hits are not redirected")
}

func TestResolve_TierStun(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	att.Tier = 5
	def := fighter("d", model.SideRight, 0, 5, 1_000_000, 10)
	s, _ := newTestSession(t, att, def)

	stuns := 0
	for range 500 {
		def.Statuses.Clear(model.StatusStun)
		s.Resolve(att, def, 1, model.DamageTrue, HitOptions{})
		if def.Statuses.Active(model.StatusStun) {
			stuns++
		}
	}
	assert.InDelta(t, 150, stuns, 50)

	def.Statuses.Clear(model.StatusStun)
	for range 100 {
		s.Resolve(att, def, 1, model.DamageTrue, HitOptions{NoStunBonus: true})
	}
	assert.False(t, def.Statuses.Active(model.StatusStun))

	def.Statuses.Apply(model.StatusImmune, 5, 0, "")
	for range 100 {
		s.Resolve(att, def, 1, model.DamageTrue, HitOptions{})
	}
	assert.False(t, def.Statuses.Active(model.StatusStun), "immune units are never stunned")
}

func TestResolve_DeathAndLoot(t *testing.T) {
	data.MustLoad()

	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 10, 10)
	def.Species = "bear"
	def.Generated = true
	def.AddShield(5)
	s, log := newTestSession(t, att, def)
	s.Rates.DropChanceMultiplier = 100

	res := s.ResolveHit(att, def, 100, model.DamageTrue, HitOptions{})
	assert.True(t, res.Killed)
	assert.False(t, def.IsAlive())
	assert.Zero(t, def.HP())
	assert.Zero(t, def.Shield())
	assert.Equal(t, 1, log.Count(EventDeath))
	require.Len(t, s.Drops, 1)
	assert.Equal(t, "bark", s.Drops[0].ItemID)
	assert.Equal(t, "d", s.Drops[0].Source)

	// dead units take no further damage
	assert.Zero(t, s.Resolve(att, def, 100, model.DamageTrue, HitOptions{}))
}

func TestResolve_SuddenDeathMultiplier(t *testing.T) {
	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 1000, 10)
	s, _ := newTestSession(t, att, def)

	for range 105 {
		s.RecordAction()
	}
	assert.InDelta(t, 1.2, s.DamageMult, 1e-9)
	res := s.ResolveHit(att, def, 50, model.DamageTrue, HitOptions{})
	assert.Equal(t, 60, res.Final)

	s.Reset()
	assert.Equal(t, 1.0, s.DamageMult)
	assert.Zero(t, s.ActionCount)
}

func TestHealAndShield(t *testing.T) {
	caster := fighter("c", model.SideLeft, 0, 4, 100, 10)
	caster.Mods.HealPct = 0.5
	target := fighter("t", model.SideLeft, 1, 4, 100, 10)
	target.SetHP(10)
	s, _ := newTestSession(t, caster, target)

	assert.Equal(t, 30, s.Heal(caster, target, 20))
	assert.Equal(t, 60, s.Heal(caster, target, 1000), "heal is capped at MaxHP")
	assert.Zero(t, s.Heal(caster, target, math.NaN()))
	assert.Zero(t, s.Heal(caster, target, -1))

	assert.Equal(t, 1, s.AddShield(target, 0.2))
	assert.Equal(t, 13, s.AddShield(target, 12.6))
	assert.Zero(t, s.AddShield(target, -3))
	assert.Equal(t, 14, target.Shield())

	target.Kill()
	assert.Zero(t, s.Heal(caster, target, 20))
	assert.Zero(t, s.AddShield(target, 20))
}

func TestUnitInvariantsUnderResolver(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 77))
	for range 100 {
		a := fighter("a", model.SideLeft, 0, 4, 50+rng.IntN(200), 5+rng.IntN(40))
		d := fighter("d", model.SideRight, 0, 5, 50+rng.IntN(200), 5+rng.IntN(40))
		a.RageMax, d.RageMax = 1+rng.IntN(4), 1+rng.IntN(4)
		s, _ := newTestSession(t, a, d)
		units := []*model.CombatUnit{a, d}

		for range 60 {
			x, y := units[rng.IntN(2)], units[rng.IntN(2)]
			switch rng.IntN(4) {
			case 0:
				s.Resolve(x, y, rng.Float64()*80, model.DamagePhysical, HitOptions{})
			case 1:
				s.Heal(x, y, rng.Float64()*60)
			case 2:
				s.AddRage(y, rng.IntN(7)-2)
			case 3:
				s.AddShield(y, rng.Float64()*20)
			}
			for _, u := range units {
				require.GreaterOrEqual(t, u.HP(), 0)
				require.LessOrEqual(t, u.HP(), u.MaxHP)
				require.GreaterOrEqual(t, u.Rage(), 0)
				require.LessOrEqual(t, u.Rage(), u.RageMax)
				require.GreaterOrEqual(t, u.Shield(), 0)
				require.Equal(t, u.HP() > 0, u.IsAlive())
			}
		}
	}
}

// errorCounter counts records at slog.LevelError.
type errorCounter struct {
	n atomic.Int32
}

func (h *errorCounter) Enabled(_ context.Context, l slog.Level) bool { return l >= slog.LevelError }
func (h *errorCounter) Handle(context.Context, slog.Record) error {
	h.n.Add(1)
	return nil
}
func (h *errorCounter) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *errorCounter) WithGroup(string) slog.Handler      { return h }

func TestResolve_InvalidInputLogsError(t *testing.T) {
	h := &errorCounter{}
	prev := slog.Default()
	slog.SetDefault(slog.New(h))
	defer slog.SetDefault(prev)

	att := fighter("a", model.SideLeft, 0, 4, 100, 10)
	def := fighter("d", model.SideRight, 0, 5, 100, 10)
	s, _ := newTestSession(t, att, def)

	s.Resolve(att, def, math.Inf(1), model.DamageTrue, HitOptions{})
	assert.Equal(t, int32(1), h.n.Load())
	assert.Equal(t, 100, def.HP())
}
