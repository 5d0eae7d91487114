package gameserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

func TestTick_FatigueRegenCarriesFractions(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p := h.spawnPlayer(t, "p1", "Kai")
	p.Stats().Fatigue = 10

	h.Tick(500 * time.Millisecond)
	assert.Equal(t, 10, p.Stats().Fatigue)

	h.Tick(500 * time.Millisecond)
	assert.Equal(t, 11, p.Stats().Fatigue)
}

func TestTick_FatigueWaitsOutRoundtime(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p := h.spawnPlayer(t, "p1", "Kai")
	p.Stats().Fatigue = 10
	p.Roundtime().Apply(3)

	h.Tick(time.Second)
	h.Tick(time.Second)

	assert.Equal(t, 10, p.Stats().Fatigue)
	assert.Equal(t, 1.0, p.Roundtime().Remaining)
}

func TestTick_BalanceRecovers(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p := h.spawnPlayer(t, "p1", "Kai")
	p.Stats().Balance = 0.5

	h.Tick(2 * time.Second)

	assert.InDelta(t, 0.6, p.Stats().Balance, 1e-9)
}

func TestTick_ReadyMessageWhenHostileRoundtimeEnds(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p := h.spawnPlayer(t, "p1", "Kai")
	p.Stats().Hostile = true
	p.Roundtime().Apply(1)

	h.Tick(time.Second)

	assert.True(t, h.emit.saw(p.ID, "You are ready."))
}

func TestTick_MomentumDecaysAfterGrace(t *testing.T) {
	h := newHarness(t, newCountingSource(50))
	p := h.spawnPlayer(t, "p1", "Kai", withWeapon(testKatana))
	m := p.EnsureMomentum()
	m.Gain(20)

	for i := 0; i < 5; i++ {
		h.Tick(time.Second)
	}

	assert.Less(t, m.Current, 20.0)
	assert.GreaterOrEqual(t, m.Current, 0.0)
}

func TestTick_AutomationLosesTargetThatLeft(t *testing.T) {
	h := newHarness(t, newCountingSource(90, 10))
	p := h.spawnPlayer(t, "p1", "Kai")
	npc := h.spawnNPC(t, "n1", "thug", false)
	p.SetAutomation(combat.AutomatedAction{Kind: combat.AutoAdvance, TargetID: npc.ID})
	npc.Position().RoomID = "alley"

	h.Tick(time.Second)

	assert.Nil(t, p.Automation())
	assert.True(t, h.emit.saw(p.ID, "You have lost your target."))
}

func TestTick_AutomationStopsWhenNotStanding(t *testing.T) {
	h := newHarness(t, newCountingSource(90, 10))
	p := h.spawnPlayer(t, "p1", "Kai")
	npc := h.spawnNPC(t, "n1", "thug", false)
	p.SetAutomation(combat.AutomatedAction{Kind: combat.AutoRetreat, TargetID: npc.ID})
	p.Stats().Stance = combat.Sitting

	h.Tick(time.Second)

	assert.Nil(t, p.Automation())
	assert.True(t, h.emit.saw(p.ID, "You stop moving."))
}

func TestTick_AutomationFailureStalls(t *testing.T) {
	h := newHarness(t, newCountingSource(10, 90))
	p := h.spawnPlayer(t, "p1", "Kai")
	npc := h.spawnNPC(t, "n1", "thug", false)
	p.SetAutomation(combat.AutomatedAction{Kind: combat.AutoAdvance, TargetID: npc.ID})

	h.Tick(time.Second)

	assert.Nil(t, p.Automation())
	assert.True(t, h.emit.saw(p.ID, "Your advance stalls."))
}
