package gameserver

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/mud-combat/internal/game/combat"
	"github.com/cory-johannsen/mud-combat/internal/game/inventory"
)

// Challenge errors returned by ChallengeBook.Take.
var (
	ErrNoChallenge      = errors.New("gameserver: no open challenge")
	ErrTokenMismatch    = errors.New("gameserver: challenge token mismatch")
	ErrChallengeExpired = errors.New("gameserver: challenge expired")
)

// Challenge is one sync-bar prompt waiting for the client's answer.
type Challenge struct {
	Token      string
	AttackerID combat.EntityID
	TargetID   combat.EntityID
	Move       combat.Move
	Weapon     *inventory.WeaponDef
	// Multiplier is fixed when the challenge opens (iaijutsu spends momentum up front).
	Multiplier float64
	ExpiresAt  time.Time
}

// ChallengeBook holds at most one open challenge per attacker.
//
// ChallengeBook is not safe for concurrent use; the Service lock guards it.
type ChallengeBook struct {
	open     map[combat.EntityID]*Challenge
	newToken func() string
}

// NewChallengeBook returns an empty book minting uuid tokens.
func NewChallengeBook() *ChallengeBook {
	return &ChallengeBook{
		open:     make(map[combat.EntityID]*Challenge),
		newToken: uuid.NewString,
	}
}

// Open records c under its attacker, replacing any earlier challenge.
//
// Postcondition: The returned challenge carries a fresh token.
func (b *ChallengeBook) Open(c Challenge) *Challenge {
	c.Token = b.newToken()
	if c.Multiplier <= 0 {
		c.Multiplier = 1
	}
	b.open[c.AttackerID] = &c
	return &c
}

// Pending returns the attacker's open challenge.
func (b *ChallengeBook) Pending(attacker combat.EntityID) (*Challenge, bool) {
	c, ok := b.open[attacker]
	return c, ok
}

// Take claims the attacker's challenge if token matches and it has not expired.
//
// Postcondition: On success or expiry the challenge is removed. A mismatched
// token leaves the challenge open.
func (b *ChallengeBook) Take(attacker combat.EntityID, token string, now time.Time) (*Challenge, error) {
	c, ok := b.open[attacker]
	if !ok {
		return nil, ErrNoChallenge
	}
	if c.Token != token {
		return nil, ErrTokenMismatch
	}
	delete(b.open, attacker)
	if now.After(c.ExpiresAt) {
		return c, ErrChallengeExpired
	}
	return c, nil
}

// Drop discards the attacker's challenge.
func (b *ChallengeBook) Drop(attacker combat.EntityID) bool {
	if _, ok := b.open[attacker]; !ok {
		return false
	}
	delete(b.open, attacker)
	return true
}

// Len returns the number of open challenges.
func (b *ChallengeBook) Len() int {
	return len(b.open)
}

// Sweep removes and returns every challenge expired at now, ordered by attacker.
func (b *ChallengeBook) Sweep(now time.Time) []*Challenge {
	var expired []*Challenge
	for id, c := range b.open {
		if now.After(c.ExpiresAt) {
			expired = append(expired, c)
			delete(b.open, id)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i].AttackerID < expired[j].AttackerID })
	return expired
}
