package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/mud-combat/internal/game/character"
	"github.com/cory-johannsen/mud-combat/internal/game/combat"
)

// ErrProfileNotFound is returned when no profile is stored under a name.
var ErrProfileNotFound = errors.New("profile not found")

// ProfileRepository stores combat profiles, one row per player name.
// Skills, allocation and wounds are kept as jsonb.
type ProfileRepository struct {
	db *pgxpool.Pool
}

// NewProfileRepository creates a ProfileRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewProfileRepository(db *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, name, agility, strength, max_hp, max_fatigue,
	skills, allocation, wounds, created_at, updated_at`

func scanProfile(row pgx.Row) (*character.Profile, error) {
	var p character.Profile
	if err := row.Scan(
		&p.ID, &p.Name, &p.Agility, &p.Strength, &p.MaxHP, &p.MaxFatigue,
		&p.Skills, &p.Allocation, &p.Wounds, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if p.Skills == nil {
		p.Skills = combat.Skills{}
	}
	if p.Wounds == nil {
		p.Wounds = map[combat.BodyPart]combat.Wound{}
	}
	return &p, nil
}

// LoadProfile retrieves the profile stored under name.
//
// Precondition: name must be non-empty.
// Postcondition: Returns the Profile or ErrProfileNotFound.
func (r *ProfileRepository) LoadProfile(ctx context.Context, name string) (*character.Profile, error) {
	p, err := scanProfile(r.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM combat_profiles WHERE name = $1`, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	return p, nil
}

// SaveProfile inserts p or overwrites the row with the same name.
//
// Precondition: p must pass Validate.
// Postcondition: p.ID, p.CreatedAt and p.UpdatedAt reflect the stored row.
func (r *ProfileRepository) SaveProfile(ctx context.Context, p *character.Profile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	skills := p.Skills
	if skills == nil {
		skills = combat.Skills{}
	}
	wounds := p.Wounds
	if wounds == nil {
		wounds = map[combat.BodyPart]combat.Wound{}
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO combat_profiles
			(name, agility, strength, max_hp, max_fatigue, skills, allocation, wounds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (name) DO UPDATE SET
			agility     = EXCLUDED.agility,
			strength    = EXCLUDED.strength,
			max_hp      = EXCLUDED.max_hp,
			max_fatigue = EXCLUDED.max_fatigue,
			skills      = EXCLUDED.skills,
			allocation  = EXCLUDED.allocation,
			wounds      = EXCLUDED.wounds,
			updated_at  = NOW()
		RETURNING id, created_at, updated_at`,
		p.Name, p.Agility, p.Strength, p.MaxHP, p.MaxFatigue, skills, p.Allocation, wounds,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", p.Name, err)
	}
	return nil
}

// DeleteProfile removes the profile stored under name.
//
// Postcondition: Returns ErrProfileNotFound when no row was deleted.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, name string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM combat_profiles WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}
