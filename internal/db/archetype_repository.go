package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/otcraft/mobsim/internal/model"
)

// ArchetypeRepository loads monster archetypes with their ability blocks,
// summon specs and voice lines.
type ArchetypeRepository struct {
	pool *pgxpool.Pool
}

// NewArchetypeRepository creates an archetype repository.
func NewArchetypeRepository(pool *pgxpool.Pool) *ArchetypeRepository {
	return &ArchetypeRepository{pool: pool}
}

// LoadAll loads every archetype.
func (r *ArchetypeRepository) LoadAll(ctx context.Context) ([]*model.Archetype, error) {
	query := `
		SELECT id, name, description, health_max, flee_health, base_speed,
		       target_distance, hostile, pushable, can_push_items,
		       can_push_creatures, faction, enemy_factions,
		       strategy_nearest, strategy_health, strategy_damage, strategy_random,
		       max_summons, change_target_speed, change_target_chance,
		       static_attack_chance, yell_speed, yell_chance, use_flavor_text
		FROM archetypes
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("loading archetypes: %w", err)
	}
	defer rows.Close()

	byID := make(map[int32]*model.Archetype)
	var archetypes []*model.Archetype

	for rows.Next() {
		var (
			a             model.Archetype
			faction       int32
			enemyFactions []int32
		)
		err := rows.Scan(
			&a.ID, &a.Name, &a.Description, &a.HealthMax, &a.FleeHealth, &a.BaseSpeed,
			&a.TargetDistance, &a.Hostile, &a.Pushable, &a.CanPushItems,
			&a.CanPushCreature, &faction, &enemyFactions,
			&a.StrategyWeight.Nearest, &a.StrategyWeight.Health,
			&a.StrategyWeight.Damage, &a.StrategyWeight.Random,
			&a.MaxSummons, &a.ChangeTargetSpeed, &a.ChangeTargetChance,
			&a.StaticAttackChance, &a.YellSpeed, &a.YellChance, &a.UseFlavorText,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning archetype: %w", err)
		}
		a.Faction = model.Faction(faction)
		for _, f := range enemyFactions {
			a.EnemyFactions = append(a.EnemyFactions, model.Faction(f))
		}
		arch := a
		byID[arch.ID] = &arch
		archetypes = append(archetypes, &arch)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating archetypes: %w", err)
	}

	if err := r.loadAbilities(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadSummons(ctx, byID); err != nil {
		return nil, err
	}
	if err := r.loadVoices(ctx, byID); err != nil {
		return nil, err
	}
	return archetypes, nil
}

func (r *ArchetypeRepository) loadAbilities(ctx context.Context, byID map[int32]*model.Archetype) error {
	query := `
		SELECT archetype_id, category, name, speed, chance,
		       min_range, range, is_melee, min_value, max_value
		FROM archetype_abilities
		ORDER BY archetype_id, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("loading archetype abilities: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			archID   int32
			category string
			ab       model.Ability
		)
		err := rows.Scan(
			&archID, &category, &ab.Name, &ab.Speed, &ab.Chance,
			&ab.MinRange, &ab.Range, &ab.IsMelee, &ab.MinValue, &ab.MaxValue,
		)
		if err != nil {
			return fmt.Errorf("scanning ability: %w", err)
		}
		arch, ok := byID[archID]
		if !ok {
			continue
		}
		if category == "attack" {
			arch.AttackAbilities = append(arch.AttackAbilities, ab)
		} else {
			arch.DefenseAbilities = append(arch.DefenseAbilities, ab)
		}
	}
	return rows.Err()
}

func (r *ArchetypeRepository) loadSummons(ctx context.Context, byID map[int32]*model.Archetype) error {
	query := `
		SELECT archetype_id, summon_archetype, name, speed, chance, max_count, force_place
		FROM archetype_summons
		ORDER BY archetype_id, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("loading archetype summons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			archID int32
			spec   model.SummonSpec
		)
		err := rows.Scan(&archID, &spec.ArchetypeID, &spec.Name,
			&spec.Speed, &spec.Chance, &spec.Max, &spec.Force)
		if err != nil {
			return fmt.Errorf("scanning summon spec: %w", err)
		}
		if arch, ok := byID[archID]; ok {
			arch.Summons = append(arch.Summons, spec)
		}
	}
	return rows.Err()
}

func (r *ArchetypeRepository) loadVoices(ctx context.Context, byID map[int32]*model.Archetype) error {
	query := `
		SELECT archetype_id, text, yell
		FROM archetype_voices
		ORDER BY archetype_id, id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("loading archetype voices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			archID int32
			voice  model.Voice
		)
		if err := rows.Scan(&archID, &voice.Text, &voice.Yell); err != nil {
			return fmt.Errorf("scanning voice: %w", err)
		}
		if arch, ok := byID[archID]; ok {
			arch.Voices = append(arch.Voices, voice)
		}
	}
	return rows.Err()
}
