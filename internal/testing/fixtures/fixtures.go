package fixtures

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/forgo/menagerie/internal/database"
	"github.com/forgo/menagerie/internal/model"
	"github.com/forgo/menagerie/internal/repository"
)

// Factory creates test entities in the database
type Factory struct {
	db database.Database
}

// New creates a new fixture factory
func New(db database.Database) *Factory {
	return &Factory{db: db}
}

func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func ctx(t *testing.T) context.Context {
	c, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return c
}

// ============================================================================
// Trainer Fixtures
// ============================================================================

// TrainerOpts customizes trainer creation
type TrainerOpts struct {
	PlayerUserID string
	Name         string
	Level        int
	Currency     int
}

// CreateTrainer creates a trainer with optional customizations
func (f *Factory) CreateTrainer(t *testing.T, opts ...func(*TrainerOpts)) *model.Trainer {
	t.Helper()

	o := &TrainerOpts{
		PlayerUserID: "player_" + randomID(),
		Name:         "Trainer " + randomID(),
		Level:        1,
	}
	for _, fn := range opts {
		fn(o)
	}

	tr, err := repository.NewTrainerRepository(f.db).Create(ctx(t), &model.TrainerCreateInput{
		PlayerUserID:   o.PlayerUserID,
		Name:           o.Name,
		Level:          &o.Level,
		CurrencyAmount: &o.Currency,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create trainer: %v", err)
	}
	return tr
}

// ============================================================================
// Monster Fixtures
// ============================================================================

// MonsterOpts customizes monster creation
type MonsterOpts struct {
	Name     string
	Species1 string
	Type1    string
	Level    int
	Moveset  []string
}

// CreateMonster creates a monster owned by trainer
func (f *Factory) CreateMonster(t *testing.T, trainer *model.Trainer, opts ...func(*MonsterOpts)) *model.Monster {
	t.Helper()

	o := &MonsterOpts{
		Name:     "Mon " + randomID(),
		Species1: "Pikachu",
		Type1:    "Electric",
		Level:    5,
	}
	for _, fn := range opts {
		fn(o)
	}

	m, err := repository.NewMonsterRepository(f.db).Create(ctx(t), &model.MonsterCreateInput{
		TrainerID:    trainer.ID,
		PlayerUserID: trainer.PlayerUserID,
		Name:         o.Name,
		Species1:     o.Species1,
		Type1:        o.Type1,
		Level:        &o.Level,
		Moveset:      o.Moveset,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create monster: %v", err)
	}
	return m
}

// ============================================================================
// Ability Fixtures
// ============================================================================

// CreateAbility creates an ability with the given common types
func (f *Factory) CreateAbility(t *testing.T, commonTypes ...string) *model.Ability {
	t.Helper()

	effect := "Raises a stat"
	a, err := repository.NewAbilityRepository(f.db).Create(ctx(t), &model.AbilityCreateInput{
		Name:        "Ability " + randomID(),
		Effect:      &effect,
		CommonTypes: commonTypes,
	})
	if err != nil {
		t.Fatalf("fixtures: failed to create ability: %v", err)
	}
	return a
}

// ============================================================================
// Battle Log Fixtures
// ============================================================================

// CreateBattleLogs writes n action entries for battleID, oldest first, and
// returns them in insertion order.
func (f *Factory) CreateBattleLogs(t *testing.T, battleID string, n int) []*model.BattleLog {
	t.Helper()

	repo := repository.NewBattleLogRepository(f.db)
	logs := make([]*model.BattleLog, 0, n)
	for i := 0; i < n; i++ {
		l, err := repo.LogAction(ctx(t), battleID, fmt.Sprintf("turn %d", i+1), map[string]interface{}{"turn": i + 1})
		if err != nil {
			t.Fatalf("fixtures: failed to create battle log %d: %v", i+1, err)
		}
		logs = append(logs, l)
	}
	return logs
}

// BattleID returns a random battle identifier
func BattleID() string {
	return "battle_" + randomID()
}
