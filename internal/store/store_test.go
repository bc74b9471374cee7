package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfcabral/rulegate/internal/rule"
)

func newRule(id string) *rule.Rule {
	return &rule.Rule{
		ID:        id,
		Condition: "temp > 30",
		Action:    map[string]any{"type": "notify", "message": "hot"},
	}
}

// Both backends must satisfy the same contract.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "rules.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"memory": NewMemory(),
		"sqlite": sq,
	}
}

func TestCreateAndGet(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Create(ctx, newRule("r1")))

			got, err := s.Get(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, "r1", got.ID)
			assert.Equal(t, "temp > 30", got.Condition)
			assert.Equal(t, "notify", got.ActionType())
			assert.False(t, got.CreatedAt.IsZero())
			assert.Equal(t, got.CreatedAt.UnixNano(), got.UpdatedAt.UnixNano())
		})
	}
}

func TestCreateDuplicateLeavesOriginalUntouched(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Create(ctx, newRule("r1")))

			dup := newRule("r1")
			dup.Condition = "temp > 99"
			err := s.Create(ctx, dup)
			require.ErrorIs(t, err, ErrDuplicateID)

			got, err := s.Get(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, "temp > 30", got.Condition, "original rule must be unmodified")
		})
	}
}

func TestGetUnknown(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "nope")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestListCreationOrder(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 5; i++ {
				require.NoError(t, s.Create(ctx, newRule(fmt.Sprintf("r%d", i))))
			}
			require.NoError(t, s.Delete(ctx, "r2"))

			rules, err := s.List(ctx)
			require.NoError(t, err)
			ids := make([]string, len(rules))
			for i, r := range rules {
				ids[i] = r.ID
			}
			assert.Equal(t, []string{"r0", "r1", "r3", "r4"}, ids)
		})
	}
}

func TestDeleteTwiceReportsNotFound(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Create(ctx, newRule("r1")))

			require.NoError(t, s.Delete(ctx, "r1"))
			err := s.Delete(ctx, "r1")
			assert.ErrorIs(t, err, ErrNotFound, "second delete must not report success")
		})
	}
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rules.db")

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, newRule("r1")))
	require.NoError(t, s.Create(ctx, newRule("r2")))
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer s.Close()

	rules, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "r1", rules[0].ID)
	assert.Equal(t, "r2", rules[1].ID)
	assert.Equal(t, map[string]any{"type": "notify", "message": "hot"}, rules[0].Action)
}
