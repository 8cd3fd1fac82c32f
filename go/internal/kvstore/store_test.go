package kvstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreSuite exercises a Store implementation. Every path lives below a fresh root so
// suites can share a database.
func runStoreSuite(t *testing.T, store Store) {
	ctx := context.Background()
	root := "suite-" + uuid.NewString()
	p := func(segments ...string) string { return Join(append([]string{root}, segments...)...) }

	t.Run("get missing", func(t *testing.T) {
		_, err := store.Get(ctx, p("missing"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, p("teams", "7"), map[string]any{"name": "Falcons", "points": 3}))

		raw, err := store.Get(ctx, p("teams", "7"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Falcons","points":3}`, string(raw))

		require.NoError(t, store.Set(ctx, p("teams", "7"), map[string]any{"name": "Hawks"}))
		raw, err = store.Get(ctx, p("teams", "7"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Hawks"}`, string(raw))
	})

	t.Run("scalar values", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, p("pitopen"), true))
		raw, err := store.Get(ctx, p("pitopen"))
		require.NoError(t, err)
		assert.JSONEq(t, `true`, string(raw))
	})

	t.Run("update merges fields", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, p("teams", "9"), map[string]any{"name": "Otters", "points": 1}))
		require.NoError(t, store.Update(ctx, p("teams", "9"), map[string]any{"points": 4}))

		raw, err := store.Get(ctx, p("teams", "9"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"name":"Otters","points":4}`, string(raw))
	})

	t.Run("update creates missing object", func(t *testing.T) {
		require.NoError(t, store.Update(ctx, p("fresh"), map[string]any{"gameStatus": "active"}))

		raw, err := store.Get(ctx, p("fresh"))
		require.NoError(t, err)
		assert.JSONEq(t, `{"gameStatus":"active"}`, string(raw))
	})

	t.Run("children are one level deep", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, p("games", "0"), map[string]any{"gameid": "1"}))
		require.NoError(t, store.Set(ctx, p("games", "1"), map[string]any{"gameid": "2"}))
		require.NoError(t, store.Set(ctx, p("games", "1", "notes"), "deep"))
		require.NoError(t, store.Set(ctx, p("gamesx"), "sibling"))

		children, err := store.Children(ctx, p("games"))
		require.NoError(t, err)
		require.Len(t, children, 2)
		assert.JSONEq(t, `{"gameid":"1"}`, string(children["0"]))
		assert.JSONEq(t, `{"gameid":"2"}`, string(children["1"]))

		empty, err := store.Children(ctx, p("nothing"))
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("remove deletes subtree", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, p("gone"), "x"))
		require.NoError(t, store.Set(ctx, p("gone", "a"), "y"))
		require.NoError(t, store.Set(ctx, p("gonezo"), "z"))

		require.NoError(t, store.Remove(ctx, p("gone")))

		_, err := store.Get(ctx, p("gone"))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Get(ctx, p("gone", "a"))
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = store.Get(ctx, p("gonezo"))
		assert.NoError(t, err)

		require.NoError(t, store.Remove(ctx, p("never-existed")))
	})

	t.Run("rejects empty path", func(t *testing.T) {
		assert.Error(t, store.Set(ctx, "/", 1))
		_, err := store.Get(ctx, "")
		assert.Error(t, err)
	})
}

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemory())
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()
	require.NoError(t, store.Set(ctx, "k", "value"))

	raw, err := store.Get(ctx, "k")
	require.NoError(t, err)
	raw[1] = 'X'

	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, json.RawMessage(`"value"`), again)
}

func TestCleanPath(t *testing.T) {
	tests := map[string]string{
		"teams/7":      "teams/7",
		"/teams/7/":    "teams/7",
		"teams//7":     "teams/7",
		" / ":          "",
		"games/ 3 /x/": "games/3/x",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanPath(in), in)
	}
	assert.Equal(t, "games/4", Join("games", "4"))
}

func TestMergeObjectReplacesNonObject(t *testing.T) {
	merged, err := mergeObject(json.RawMessage(`"scalar"`), map[string]any{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(merged))
}
