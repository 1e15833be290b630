package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/pantryshare-backend/pkg/docstore"
)

func seedPantry(t *testing.T, s *Store, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, s.Set(context.Background(), "users/u1/pantry/"+n, docstore.Fields{
			"ingredientName": n,
			"frozen":         n == "Peas",
		}))
	}
}

func TestGetSetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.Get(ctx, "users/u1/pantry/Milk")
	require.ErrorIs(t, err, docstore.ErrNotFound)

	err = s.Update(ctx, "users/u1/pantry/Milk", docstore.Fields{"frozen": true})
	require.ErrorIs(t, err, docstore.ErrNotFound)

	require.NoError(t, s.Set(ctx, "users/u1/pantry/Milk", docstore.Fields{
		"ingredientName": "Milk",
		"mealPlans":      []string{"m1"},
	}))
	require.NoError(t, s.Update(ctx, "users/u1/pantry/Milk", docstore.Fields{
		"frozen":    true,
		"mealPlans": docstore.ArrayUnion("m2", "m1"),
	}))

	got, err := s.Get(ctx, "users/u1/pantry/Milk")
	require.NoError(t, err)
	assert.True(t, got.Bool("frozen"))
	assert.Equal(t, "Milk", got.String("ingredientName"))
	assert.Equal(t, []string{"m1", "m2"}, got.Strings("mealPlans"))

	require.NoError(t, s.Update(ctx, "users/u1/pantry/Milk", docstore.Fields{
		"mealPlans": docstore.ArrayRemove("m1", "missing"),
	}))
	got, err = s.Get(ctx, "users/u1/pantry/Milk")
	require.NoError(t, err)
	assert.Equal(t, []string{"m2"}, got.Strings("mealPlans"))

	require.NoError(t, s.Delete(ctx, "users/u1/pantry/Milk"))
	require.NoError(t, s.Delete(ctx, "users/u1/pantry/Milk"))
	_, err = s.Get(ctx, "users/u1/pantry/Milk")
	require.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestGetReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.Set(ctx, "groups/g1", docstore.Fields{"groupMembers": []string{"a"}}))

	got, err := s.Get(ctx, "groups/g1")
	require.NoError(t, err)
	got["groupMembers"].([]any)[0] = "mutated"

	again, err := s.Get(ctx, "groups/g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Strings("groupMembers"))
}

func TestQueryOrdersAndResumesAfterCursor(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedPantry(t, s, "Milk", "Apples", "Peas", "Bread", "Eggs")
	require.NoError(t, s.Set(ctx, "users/u2/pantry/Zucchini", docstore.Fields{"ingredientName": "Zucchini"}))

	q := docstore.Query{}.OrderedBy("ingredientName", docstore.Asc).Limited(2)
	page, err := s.Query(ctx, "users/u1/pantry", q)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Apples", page[0].ID)
	assert.Equal(t, "Bread", page[1].ID)

	page, err = s.Query(ctx, "users/u1/pantry", q.After("Bread"))
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Eggs", page[0].ID)
	assert.Equal(t, "Milk", page[1].ID)

	page, err = s.Query(ctx, "users/u1/pantry", q.After("Peas"))
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedPantry(t, s, "Milk", "Peas")
	require.NoError(t, s.Update(ctx, "users/u1/pantry/Milk", docstore.Fields{"mealPlans": docstore.ArrayUnion("m1")}))

	frozen, err := s.Query(ctx, "users/u1/pantry", docstore.Query{}.Where("frozen", docstore.OpEqual, true))
	require.NoError(t, err)
	require.Len(t, frozen, 1)
	assert.Equal(t, "Peas", frozen[0].ID)

	linked, err := s.Query(ctx, "users/u1/pantry", docstore.Query{}.Where("mealPlans", docstore.OpArrayContains, "m1"))
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "Milk", linked[0].ID)

	// range filters never match across types
	none, err := s.Query(ctx, "users/u1/pantry", docstore.Query{}.Where("ingredientName", docstore.OpGreater, 3))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestQueryMultiFieldCursorWithDocumentIDTiebreak(t *testing.T) {
	ctx := context.Background()
	s := New()
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"b", "a", "c"} {
		require.NoError(t, s.Set(ctx, "users/u1/mealPlans/"+id, docstore.Fields{"date": day}))
	}
	require.NoError(t, s.Set(ctx, "users/u1/mealPlans/z", docstore.Fields{"date": day.Add(-24 * time.Hour)}))

	q := docstore.Query{}.
		OrderedBy("date", docstore.Asc).
		OrderedBy(docstore.DocumentID, docstore.Asc)

	all, err := s.Query(ctx, "users/u1/mealPlans", q)
	require.NoError(t, err)
	ids := make([]string, 0, len(all))
	for _, d := range all {
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"z", "a", "b", "c"}, ids)

	rest, err := s.Query(ctx, "users/u1/mealPlans", q.After(day, "a"))
	require.NoError(t, err)
	require.Len(t, rest, 2)
	assert.Equal(t, "b", rest[0].ID)
}

func TestFaultHook(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")
	s.SetFault(func(op, path string) error {
		if op == "set" && path == "groups/g1" {
			return boom
		}
		return nil
	})

	require.ErrorIs(t, s.Set(ctx, "groups/g1", docstore.Fields{}), boom)
	require.NoError(t, s.Set(ctx, "groups/g2", docstore.Fields{}))
}

func TestRejectsMalformedPaths(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.Error(t, s.Set(ctx, "users/u1/pantry", docstore.Fields{}))
	_, err := s.Query(ctx, "users/u1", docstore.Query{})
	require.Error(t, err)
}
