package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func heroStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(NewInMemoryNormalizedCacheWithRecords(RecordSet{
		"QUERY_ROOT": {
			"hero": Reference{Key: "Hero:42"},
		},
		"Hero:42": {
			"__typename": "Hero",
			"name":       "Luke",
			"friends": []interface{}{
				Reference{Key: "Hero:43"},
				Reference{Key: "Hero:44"},
			},
		},
		"Hero:43": {"__typename": "Hero", "name": "Leia"},
		"Hero:44": {"__typename": "Hero", "name": "Han"},
	}))
	t.Cleanup(store.Close)
	return store
}

func TestExecuteFollowsReferences(t *testing.T) {
	store := heroStore(t)

	result, err := store.ExecuteSelectionSet(SelectionSet{
		ParentType: "Query",
		Selections: []Selection{
			Object("hero",
				Field("__typename"),
				Field("name"),
			),
		},
	}, QueryRootKey)
	require.NoError(t, err)

	assert.Equal(t, DataDict{
		"hero": DataDict{
			"__typename": "Hero",
			"name":       "Luke",
		},
	}, result.Data)
}

func TestExecuteCollectsDependentKeys(t *testing.T) {
	store := heroStore(t)

	result, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{
			Object("hero",
				Field("name"),
				Object("friends", Field("name")),
			),
		},
	}, QueryRootKey)
	require.NoError(t, err)

	expected := NewKeySet("QUERY_ROOT", "Hero:42", "Hero:43", "Hero:44")
	assert.Equal(t, expected, result.DependentKeys)
}

func TestExecuteResolvesLists(t *testing.T) {
	store := heroStore(t)

	result, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{
			Object("hero",
				Object("friends", Field("name")),
			),
		},
	}, QueryRootKey)
	require.NoError(t, err)

	hero := result.Data["hero"].(DataDict)
	friends := hero["friends"].([]interface{})
	require.Len(t, friends, 2)
	assert.Equal(t, "Leia", friends[0].(DataDict)["name"])
	assert.Equal(t, "Han", friends[1].(DataDict)["name"])
}

func TestExecuteMissingRootRecordIsCacheMiss(t *testing.T) {
	store := NewStore(nil)
	defer store.Close()

	_, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{Field("name")},
	}, QueryRootKey)

	var miss *MissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, []string{"QUERY_ROOT"}, miss.Path)
}

func TestExecuteMissingFieldReportsPath(t *testing.T) {
	store := heroStore(t)

	_, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{
			Object("hero", Field("homeworld")),
		},
	}, QueryRootKey)

	var miss *MissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, []string{"QUERY_ROOT", "hero", "homeworld"}, miss.Path)
}

func TestExecuteDanglingReferenceIsCacheMiss(t *testing.T) {
	store := NewStore(NewInMemoryNormalizedCacheWithRecords(RecordSet{
		"QUERY_ROOT": {"hero": Reference{Key: "Hero:404"}},
	}))
	defer store.Close()

	_, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{Object("hero", Field("name"))},
	}, QueryRootKey)

	var miss *MissError
	require.ErrorAs(t, err, &miss)
	assert.Equal(t, []string{"QUERY_ROOT", "hero"}, miss.Path)
}

func TestExecuteFieldArgumentsSelectStorageKey(t *testing.T) {
	store := NewStore(NewInMemoryNormalizedCacheWithRecords(RecordSet{
		"QUERY_ROOT": {
			`hero(episode:"JEDI")`: Reference{Key: "Hero:42"},
		},
		"Hero:42": {"name": "Luke"},
	}))
	defer store.Close()

	result, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{
			ObjectWithArgs("hero", map[string]interface{}{"episode": "JEDI"}, Field("name")),
		},
	}, QueryRootKey)
	require.NoError(t, err)
	assert.Equal(t, "Luke", result.Data["hero"].(DataDict)["name"])
}

func TestStorageKeyCanonicalizesArgumentOrder(t *testing.T) {
	a := FieldWithArgs("hero", map[string]interface{}{"a": 1, "b": "x"})
	b := FieldWithArgs("hero", map[string]interface{}{"b": "x", "a": 1})
	assert.Equal(t, a.StorageKey(), b.StorageKey())
	assert.Equal(t, `hero(a:1,b:"x")`, a.StorageKey())
}

func TestAliasSelectsResponseKey(t *testing.T) {
	store := heroStore(t)

	result, err := store.ExecuteSelectionSet(SelectionSet{
		Selections: []Selection{
			{Name: "hero", Alias: "mainHero", Selections: []Selection{Field("name")}},
		},
	}, QueryRootKey)
	require.NoError(t, err)
	assert.Contains(t, result.Data, "mainHero")
}
