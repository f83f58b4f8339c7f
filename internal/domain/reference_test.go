package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testReference covers the states used across the package tests.
func testReference(t *testing.T) Reference {
	t.Helper()
	ref, err := NewReference(
		map[string]string{
			"NY": stateNewYork,
			"IL": "Illinois",
			"MO": stateMissouri,
			"TX": "Texas",
			"GA": "Georgia",
		},
		map[string][]string{
			"Middle Atlantic":    {stateNewYork},
			"East North Central": {"Illinois"},
			"West North Central": {stateMissouri},
			"West South Central": {"Texas"},
			"South Atlantic":     {"Georgia"},
		},
	)
	require.NoError(t, err)
	return ref
}

func TestNewReference(t *testing.T) {
	ref := testReference(t)

	name, ok := ref.StateName(" ny")
	require.True(t, ok)
	assert.Equal(t, stateNewYork, name)

	region, ok := ref.Region("Texas")
	require.True(t, ok)
	assert.Equal(t, "West South Central", region)

	_, ok = ref.StateName("PR")
	assert.False(t, ok)
}

func TestNewReference_Empty(t *testing.T) {
	_, err := NewReference(nil, map[string][]string{"New England": {"Maine"}})
	require.Error(t, err)

	_, err = NewReference(map[string]string{"ME": "Maine"}, nil)
	require.Error(t, err)
}

func TestReference_CopiesAreIndependent(t *testing.T) {
	ref := testReference(t)

	names := ref.StateNames()
	names["ZZ"] = "Nowhere"
	divisions := ref.Divisions()
	divisions["Middle Atlantic"][0] = "Nowhere"

	_, ok := ref.StateName("ZZ")
	assert.False(t, ok)
	assert.Equal(t, []string{stateNewYork}, ref.Divisions()["Middle Atlantic"])
}
