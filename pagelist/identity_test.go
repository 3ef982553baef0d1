package pagelist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propkit/client-go/entity"
)

func propertyAt(id string, updated time.Time) entity.Property {
	return entity.Property{
		ID:           id,
		Name:         "Prop " + id,
		AddressLine1: "12 Oak St",
		City:         "Portland",
		State:        "OR",
		PostalCode:   "97201",
		Status:       "active",
		UnitCounts:   entity.UnitCounts{Total: 4, Occupied: 3, Vacant: 1},
		UpdatedAt:    updated,
	}
}

func TestMaterializer_IdentityStableWhileVersionUnchanged(t *testing.T) {
	mat := PropertyMaterializer()
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := mat.Materialize([]entity.Property{propertyAt("p1", updated)})
	second := mat.Materialize([]entity.Property{propertyAt("p1", updated)})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Same(t, first[0], second[0], "unchanged version marker must preserve object identity")
}

func TestMaterializer_VersionChangeRebuildsDerivedFields(t *testing.T) {
	mat := PropertyMaterializer()
	t1 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	first := mat.Materialize([]entity.Property{propertyAt("p1", t1)})

	changed := propertyAt("p1", t2)
	changed.Status = "maintenance"
	changed.UnitCounts = entity.UnitCounts{Total: 4, Occupied: 4, Vacant: 0}
	second := mat.Materialize([]entity.Property{changed})

	require.Len(t, second, 1)
	assert.NotSame(t, first[0], second[0], "changed marker must produce a new object")
	assert.Equal(t, "Maintenance", second[0].StatusLabel)
	assert.Equal(t, "orange", second[0].StatusColor)
	assert.Equal(t, 100, second[0].OccupancyPercent)
}

func TestMaterializer_EvictsVanishedIDs(t *testing.T) {
	mat := PropertyMaterializer()
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mat.Materialize([]entity.Property{propertyAt("p1", updated), propertyAt("p2", updated)})
	require.Equal(t, 2, mat.Size())

	mat.Materialize([]entity.Property{propertyAt("p2", updated)})

	assert.Equal(t, 1, mat.Size())
	_, ok := mat.Cached("p1")
	assert.False(t, ok, "id absent from the latest fetch must be evicted")
	_, ok = mat.Cached("p2")
	assert.True(t, ok)
}

func TestMaterializer_ZeroMarkerMeansAlwaysRebuilt(t *testing.T) {
	mat := PropertyMaterializer()

	// Zero UpdatedAt: no usable version marker, fallback is "always
	// changed".
	first := mat.Materialize([]entity.Property{propertyAt("p1", time.Time{})})
	second := mat.Materialize([]entity.Property{propertyAt("p1", time.Time{})})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotSame(t, first[0], second[0])
}

func TestMaterializer_NilVersionExtractorRebuilds(t *testing.T) {
	mat := NewMaterializer(
		func(s string) string { return s },
		nil,
		func(s string) *string { v := s + "!"; return &v },
	)

	first := mat.Materialize([]string{"a"})
	second := mat.Materialize([]string{"a"})
	assert.NotSame(t, first[0], second[0])
	assert.Equal(t, "a!", *second[0])
}

func TestMaterializer_Reset(t *testing.T) {
	mat := PropertyMaterializer()
	updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mat.Materialize([]entity.Property{propertyAt("p1", updated)})
	require.Equal(t, 1, mat.Size())

	mat.Reset()
	assert.Equal(t, 0, mat.Size())
}
