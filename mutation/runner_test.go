package mutation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propkit/client-go/entity"
	"github.com/propkit/client-go/invalidation"
	"github.com/propkit/client-go/pkg/testsupport"
	"github.com/propkit/client-go/querykeys"
)

type createUnitInput struct {
	PropertyID string
	Label      string
}

func newRunner(qc *testsupport.RecordingCache) *Runner {
	return NewRunner(invalidation.NewRouter(qc), nil)
}

func TestRun_InvalidatesOnSuccess(t *testing.T) {
	qc := testsupport.NewRecordingCache()
	runner := newRunner(qc)

	exec := func(_ context.Context, in createUnitInput) (entity.Unit, error) {
		return entity.Unit{ID: "u-new", PropertyID: in.PropertyID, Label: in.Label}, nil
	}

	out, err := Run(context.Background(), runner, createUnitInput{PropertyID: "p1", Label: "3B"}, exec,
		Extractors[createUnitInput, entity.Unit]{
			Kind: entity.KindUnit,
			EntityID: func(_ createUnitInput, out entity.Unit) string {
				return out.ID
			},
			Parents: func(in createUnitInput, out entity.Unit) entity.ParentIDs {
				return entity.ParentIDs{PropertyID: Coalesce(out.PropertyID, in.PropertyID)}
			},
		})

	require.NoError(t, err)
	assert.Equal(t, "u-new", out.ID)

	invalidated := qc.InvalidatedStrings()
	assert.Contains(t, invalidated, querykeys.UnitDetail("u-new").String())
	assert.Contains(t, invalidated, querykeys.PropertyDetail("p1").String())
	assert.Contains(t, invalidated, querykeys.UnitListAll().String())
}

func TestRun_NoInvalidationOnFailure(t *testing.T) {
	qc := testsupport.NewRecordingCache()
	runner := newRunner(qc)

	wantErr := errors.New("422: label already taken")
	exec := func(context.Context, createUnitInput) (entity.Unit, error) {
		return entity.Unit{}, wantErr
	}

	_, err := Run(context.Background(), runner, createUnitInput{PropertyID: "p1"}, exec,
		Extractors[createUnitInput, entity.Unit]{Kind: entity.KindUnit})

	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, qc.Invalidated(), "failed mutation must not invalidate anything")
}

func TestRun_ResponseIDTakesPrecedence(t *testing.T) {
	qc := testsupport.NewRecordingCache()
	runner := newRunner(qc)

	type updateInput struct{ ID string }

	exec := func(context.Context, updateInput) (entity.Property, error) {
		// Server canonicalises the id.
		return entity.Property{ID: "p-server"}, nil
	}

	_, err := Run(context.Background(), runner, updateInput{ID: "p-client"}, exec,
		Extractors[updateInput, entity.Property]{
			Kind: entity.KindProperty,
			EntityID: func(in updateInput, out entity.Property) string {
				return Coalesce(out.ID, in.ID)
			},
		})
	require.NoError(t, err)

	invalidated := qc.InvalidatedStrings()
	assert.Contains(t, invalidated, querykeys.PropertyDetail("p-server").String())
	assert.NotContains(t, invalidated, querykeys.PropertyDetail("p-client").String())
}

func TestRun_MissingExtractorsFallBackToKindWide(t *testing.T) {
	qc := testsupport.NewRecordingCache()
	runner := newRunner(qc)

	exec := func(context.Context, struct{}) (struct{}, error) { return struct{}{}, nil }

	_, err := Run(context.Background(), runner, struct{}{}, exec,
		Extractors[struct{}, struct{}]{Kind: entity.KindNotification})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		querykeys.NotificationList().String(),
		querykeys.NotificationUnreadCount().String(),
	}, qc.InvalidatedStrings())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "a", Coalesce("a", "b"))
	assert.Equal(t, "b", Coalesce("", "b"))
	assert.Equal(t, "", Coalesce("", ""))
	assert.Equal(t, "", Coalesce())
}
