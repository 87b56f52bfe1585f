package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTenantAggregateRoot_EventMeta(t *testing.T) {
	tenantID := uuid.New()
	root := NewTenantAggregateRoot(tenantID)
	root.IncrementVersion()

	meta := root.EventMeta("thing.happened", "Thing")

	assert.NotEqual(t, uuid.Nil, meta.EventID())
	assert.Equal(t, "thing.happened", meta.EventType())
	assert.Equal(t, "Thing", meta.AggregateType())
	assert.Equal(t, root.ID, meta.AggregateID())
	assert.Equal(t, 2, meta.AggregateVersion())
	assert.Equal(t, tenantID, meta.TenantID())
	assert.False(t, meta.OccurredAt().IsZero())
}

func TestBaseAggregateRoot_Events(t *testing.T) {
	root := NewBaseAggregateRoot()
	first := NewEventMeta("a", AggregateRef{ID: root.ID}, uuid.New())
	second := NewEventMeta("b", AggregateRef{ID: root.ID}, uuid.New())

	root.AddDomainEvent(&first)
	root.AddDomainEvent(&second)
	require.Len(t, root.GetDomainEvents(), 2)
	assert.Equal(t, "a", root.GetDomainEvents()[0].EventType())

	root.ClearDomainEvents()
	assert.Empty(t, root.GetDomainEvents())
}

func TestTenantAggregateRoot_SetCreatedBy(t *testing.T) {
	root := NewTenantAggregateRoot(uuid.New())

	root.SetCreatedBy(uuid.Nil)
	assert.Nil(t, root.CreatedBy)

	user := uuid.New()
	root.SetCreatedBy(user)
	require.NotNil(t, root.CreatedBy)
	assert.Equal(t, user, *root.CreatedBy)
	assert.True(t, root.BelongsTo(root.TenantID))
	assert.False(t, root.BelongsTo(uuid.New()))
}
