package engage

import (
	"context"
	"fmt"

	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
)

// ResolveScope decides whether the actor's tracking records belong to a
// linked organization or to the actor individually. It must be called
// exactly once per operation; the result is passed explicitly through
// every subsequent read and write, never re-derived mid-flow.
func ResolveScope(ctx context.Context, gw Gateway, actorID uuid.UUID) (models.Scope, error) {
	org, err := gw.AdminOrganization(ctx, actorID)
	if err != nil {
		return models.Scope{}, fmt.Errorf("scope resolution failed: %w", err)
	}
	if org != nil {
		return models.OrganizationScope(org.ID), nil
	}
	return models.IndividualScope(actorID), nil
}
