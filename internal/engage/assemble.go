package engage

import (
	"context"
	"time"

	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Assembler joins normalized rows into display-ready ViewModels. Slow-
// changing canonical lookups (organizations, category/location joins) are
// TTL-cached; tracking rows and bookmark counts never are, because another
// session can change them at any time.
type Assembler struct {
	gw    Gateway
	cache *cache.Cache
}

func NewAssembler(gw Gateway) *Assembler {
	return &Assembler{
		gw:    gw,
		cache: cache.New(2*time.Minute, 5*time.Minute),
	}
}

// Assemble builds one ViewModel per base record. A base record whose
// canonical grant or funder cannot be fully resolved is dropped — a
// ViewModel is never partially populated. Any failed fetch stage aborts
// the whole batch with an AssemblyError so callers can tell a failure
// from a legitimately empty result.
func (a *Assembler) Assemble(ctx context.Context, base []models.BaseRecord) ([]models.ViewModel, error) {
	if len(base) == 0 {
		return []models.ViewModel{}, nil
	}

	grantIDs := distinctGrantIDs(base)

	grants, err := a.gw.GrantsByIDs(ctx, grantIDs)
	if err != nil {
		return nil, &AssemblyError{Stage: "grants", Err: err}
	}
	grantByID := make(map[uuid.UUID]models.Grant, len(grants))
	for _, g := range grants {
		grantByID[g.ID] = g
	}

	orgByID, err := a.organizations(ctx, grants)
	if err != nil {
		return nil, &AssemblyError{Stage: "organizations", Err: err}
	}

	categories, err := a.tags(ctx, "cat", grantIDs, a.gw.CategoriesForGrants)
	if err != nil {
		return nil, &AssemblyError{Stage: "categories", Err: err}
	}
	locations, err := a.tags(ctx, "loc", grantIDs, a.gw.LocationsForGrants)
	if err != nil {
		return nil, &AssemblyError{Stage: "locations", Err: err}
	}

	counts, err := a.gw.SaveCounts(ctx, grantIDs)
	if err != nil {
		return nil, &AssemblyError{Stage: "counts", Err: err}
	}

	out := make([]models.ViewModel, 0, len(base))
	for _, rec := range base {
		grant, ok := grantByID[rec.BaseGrantID()]
		if !ok {
			continue
		}
		org, ok := orgByID[grant.OrganizationID]
		if !ok {
			continue
		}

		vm := models.ViewModel{
			ID:               grant.ID,
			Title:            grant.Title,
			Description:      SanitizeHTML(grant.Description),
			Summary:          HTMLToText(grant.Description),
			FundingAmount:    grant.FundingAmount,
			AmountValue:      ParseAmountValue(grant.FundingAmount),
			GrantType:        grant.GrantType,
			DueDate:          grant.DueDate,
			OrganizationID:   org.ID,
			OrganizationName: org.Name,
			OrganizationLogo: org.ImageURL,
			OrganizationSlug: org.Slug,
			Categories:       categories[grant.ID],
			Locations:        locations[grant.ID],
			SaveCount:        counts[grant.ID],
		}
		if vm.Categories == nil {
			vm.Categories = []string{}
		}
		if vm.Locations == nil {
			vm.Locations = []string{}
		}
		rec.Decorate(&vm)

		out = append(out, vm)
	}

	return out, nil
}

// Catalog assembles every grant in the store, undecorated, for the public
// listing surface.
func (a *Assembler) Catalog(ctx context.Context) ([]models.ViewModel, error) {
	grants, err := a.gw.AllGrants(ctx)
	if err != nil {
		return nil, &AssemblyError{Stage: "grants", Err: err}
	}

	records := make([]models.BaseRecord, 0, len(grants))
	for _, g := range grants {
		records = append(records, models.CatalogRecord{GrantID: g.ID})
	}

	return a.Assemble(ctx, records)
}

func distinctGrantIDs(base []models.BaseRecord) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(base))
	ids := make([]uuid.UUID, 0, len(base))
	for _, rec := range base {
		id := rec.BaseGrantID()
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

func (a *Assembler) organizations(ctx context.Context, grants []models.Grant) (map[uuid.UUID]models.Organization, error) {
	out := make(map[uuid.UUID]models.Organization)
	var missing []uuid.UUID

	for _, g := range grants {
		if _, seen := out[g.OrganizationID]; seen {
			continue
		}
		if cached, ok := a.cache.Get("org:" + g.OrganizationID.String()); ok {
			out[g.OrganizationID] = cached.(models.Organization)
			continue
		}
		missing = appendID(missing, g.OrganizationID)
	}

	if len(missing) > 0 {
		orgs, err := a.gw.OrganizationsByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, org := range orgs {
			out[org.ID] = org
			a.cache.SetDefault("org:"+org.ID.String(), org)
		}
	}

	return out, nil
}

// tags resolves category or location name lists per grant, caching per
// grant ID under the given prefix.
func (a *Assembler) tags(ctx context.Context, prefix string, grantIDs []uuid.UUID, fetch func(context.Context, []uuid.UUID) ([]models.GrantTag, error)) (map[uuid.UUID][]string, error) {
	out := make(map[uuid.UUID][]string, len(grantIDs))
	var missing []uuid.UUID

	for _, id := range grantIDs {
		if cached, ok := a.cache.Get(prefix + ":" + id.String()); ok {
			out[id] = cached.([]string)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) > 0 {
		rows, err := fetch(ctx, missing)
		if err != nil {
			return nil, err
		}
		fetched := make(map[uuid.UUID][]string, len(missing))
		for _, row := range rows {
			fetched[row.GrantID] = append(fetched[row.GrantID], row.Name)
		}
		for _, id := range missing {
			names := fetched[id]
			if names == nil {
				names = []string{}
			}
			out[id] = names
			a.cache.SetDefault(prefix+":"+id.String(), names)
		}
	}

	return out, nil
}

func appendID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
