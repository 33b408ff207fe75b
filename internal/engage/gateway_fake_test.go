package engage

import (
	"context"
	"fmt"
	"time"

	"github.com/david/grant-tracker/internal/models"
	"github.com/google/uuid"
)

// fakeGateway is an in-memory Gateway with the same error contract as the
// pgx store: uniqueness violations surface as ErrDuplicate, deletes of
// absent rows as ErrNotFound. failStage forces one named stage to fail
// and insertErr forces tracking inserts to fail.
type fakeGateway struct {
	grants    map[uuid.UUID]models.Grant
	orgs      map[uuid.UUID]models.Organization
	cats      map[uuid.UUID][]string
	locs      map[uuid.UUID][]string
	saved     map[string]models.SavedRecord
	apps      map[string]models.ApplicationRecord
	awards    map[string]models.AwardRecord
	adminOrg  map[uuid.UUID]uuid.UUID
	failStage map[string]error
	insertErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		grants:    map[uuid.UUID]models.Grant{},
		orgs:      map[uuid.UUID]models.Organization{},
		cats:      map[uuid.UUID][]string{},
		locs:      map[uuid.UUID][]string{},
		saved:     map[string]models.SavedRecord{},
		apps:      map[string]models.ApplicationRecord{},
		awards:    map[string]models.AwardRecord{},
		adminOrg:  map[uuid.UUID]uuid.UUID{},
		failStage: map[string]error{},
	}
}

func (f *fakeGateway) addGrant(title string, due *time.Time, categories, locations []string) models.Grant {
	org := models.Organization{ID: uuid.New(), Name: title + " Funder", Slug: "funder", ImageURL: "logo.png"}
	f.orgs[org.ID] = org

	grant := models.Grant{
		ID:             uuid.New(),
		Title:          title,
		Description:    "<p>About " + title + "</p>",
		FundingAmount:  "Up to $50,000",
		GrantType:      "foundation",
		DueDate:        due,
		OrganizationID: org.ID,
	}
	f.grants[grant.ID] = grant
	f.cats[grant.ID] = categories
	f.locs[grant.ID] = locations
	return grant
}

func savedKey(grantID, actorID uuid.UUID) string {
	return grantID.String() + "|" + actorID.String()
}

func scopeKey(grantID uuid.UUID, scope models.Scope) string {
	return fmt.Sprintf("%s|%s|%s", grantID, scope.Kind, scope.ID)
}

func (f *fakeGateway) AllGrants(context.Context) ([]models.Grant, error) {
	if err := f.failStage["grants"]; err != nil {
		return nil, err
	}
	out := make([]models.Grant, 0, len(f.grants))
	for _, g := range f.grants {
		out = append(out, g)
	}
	return out, nil
}

func (f *fakeGateway) GrantsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Grant, error) {
	if err := f.failStage["grants"]; err != nil {
		return nil, err
	}
	var out []models.Grant
	for _, id := range ids {
		if g, ok := f.grants[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGateway) OrganizationsByIDs(_ context.Context, ids []uuid.UUID) ([]models.Organization, error) {
	if err := f.failStage["organizations"]; err != nil {
		return nil, err
	}
	var out []models.Organization
	for _, id := range ids {
		if org, ok := f.orgs[id]; ok {
			out = append(out, org)
		}
	}
	return out, nil
}

func (f *fakeGateway) AllOrganizations(context.Context) ([]models.Organization, error) {
	out := make([]models.Organization, 0, len(f.orgs))
	for _, org := range f.orgs {
		out = append(out, org)
	}
	return out, nil
}

func (f *fakeGateway) CategoriesForGrants(_ context.Context, grantIDs []uuid.UUID) ([]models.GrantTag, error) {
	if err := f.failStage["categories"]; err != nil {
		return nil, err
	}
	return f.tagRows(f.cats, grantIDs), nil
}

func (f *fakeGateway) LocationsForGrants(_ context.Context, grantIDs []uuid.UUID) ([]models.GrantTag, error) {
	if err := f.failStage["locations"]; err != nil {
		return nil, err
	}
	return f.tagRows(f.locs, grantIDs), nil
}

func (f *fakeGateway) tagRows(src map[uuid.UUID][]string, grantIDs []uuid.UUID) []models.GrantTag {
	var out []models.GrantTag
	for _, id := range grantIDs {
		for _, name := range src[id] {
			out = append(out, models.GrantTag{GrantID: id, Name: name})
		}
	}
	return out
}

func (f *fakeGateway) SaveCounts(_ context.Context, grantIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	if err := f.failStage["counts"]; err != nil {
		return nil, err
	}
	counts := map[uuid.UUID]int{}
	for _, rec := range f.saved {
		counts[rec.GrantID]++
	}
	out := map[uuid.UUID]int{}
	for _, id := range grantIDs {
		out[id] = counts[id]
	}
	return out, nil
}

func (f *fakeGateway) SavedByActor(_ context.Context, actorID uuid.UUID) ([]models.SavedRecord, error) {
	var out []models.SavedRecord
	for _, rec := range f.saved {
		if rec.ActorID == actorID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeGateway) ApplicationsByScope(_ context.Context, scope models.Scope) ([]models.ApplicationRecord, error) {
	var out []models.ApplicationRecord
	for _, rec := range f.apps {
		if rec.Scope == scope {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeGateway) AwardsByScope(_ context.Context, scope models.Scope) ([]models.AwardRecord, error) {
	var out []models.AwardRecord
	for _, rec := range f.awards {
		if rec.Scope == scope {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeGateway) InsertSaved(_ context.Context, grantID, actorID uuid.UUID) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	key := savedKey(grantID, actorID)
	if _, exists := f.saved[key]; exists {
		return ErrDuplicate
	}
	f.saved[key] = models.SavedRecord{GrantID: grantID, ActorID: actorID, CreatedAt: time.Now().UTC()}
	return nil
}

func (f *fakeGateway) DeleteSaved(_ context.Context, grantID, actorID uuid.UUID) error {
	key := savedKey(grantID, actorID)
	if _, exists := f.saved[key]; !exists {
		return ErrNotFound
	}
	delete(f.saved, key)
	return nil
}

func (f *fakeGateway) InsertApplication(_ context.Context, rec models.ApplicationRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	key := scopeKey(rec.GrantID, rec.Scope)
	if _, exists := f.apps[key]; exists {
		return ErrDuplicate
	}
	f.apps[key] = rec
	return nil
}

func (f *fakeGateway) DeleteApplication(_ context.Context, grantID uuid.UUID, scope models.Scope) error {
	key := scopeKey(grantID, scope)
	if _, exists := f.apps[key]; !exists {
		return ErrNotFound
	}
	delete(f.apps, key)
	return nil
}

func (f *fakeGateway) InsertAward(_ context.Context, rec models.AwardRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	key := scopeKey(rec.GrantID, rec.Scope)
	if _, exists := f.awards[key]; exists {
		return ErrDuplicate
	}
	f.awards[key] = rec
	return nil
}

func (f *fakeGateway) DeleteAward(_ context.Context, grantID uuid.UUID, scope models.Scope) error {
	key := scopeKey(grantID, scope)
	if _, exists := f.awards[key]; !exists {
		return ErrNotFound
	}
	delete(f.awards, key)
	return nil
}

func (f *fakeGateway) AdminOrganization(_ context.Context, actorID uuid.UUID) (*models.Organization, error) {
	if err := f.failStage["admin_org"]; err != nil {
		return nil, err
	}
	orgID, ok := f.adminOrg[actorID]
	if !ok {
		return nil, nil
	}
	org := f.orgs[orgID]
	return &org, nil
}
