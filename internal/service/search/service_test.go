package search

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/entity"
	"github.com/Euda1mon1a/Autonomous-Assignment-Program-Manager-sub003/internal/repository/memory"
)

func pgy(n entity.PGYLevel) *entity.PGYLevel { return &n }
func role(r entity.FacultyRole) *entity.FacultyRole { return &r }

func seedDB(t *testing.T) *memory.Database {
	t.Helper()
	db := memory.New()

	db.SeedPerson(&entity.Person{
		ID: uuid.New(), DisplayName: "Alice Resident", Email: "alice@example.org",
		Type: entity.PersonTypeResident, PGYLevel: pgy(entity.PGY2),
	})
	db.SeedPerson(&entity.Person{
		ID: uuid.New(), DisplayName: "Bob Resident", Email: "bob@example.org",
		Type: entity.PersonTypeResident, PGYLevel: pgy(entity.PGY1),
	})
	db.SeedPerson(&entity.Person{
		ID: uuid.New(), DisplayName: "Carol Faculty", Email: "carol@example.org",
		Type: entity.PersonTypeFaculty, Role: role(entity.FacultyRolePD),
		PerformsProcedures: true, SpecialtyTags: []string{"Sports Medicine > Knee"},
	})

	ctx := context.Background()
	rt := &entity.RotationTemplate{ID: uuid.New(), Name: "ICU Days", ActivityType: "icu"}
	require.NoError(t, db.RotationTemplateRepository().Create(ctx, rt))

	require.NoError(t, db.AbsenceRepository().Create(ctx, &entity.Absence{
		ID: uuid.New(), PersonID: uuid.New(), StartDate: time.Now(), EndDate: time.Now().AddDate(0, 0, 2),
		Type: entity.AbsenceVacation,
	}))

	return db
}

func TestSearchPersonsFiltersByQuery(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	resp, err := svc.Search(context.Background(), "alice", []EntityType{EntityPerson}, nil, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Alice Resident", resp.Items[0].Title)
	assert.Equal(t, EntityPerson, resp.Items[0].Type)
}

func TestSearchAppliesFacetSelection(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	selections := []FacetSelection{{FacetName: "pgy_level", Values: []string{"PGY-1"}}}
	resp, err := svc.Search(context.Background(), "", []EntityType{EntityPerson}, selections, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Bob Resident", resp.Items[0].Title)
}

func TestSearchGeneratesPGYLevelFacetOrderedAscending(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	resp, err := svc.Search(context.Background(), "", []EntityType{EntityPerson}, nil, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)

	var pgyFacet *Facet
	for i := range resp.Facets {
		if resp.Facets[i].Name == "pgy_level" {
			pgyFacet = &resp.Facets[i]
		}
	}
	require.NotNil(t, pgyFacet)
	require.Len(t, pgyFacet.Values, 2)
	assert.Equal(t, "PGY-1", pgyFacet.Values[0].Key)
	assert.Equal(t, "PGY-2", pgyFacet.Values[1].Key)
}

func TestSearchProceduresOnlyReturnsFlaggedPersons(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	resp, err := svc.Search(context.Background(), "", []EntityType{EntityProcedure}, nil, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Carol Faculty", resp.Items[0].Title)
}

func TestSearchSwapsMapsToAbsences(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	resp, err := svc.Search(context.Background(), "", []EntityType{EntitySwap}, nil, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, EntitySwap, resp.Items[0].Type)
}

func TestSearchPaginationSplitsResults(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	resp, err := svc.Search(context.Background(), "", []EntityType{EntityPerson}, nil, DefaultFacetConfig(), 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Total)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 2, resp.TotalPages)

	resp2, err := svc.Search(context.Background(), "", []EntityType{EntityPerson}, nil, DefaultFacetConfig(), 2, 2)
	require.NoError(t, err)
	assert.Len(t, resp2.Items, 1)
}

func TestSearchCacheHitShortCircuitsRepository(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())
	ctx := context.Background()

	_, err := svc.Search(ctx, "alice", []EntityType{EntityPerson}, nil, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)
	queriesAfterFirst := db.QueryCount()

	resp, err := svc.Search(ctx, "alice", []EntityType{EntityPerson}, nil, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)
	assert.True(t, resp.CacheHit)
	assert.Equal(t, queriesAfterFirst, db.QueryCount())
}

func TestSearchTracksFacetAnalyticsAfterSelection(t *testing.T) {
	db := seedDB(t)
	svc := NewService(db, NewMemoryCache())

	selections := []FacetSelection{{FacetName: "pgy_level", Values: []string{"PGY-1"}}}
	_, err := svc.Search(context.Background(), "", []EntityType{EntityPerson}, selections, DefaultFacetConfig(), 1, 20)
	require.NoError(t, err)

	analytics := svc.GetFacetAnalytics("pgy_level")
	require.NotNil(t, analytics)
	assert.Equal(t, 1, analytics.TotalSelections)
}

func TestCacheKeyIsOrderIndependentOverSelections(t *testing.T) {
	selA := []FacetSelection{
		{FacetName: "status", Values: []string{"b", "a"}},
		{FacetName: "pgy_level", Values: []string{"PGY-1"}},
	}
	selB := []FacetSelection{
		{FacetName: "pgy_level", Values: []string{"PGY-1"}},
		{FacetName: "status", Values: []string{"a", "b"}},
	}
	keyA := cacheKey("query", []EntityType{EntityPerson, EntityRotation}, selA)
	keyB := cacheKey("query", []EntityType{EntityRotation, EntityPerson}, selB)
	assert.Equal(t, keyA, keyB)
}

func TestCacheKeyDiffersOnQuery(t *testing.T) {
	keyA := cacheKey("alice", []EntityType{EntityPerson}, nil)
	keyB := cacheKey("bob", []EntityType{EntityPerson}, nil)
	assert.NotEqual(t, keyA, keyB)
}
