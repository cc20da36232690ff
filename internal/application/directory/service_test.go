package directory

import (
	"context"
	"testing"

	"geodir-backend/internal/application/activity"
	"geodir-backend/internal/domain"
	"geodir-backend/internal/pkg/geo"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDirectoryTest(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// in-memory sqlite is per-connection; keep the pool at one
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Building{},
		&domain.Organization{},
		&domain.Phone{},
		&domain.Activity{},
	))
	return &Service{DB: db}, db
}

// seedAcme inserts the Acme/Services/Cleaning fixture: Acme at
// (40.0, -75.0) tagged with "Cleaning", whose parent is "Services".
func seedAcme(t *testing.T, db *gorm.DB) domain.Organization {
	services := domain.Activity{Name: "Services"}
	require.NoError(t, db.Create(&services).Error)
	cleaning := domain.Activity{Name: "Cleaning", ParentID: &services.ID}
	require.NoError(t, db.Create(&cleaning).Error)

	building := domain.Building{Address: "1 Main St", Latitude: 40.0, Longitude: -75.0}
	require.NoError(t, db.Create(&building).Error)

	org := domain.Organization{
		Name:       "Acme",
		BuildingID: &building.ID,
		Phones:     []domain.Phone{{Number: "2-222-222"}},
		Activities: []domain.Activity{cleaning},
	}
	require.NoError(t, db.Create(&org).Error)
	return org
}

func names(orgs []domain.Organization) []string {
	out := make([]string, len(orgs))
	for i, o := range orgs {
		out[i] = o.Name
	}
	return out
}

func TestFindByAttributes(t *testing.T) {
	s, db := setupDirectoryTest(t)
	acme := seedAcme(t, db)
	require.NoError(t, db.Create(&domain.Organization{Name: "Other"}).Error)

	ctx := context.Background()

	byName, err := s.FindByAttributes(ctx, OrganizationQuery{Name: "Acme"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, acme.ID, byName[0].ID)

	byID, err := s.FindByAttributes(ctx, OrganizationQuery{ID: &acme.ID})
	require.NoError(t, err)
	require.Len(t, byID, 1)

	all, err := s.FindByAttributes(ctx, OrganizationQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := s.FindByAttributes(ctx, OrganizationQuery{Name: "Missing"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

// TestHydration_AllPathsLoadAllAssociations: every query path attaches
// phones, building and activities, never a partially-populated result.
func TestHydration_AllPathsLoadAllAssociations(t *testing.T) {
	s, db := setupDirectoryTest(t)
	seedAcme(t, db)
	ctx := context.Background()

	check := func(t *testing.T, orgs []domain.Organization, err error) {
		t.Helper()
		require.NoError(t, err)
		require.Len(t, orgs, 1)
		o := orgs[0]
		require.NotNil(t, o.Building)
		assert.Equal(t, "1 Main St", o.Building.Address)
		require.Len(t, o.Phones, 1)
		assert.Equal(t, "2-222-222", o.Phones[0].Number)
		require.Len(t, o.Activities, 1)
		assert.Equal(t, "Cleaning", o.Activities[0].Name)
	}

	orgs, err := s.FindByAttributes(ctx, OrganizationQuery{Name: "Acme"})
	check(t, orgs, err)

	orgs, err = s.FindByActivity(ctx, activity.Ref{Name: "Cleaning"})
	check(t, orgs, err)

	orgs, err = s.FindByActivityTree(ctx, activity.Ref{Name: "Services"}, 0)
	check(t, orgs, err)

	orgs, err = s.FindByBuildingID(ctx, *orgs[0].BuildingID)
	check(t, orgs, err)

	orgs, err = s.FindWithinRadius(ctx, geo.Point{Lat: 40.0, Lon: -75.0}, 1)
	check(t, orgs, err)
}

// TestActivityTreeVsExact: the tree query walks descendants, the exact query
// does not.
func TestActivityTreeVsExact(t *testing.T) {
	s, db := setupDirectoryTest(t)
	seedAcme(t, db)
	ctx := context.Background()

	tree, err := s.FindByActivityTree(ctx, activity.Ref{Name: "Services"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names(tree))

	exactChild, err := s.FindByActivity(ctx, activity.Ref{Name: "Cleaning"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme"}, names(exactChild))

	exactParent, err := s.FindByActivity(ctx, activity.Ref{Name: "Services"})
	require.NoError(t, err)
	assert.Empty(t, exactParent)
}

func TestFindByActivity_UnknownIsEmptyNotError(t *testing.T) {
	s, db := setupDirectoryTest(t)
	seedAcme(t, db)
	ctx := context.Background()

	orgs, err := s.FindByActivity(ctx, activity.Ref{Name: "Nope"})
	require.NoError(t, err)
	assert.Empty(t, orgs)

	orgs, err = s.FindByActivityTree(ctx, activity.Ref{Name: "Nope"}, 0)
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestFindByActivityTree_DistinctOrganizations(t *testing.T) {
	s, db := setupDirectoryTest(t)
	ctx := context.Background()

	root := domain.Activity{Name: "Trade"}
	require.NoError(t, db.Create(&root).Error)
	retail := domain.Activity{Name: "Retail", ParentID: &root.ID}
	wholesale := domain.Activity{Name: "Wholesale", ParentID: &root.ID}
	require.NoError(t, db.Create(&retail).Error)
	require.NoError(t, db.Create(&wholesale).Error)

	// Tagged with two activities in the same subtree; must appear once.
	org := domain.Organization{Name: "MegaMart", Activities: []domain.Activity{retail, wholesale}}
	require.NoError(t, db.Create(&org).Error)

	orgs, err := s.FindByActivityTree(ctx, activity.Ref{Name: "Trade"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"MegaMart"}, names(orgs))
}

func TestFindByBuildingID_EmptyIsNotError(t *testing.T) {
	s, db := setupDirectoryTest(t)
	seedAcme(t, db)

	orgs, err := s.FindByBuildingID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Empty(t, orgs)
}

func TestFindWithinRadius_Scenario(t *testing.T) {
	s, db := setupDirectoryTest(t)
	seedAcme(t, db) // 1 Main St at exactly the center

	// ~0.5 km north of center
	near := domain.Building{Address: "5 Oak Ave", Latitude: 40.0045, Longitude: -75.0}
	require.NoError(t, db.Create(&near).Error)
	require.NoError(t, db.Create(&domain.Organization{Name: "NearOrg", BuildingID: &near.ID}).Error)

	// ~50 km north of center
	far := domain.Building{Address: "99 Far Rd", Latitude: 40.45, Longitude: -75.0}
	require.NoError(t, db.Create(&far).Error)
	require.NoError(t, db.Create(&domain.Organization{Name: "FarOrg", BuildingID: &far.ID}).Error)

	orgs, err := s.FindWithinRadius(context.Background(), geo.Point{Lat: 40.0, Lon: -75.0}, 1)
	require.NoError(t, err)
	// Ordered ascending by building distance: Acme sits on the center.
	assert.Equal(t, []string{"Acme", "NearOrg"}, names(orgs))
}

// TestFindWithinRadius_AcrossAntimeridian: the SQL pre-filter must not drop a
// building just across the ±180 line from the center.
func TestFindWithinRadius_AcrossAntimeridian(t *testing.T) {
	s, db := setupDirectoryTest(t)

	farSide := domain.Building{Address: "1 Date Line Rd", Latitude: 0, Longitude: -179.95}
	require.NoError(t, db.Create(&farSide).Error)
	require.NoError(t, db.Create(&domain.Organization{Name: "FarSideOrg", BuildingID: &farSide.ID}).Error)

	away := domain.Building{Address: "2 Distant St", Latitude: 0, Longitude: 170.0}
	require.NoError(t, db.Create(&away).Error)
	require.NoError(t, db.Create(&domain.Organization{Name: "AwayOrg", BuildingID: &away.ID}).Error)

	orgs, err := s.FindWithinRadius(context.Background(), geo.Point{Lat: 0, Lon: 179.95}, 25)
	require.NoError(t, err)
	assert.Equal(t, []string{"FarSideOrg"}, names(orgs))
}

func TestFindWithinRadius_InvalidInput(t *testing.T) {
	s, _ := setupDirectoryTest(t)

	_, err := s.FindWithinRadius(context.Background(), geo.Point{Lat: 40, Lon: -75}, 0)
	assert.ErrorIs(t, err, geo.ErrInvalidInput)

	_, err = s.FindWithinRadius(context.Background(), geo.Point{Lat: 95, Lon: -75}, 1)
	assert.ErrorIs(t, err, geo.ErrInvalidInput)
}

func TestFindByActivityTree_CyclePropagates(t *testing.T) {
	s, db := setupDirectoryTest(t)
	a := domain.Activity{Name: "A"}
	require.NoError(t, db.Create(&a).Error)
	b := domain.Activity{Name: "B", ParentID: &a.ID}
	require.NoError(t, db.Create(&b).Error)
	require.NoError(t, db.Model(&domain.Activity{}).Where("id = ?", a.ID).Update("parent_id", b.ID).Error)

	_, err := s.FindByActivityTree(context.Background(), activity.Ref{Name: "A"}, 0)
	assert.ErrorIs(t, err, activity.ErrCyclicHierarchy)
}
