package directory

import (
	"context"
	"sort"

	"geodir-backend/internal/application/activity"
	"geodir-backend/internal/domain"
	"geodir-backend/internal/pkg/geo"

	"gorm.io/gorm"
)

// Service is the single entry point translating query intents into
// eagerly-loaded organization result sets. All operations are read-only and
// run inside a per-request transaction: a failed read rolls back before the
// storage error propagates, so no locks or snapshots are leaked.
type Service struct {
	DB *gorm.DB
}

// OrganizationQuery carries optional exact-match criteria; absent fields
// impose no constraint.
type OrganizationQuery struct {
	ID   *uint
	Name string
}

// hydrated attaches phones, building and activities. Every query path loads
// all three so callers never see a partially-populated organization.
func hydrated(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Phones").
		Preload("Building").
		Preload("Activities")
}

// FindByAttributes filters organizations by whichever of id/name are present.
func (s *Service) FindByAttributes(ctx context.Context, q OrganizationQuery) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := hydrated(tx)
		if q.ID != nil {
			scope = scope.Where("organizations.id = ?", *q.ID)
		}
		if q.Name != "" {
			scope = scope.Where("organizations.name = ?", q.Name)
		}
		return scope.Find(&orgs).Error
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindByActivity returns organizations tagged with the given activity only,
// no descendants. An unknown activity yields an empty set.
func (s *Service) FindByActivity(ctx context.Context, ref activity.Ref) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids, err := matchActivityIDs(tx, ref)
		if err != nil {
			return err
		}
		return findByActivityIDs(tx, ids, &orgs)
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindByActivityTree expands ref into its descendant closure (bounded by
// maxDepth, see activity.DefaultMaxDepth) and returns every organization
// linked to any activity in it.
func (s *Service) FindByActivityTree(ctx context.Context, ref activity.Ref, maxDepth int) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		resolver := &activity.Resolver{DB: tx}
		closure, err := resolver.DescendantClosure(ctx, ref, maxDepth)
		if err != nil {
			return err
		}
		ids := make([]uint, 0, len(closure))
		for _, a := range closure {
			ids = append(ids, a.ID)
		}
		return findByActivityIDs(tx, ids, &orgs)
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindByBuildingID returns all organizations housed in the given building.
func (s *Service) FindByBuildingID(ctx context.Context, buildingID uint) ([]domain.Organization, error) {
	var orgs []domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return hydrated(tx).
			Where("organizations.building_id = ?", buildingID).
			Find(&orgs).Error
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindWithinRadius returns organizations whose building lies within radiusKm
// great-circle distance of center. Buildings are narrowed with an
// index-friendly bounding-box query first, then the exact haversine test
// decides membership. Results are ordered by ascending building distance.
func (s *Service) FindWithinRadius(ctx context.Context, center geo.Point, radiusKm float64) ([]domain.Organization, error) {
	if err := geo.Validate(center, radiusKm); err != nil {
		return nil, err
	}

	var orgs []domain.Organization
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		box := geo.BoundingBox(center, radiusKm)
		scope := tx.Where("latitude BETWEEN ? AND ?", box.MinLat, box.MaxLat)
		if box.WrapsLon() {
			// Box crosses the antimeridian: two disjoint longitude ranges.
			scope = scope.Where("longitude >= ? OR longitude <= ?", box.MinLon, box.MaxLon)
		} else {
			scope = scope.Where("longitude BETWEEN ? AND ?", box.MinLon, box.MaxLon)
		}
		var buildings []domain.Building
		if err := scope.Find(&buildings).Error; err != nil {
			return err
		}

		points := make([]geo.Point, len(buildings))
		for i, b := range buildings {
			points[i] = geo.Point{Lat: b.Latitude, Lon: b.Longitude}
		}
		matches, err := geo.FilterWithinRadius(center, radiusKm, points)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			orgs = []domain.Organization{}
			return nil
		}

		buildingIDs := make([]uint, len(matches))
		rank := make(map[uint]int, len(matches))
		for i, m := range matches {
			id := buildings[m.Index].ID
			buildingIDs[i] = id
			rank[id] = i
		}

		if err := hydrated(tx).
			Where("organizations.building_id IN ?", buildingIDs).
			Find(&orgs).Error; err != nil {
			return err
		}
		sort.SliceStable(orgs, func(i, j int) bool {
			return rank[derefBuildingID(orgs[i])] < rank[derefBuildingID(orgs[j])]
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orgs, nil
}

func derefBuildingID(o domain.Organization) uint {
	if o.BuildingID == nil {
		return 0
	}
	return *o.BuildingID
}

// matchActivityIDs returns the ids of activities matching ref exactly.
func matchActivityIDs(tx *gorm.DB, ref activity.Ref) ([]uint, error) {
	if ref.IsZero() {
		return nil, nil
	}
	scope := tx.Model(&domain.Activity{})
	if ref.ID != nil {
		scope = scope.Where("id = ?", *ref.ID)
	}
	if ref.Name != "" {
		scope = scope.Where("name = ?", ref.Name)
	}
	var ids []uint
	if err := scope.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// findByActivityIDs loads every distinct organization linked to any of the
// given activities through the organization_activity bridge.
func findByActivityIDs(tx *gorm.DB, activityIDs []uint, out *[]domain.Organization) error {
	if len(activityIDs) == 0 {
		*out = []domain.Organization{}
		return nil
	}
	sub := tx.Session(&gorm.Session{NewDB: true}).
		Table("organization_activity").
		Select("organization_id").
		Where("activity_id IN ?", activityIDs)
	return hydrated(tx).
		Where("organizations.id IN (?)", sub).
		Find(out).Error
}
