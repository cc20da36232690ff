package organizations

import (
	"errors"
	"strconv"

	"geodir-backend/internal/application/activity"
	"geodir-backend/internal/application/directory"
	"geodir-backend/internal/middleware"
	"geodir-backend/internal/pkg/geo"
	"geodir-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers bundles the directory query endpoints with their dependencies.
type Handlers struct {
	Service *directory.Service
}

// ByAttributes GET /api/organizations/?name=&id=
func (h *Handlers) ByAttributes(c *fiber.Ctx) error {
	var q directory.OrganizationQuery
	q.Name = c.Query("name")
	id, ok, err := optionalUintQuery(c, "id")
	if err != nil {
		return response.Error(c, "id must be a positive integer", fiber.StatusBadRequest, nil)
	}
	if ok {
		q.ID = &id
	}

	orgs, err := h.Service.FindByAttributes(c.Context(), q)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Organizations fetched successfully", orgs, fiber.Map{"count": len(orgs)})
}

// ByActivity GET /api/organizations/activities/?name=&id=&is_parent=&max_depth=
// is_parent=true expands the activity into its descendant closure before
// matching; otherwise only the named activity counts.
func (h *Handlers) ByActivity(c *fiber.Ctx) error {
	var ref activity.Ref
	ref.Name = c.Query("name")
	id, ok, err := optionalUintQuery(c, "id")
	if err != nil {
		return response.Error(c, "id must be a positive integer", fiber.StatusBadRequest, nil)
	}
	if ok {
		ref.ID = &id
	}
	if ref.IsZero() {
		return response.Error(c, "name or id is required", fiber.StatusBadRequest, nil)
	}

	var orgs interface{}
	var count int
	if c.QueryBool("is_parent") {
		maxDepth, _, err := optionalIntQuery(c, "max_depth")
		if err != nil {
			return response.Error(c, "max_depth must be an integer", fiber.StatusBadRequest, nil)
		}
		found, err := h.Service.FindByActivityTree(c.Context(), ref, maxDepth)
		if err != nil {
			return h.fail(c, err)
		}
		orgs, count = found, len(found)
	} else {
		found, err := h.Service.FindByActivity(c.Context(), ref)
		if err != nil {
			return h.fail(c, err)
		}
		orgs, count = found, len(found)
	}
	return response.Success(c, "Organizations fetched successfully", orgs, fiber.Map{"count": count})
}

// ByBuilding GET /api/organizations/buildings/?id= or ?latitude=&longitude=&radius_km=
func (h *Handlers) ByBuilding(c *fiber.Ctx) error {
	id, ok, err := optionalUintQuery(c, "id")
	if err != nil {
		return response.Error(c, "id must be a positive integer", fiber.StatusBadRequest, nil)
	}
	if ok {
		orgs, err := h.Service.FindByBuildingID(c.Context(), id)
		if err != nil {
			return h.fail(c, err)
		}
		return response.Success(c, "Organizations fetched successfully", orgs, fiber.Map{"count": len(orgs)})
	}

	lat, latOK, latErr := optionalFloatQuery(c, "latitude")
	lon, lonOK, lonErr := optionalFloatQuery(c, "longitude")
	if latErr != nil || lonErr != nil {
		return response.Error(c, "latitude and longitude must be numbers", fiber.StatusBadRequest, nil)
	}
	if !latOK || !lonOK {
		return response.Error(c, "id or latitude and longitude are required", fiber.StatusBadRequest, nil)
	}
	center := geo.Point{Lat: lat, Lon: lon}
	radiusKm, radiusOK, err := optionalFloatQuery(c, "radius_km")
	if err != nil {
		return response.Error(c, "radius_km must be a number", fiber.StatusBadRequest, nil)
	}
	if !radiusOK {
		radiusKm = 1
	}

	orgs, err := h.Service.FindWithinRadius(c.Context(), center, radiusKm)
	if err != nil {
		return h.fail(c, err)
	}
	return response.Success(c, "Organizations fetched successfully", orgs, fiber.Map{"count": len(orgs)})
}

// fail maps service errors onto the response envelope. Invalid geo input is
// the caller's fault; a cyclic hierarchy is a data-integrity violation and is
// logged for out-of-band correction; anything else is a storage failure.
func (h *Handlers) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, geo.ErrInvalidInput):
		return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
	case errors.Is(err, activity.ErrCyclicHierarchy):
		log.Error().Str("trace_id", middleware.GetTraceID(c)).Err(err).Msg("activity hierarchy contains a cycle")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	default:
		log.Error().Str("trace_id", middleware.GetTraceID(c)).Err(err).Msg("directory query failed")
		return response.Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
	}
}

// optionalUintQuery parses a positive-integer query param; ok is false when
// the param is absent.
func optionalUintQuery(c *fiber.Ctx, name string) (uint, bool, error) {
	s := c.Query(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return uint(v), true, nil
}

// optionalIntQuery parses an integer query param; ok is false when absent.
func optionalIntQuery(c *fiber.Ctx, name string) (int, bool, error) {
	s := c.Query(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}

// optionalFloatQuery parses a float query param; ok is false when absent.
// Malformed input is an error, never a silent zero.
func optionalFloatQuery(c *fiber.Ctx, name string) (float64, bool, error) {
	s := c.Query(name)
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	return v, true, nil
}
