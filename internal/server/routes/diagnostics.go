package routes

import (
	"github.com/gofiber/fiber/v3"

	"github.com/kliva/kliva/internal/version"
)

// CacheInvalidator 暴露按 key 丢弃缓存条目的能力，以及缓存规模。
type CacheInvalidator interface {
	InvalidateSegment(segmentID string) bool
	InvalidateAthleteStarred(athleteID string) bool
	CachedSegments() int
	CachedStarredLists() int
}

// RegisterDiagnosticsRoutes 暴露 /-/ 前缀的版本与缓存管理接口。
func RegisterDiagnosticsRoutes(app *fiber.App, cache CacheInvalidator) {
	if app == nil {
		return
	}

	app.Get("/-/version", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"version": version.Current().String(),
			"full":    version.Full(),
			"app":     version.Current(),
		})
	})

	if cache == nil {
		return
	}

	app.Get("/-/cache", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"segments":      cache.CachedSegments(),
			"starred_lists": cache.CachedStarredLists(),
		})
	})

	app.Delete("/-/cache/segments/:id", func(c fiber.Ctx) error {
		return invalidated(c, cache.InvalidateSegment(c.Params("id")))
	})

	app.Delete("/-/cache/athletes/:id/starred", func(c fiber.Ctx) error {
		return invalidated(c, cache.InvalidateAthleteStarred(c.Params("id")))
	})
}

func invalidated(c fiber.Ctx, removed bool) error {
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "cache_entry_not_found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
