package routes

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/kliva/kliva/internal/segments"
	"github.com/kliva/kliva/internal/settings"
	"github.com/kliva/kliva/internal/strava"
)

// SegmentReader 是路由层依赖的分段查询能力，测试中可替换为假实现。
type SegmentReader interface {
	GetSegment(ctx context.Context, segmentID string) (*segments.Segment, error)
	GetStarredSegments(ctx context.Context) ([]segments.SegmentSummary, error)
	GetAthleteStarredSegments(ctx context.Context, athleteID string) ([]segments.SegmentSummary, error)
}

// RegisterSegmentRoutes 暴露分段详情与收藏列表接口。
func RegisterSegmentRoutes(app *fiber.App, reader SegmentReader) {
	if app == nil || reader == nil {
		return
	}

	app.Get("/segments/:id", func(c fiber.Ctx) error {
		segment, err := reader.GetSegment(c.Context(), c.Params("id"))
		if err != nil {
			return writeFetchError(c, err)
		}
		return c.JSON(segment)
	})

	app.Get("/athletes/:id/segments/starred", func(c fiber.Ctx) error {
		list, err := reader.GetAthleteStarredSegments(c.Context(), c.Params("id"))
		if err != nil {
			return writeFetchError(c, err)
		}
		return c.JSON(list)
	})

	app.Get("/athlete/segments/starred", func(c fiber.Ctx) error {
		list, err := reader.GetStarredSegments(c.Context())
		if err != nil {
			return writeFetchError(c, err)
		}
		return c.JSON(list)
	})
}

// writeFetchError 将错误类别映射为 HTTP 状态与稳定的错误码。
func writeFetchError(c fiber.Ctx, err error) error {
	status, code := classify(err)
	return c.Status(status).JSON(fiber.Map{"error": code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, segments.ErrInvalidID):
		return fiber.StatusBadRequest, "id_required"
	case errors.Is(err, settings.ErrNoAccessToken):
		return fiber.StatusUnauthorized, "access_token_missing"
	case errors.Is(err, strava.ErrUnauthorized):
		return fiber.StatusUnauthorized, "upstream_unauthorized"
	case errors.Is(err, strava.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, strava.ErrMalformed):
		return fiber.StatusBadGateway, "upstream_malformed"
	case errors.Is(err, strava.ErrTransport):
		return fiber.StatusBadGateway, "upstream_unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout, "request_cancelled"
	default:
		return fiber.StatusBadGateway, "upstream_error"
	}
}
