package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/pkg/utils"
	"github.com/iot-telemetry-service/internal/usecase"
	"github.com/iot-telemetry-service/internal/usecase/dto"
)

// QueryHandler serves attribute and spatial device queries.
type QueryHandler struct {
	queryUC *usecase.DeviceQueryUseCase
	logger  *zap.Logger
}

func NewQueryHandler(queryUC *usecase.DeviceQueryUseCase, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queryUC: queryUC,
		logger:  logger,
	}
}

// Query godoc
// @Summary Query devices by attributes
// @Description Filters device records by temperature range, minimum battery, status set and region substring. Results are ordered newest first.
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.QueryRequest true "Attribute filters"
// @Success 200 {object} utils.SuccessResponse{data=dto.QueryResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/devices/query [post]
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.queryUC.QueryByAttributes(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    result.Total,
		Limit:    req.Limit,
		Offset:   req.Offset,
		TimeMSec: result.ElapsedMS,
	})
}

// Nearby godoc
// @Summary Find devices near a point
// @Description Returns devices within the given radius of a center point, closest first, with great-circle distances in kilometers.
// @Tags Query
// @Accept json
// @Produce json
// @Param request body dto.NearbyRequest true "Center point and radius"
// @Success 200 {object} utils.SuccessResponse{data=dto.NearbyResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/devices/nearby [post]
func (h *QueryHandler) Nearby(c *fiber.Ctx) error {
	var req dto.NearbyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	result, err := h.queryUC.QueryNearby(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total:    result.Total,
		TimeMSec: result.ElapsedMS,
	})
}

// List godoc
// @Summary List device positions
// @Description Returns device positions that already carry a geometry point.
// @Tags Query
// @Accept json
// @Produce json
// @Param limit query int false "Maximum number of devices" default(1000000)
// @Success 200 {object} utils.SuccessResponse{data=dto.DeviceListResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/devices [get]
func (h *QueryHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)

	result, err := h.queryUC.QueryAll(c.Context(), limit)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, result, &utils.Meta{
		Total: result.Total,
		Limit: limit,
	})
}
