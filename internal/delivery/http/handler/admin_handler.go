package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/pkg/utils"
	"github.com/iot-telemetry-service/internal/usecase"
	"github.com/iot-telemetry-service/internal/usecase/dto"
)

// AdminHandler exposes maintenance operations on the telemetry store.
type AdminHandler struct {
	queryUC *usecase.DeviceQueryUseCase
	logger  *zap.Logger
}

func NewAdminHandler(queryUC *usecase.DeviceQueryUseCase, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		queryUC: queryUC,
		logger:  logger,
	}
}

// BackfillGeometry godoc
// @Summary Backfill geometry points
// @Description Derives the PostGIS geometry column from stored lon/lat for rows that do not have one yet.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.BackfillResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/admin/geometry/backfill [post]
func (h *AdminHandler) BackfillGeometry(c *fiber.Ctx) error {
	affected, err := h.queryUC.BackfillGeometry(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.BackfillResponse{AffectedRows: affected}, nil)
}

// Count godoc
// @Summary Count stored records
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.CountResponse}
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/admin/count [get]
func (h *AdminHandler) Count(c *fiber.Ctx) error {
	count, err := h.queryUC.Count(c.Context())
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.CountResponse{Count: count}, nil)
}

// Truncate godoc
// @Summary Delete all stored records
// @Description Empties the telemetry table and invalidates the query cache.
// @Tags Admin
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/admin/devices [delete]
func (h *AdminHandler) Truncate(c *fiber.Ctx) error {
	if err := h.queryUC.Truncate(c.Context()); err != nil {
		return utils.SendError(c, err)
	}

	h.logger.Info("Telemetry store truncated")
	return utils.SendSuccess(c, fiber.Map{"truncated": true}, nil)
}
