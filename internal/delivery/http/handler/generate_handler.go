package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/iot-telemetry-service/internal/pkg/utils"
	"github.com/iot-telemetry-service/internal/usecase"
	"github.com/iot-telemetry-service/internal/usecase/dto"
)

// GenerateHandler drives the synthesis-then-ingest pipeline.
type GenerateHandler struct {
	generationUC *usecase.GenerationUseCase
	ingestionUC  *usecase.IngestionUseCase
	logger       *zap.Logger
}

func NewGenerateHandler(
	generationUC *usecase.GenerationUseCase,
	ingestionUC *usecase.IngestionUseCase,
	logger *zap.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		generationUC: generationUC,
		ingestionUC:  ingestionUC,
		logger:       logger,
	}
}

// Generate godoc
// @Summary Generate and ingest synthetic telemetry
// @Description Synthesizes the requested number of device records with population-weighted locations and bulk-inserts them in chunks. Returns the ingestion report and an optional preview of the generated records.
// @Tags Generate
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "Generation parameters"
// @Success 200 {object} utils.SuccessResponse{data=dto.GenerateResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/devices/generate [post]
func (h *GenerateHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	records, err := h.generationUC.Generate(c.Context(), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	report, err := h.ingestionUC.Ingest(c.Context(), records, req.WithNotes)
	if err != nil {
		h.logger.Error("Ingestion failed",
			zap.Int("generated", len(records)),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	resp := dto.GenerateResponse{
		Generated: len(records),
		Report:    *report,
	}
	if req.PreviewCount > 0 {
		n := req.PreviewCount
		if n > len(records) {
			n = len(records)
		}
		resp.Preview = records[:n]
	}

	return utils.SendSuccess(c, resp, &utils.Meta{
		Total:    report.Committed,
		TimeMSec: report.ElapsedMS,
	})
}
