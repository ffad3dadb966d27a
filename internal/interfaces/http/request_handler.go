package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/pulltag"
	"github.com/jhoicas/roofing-ops/internal/application/report"
	"github.com/jhoicas/roofing-ops/internal/domain/entity"
)

// RequestHandler groups pending (job, lot) pairs into request batches.
type RequestHandler struct {
	uc      *pulltag.RequestUseCase
	reports *report.UseCase
}

// NewRequestHandler builds the handler.
func NewRequestHandler(uc *pulltag.RequestUseCase, reports *report.UseCase) *RequestHandler {
	return &RequestHandler{uc: uc, reports: reports}
}

// Preview godoc
// @Summary      Classify (job, lot) pairs before requesting
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.RequestBatchRequest  true  "pairs"
// @Success      200   {array}   pulltag.PairResult
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/requests/preview [post]
func (h *RequestHandler) Preview(c *fiber.Ctx) error {
	var in dto.RequestBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Preview(c.Context(), in.Pairs)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(out)
}

// Submit godoc
// @Summary      Request pending pairs under a new batch
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.RequestBatchRequest  true  "pairs"
// @Success      201   {object}  pulltag.SubmitResult
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.PartialWriteResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Submit(c *fiber.Ctx) error {
	var in dto.RequestBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Submit(c.Context(), in.Pairs, GetUsername(c))
	if err != nil {
		return writeError(c, err, out)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Batch godoc
// @Summary      Pulltags of a request batch
// @Tags         requests
// @Produce      json
// @Security     Bearer
// @Param        id   path  string  true  "Batch ID"
// @Success      200  {object}  dto.ListResponse[dto.PulltagResponse]
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Batch(c *fiber.Ctx) error {
	tags, err := h.uc.BatchPulltags(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err, nil)
	}
	out := make([]dto.PulltagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.ToPulltagResponse(t))
	}
	return c.JSON(dto.NewList(out))
}

// Summary godoc
// @Summary      Request batch summary PDF
// @Tags         requests
// @Produce      application/pdf
// @Security     Bearer
// @Param        id   path  string  true  "Batch ID"
// @Success      200  {file}  binary
// @Router       /api/requests/{id}/summary.pdf [get]
func (h *RequestHandler) Summary(c *fiber.Ctx) error {
	id := c.Params("id")
	data, err := h.reports.RequestSummary(c.Context(), id)
	if err != nil {
		return writeError(c, err, nil)
	}
	return sendFile(c, "request-"+id+".pdf", "application/pdf", data)
}

// Recent godoc
// @Summary      Caller's most recent request batches
// @Tags         requests
// @Produce      json
// @Security     Bearer
// @Param        limit  query  int  false  "max batches"
// @Success      200    {object}  dto.ListResponse[string]
// @Router       /api/requests/recent [get]
func (h *RequestHandler) Recent(c *fiber.Ctx) error {
	ids, err := h.uc.RecentBatches(c.Context(), GetUsername(c), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(ids))
}

// Find godoc
// @Summary      Batch id of a requested (job, lot)
// @Tags         requests
// @Produce      json
// @Security     Bearer
// @Param        job  query  string  true  "Job number"
// @Param        lot  query  string  true  "Lot number"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/find [get]
func (h *RequestHandler) Find(c *fiber.Ctx) error {
	id, err := h.uc.FindBatch(c.Context(), entity.JobLot{JobNumber: c.Query("job"), LotNumber: c.Query("lot")})
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(fiber.Map{"batch_id": id})
}

// Kittable godoc
// @Summary      Batches with rows still waiting for kitting
// @Tags         kitting
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  dto.ListResponse[string]
// @Router       /api/kitting/batches [get]
func (h *RequestHandler) Kittable(c *fiber.Ctx) error {
	ids, err := h.uc.KittableBatches(c.Context())
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(ids))
}
