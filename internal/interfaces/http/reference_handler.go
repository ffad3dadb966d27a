package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/roofing-ops/internal/application/dto"
	"github.com/jhoicas/roofing-ops/internal/application/usecase"
)

// ReferenceHandler maintains the items master, roof type codes and community rules.
type ReferenceHandler struct {
	items       *usecase.ItemUseCase
	roofTypes   *usecase.RoofTypeUseCase
	communities *usecase.CommunityUseCase
}

// NewReferenceHandler builds the handler.
func NewReferenceHandler(items *usecase.ItemUseCase, roofTypes *usecase.RoofTypeUseCase, communities *usecase.CommunityUseCase) *ReferenceHandler {
	return &ReferenceHandler{items: items, roofTypes: roofTypes, communities: communities}
}

// ListItems godoc
// @Summary      List items master
// @Tags         reference
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  dto.ListResponse[dto.ItemResponse]
// @Router       /api/items [get]
func (h *ReferenceHandler) ListItems(c *fiber.Ctx) error {
	list, err := h.items.List(c.Context())
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(list))
}

// CreateItem godoc
// @Summary      Create item
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.ItemRequest  true  "item"
// @Success      201   {object}  dto.ItemResponse
// @Router       /api/items [post]
func (h *ReferenceHandler) CreateItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.items.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateItem godoc
// @Summary      Update item
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        code  path  string           true  "Item code"
// @Param        body  body  dto.ItemRequest  true  "item"
// @Success      200   {object}  dto.ItemResponse
// @Router       /api/items/{code} [put]
func (h *ReferenceHandler) UpdateItem(c *fiber.Ctx) error {
	var in dto.ItemRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.items.Update(c.Context(), c.Params("code"), in)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(out)
}

// DeleteItem godoc
// @Summary      Delete item
// @Tags         reference
// @Security     Bearer
// @Param        code  path  string  true  "Item code"
// @Success      204
// @Router       /api/items/{code} [delete]
func (h *ReferenceHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.items.Delete(c.Context(), c.Params("code")); err != nil {
		return writeError(c, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListRoofTypes godoc
// @Summary      List roof type codes in match order
// @Tags         reference
// @Produce      json
// @Security     Bearer
// @Success      200  {object}  dto.ListResponse[dto.RoofTypeResponse]
// @Router       /api/roof-types [get]
func (h *ReferenceHandler) ListRoofTypes(c *fiber.Ctx) error {
	list, err := h.roofTypes.List(c.Context())
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(list))
}

// CreateRoofType godoc
// @Summary      Add roof type code
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.RoofTypeRequest  true  "pair"
// @Success      201   {object}  dto.RoofTypeResponse
// @Router       /api/roof-types [post]
func (h *ReferenceHandler) CreateRoofType(c *fiber.Ctx) error {
	var in dto.RoofTypeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.roofTypes.Create(c.Context(), in)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// DeleteRoofType godoc
// @Summary      Remove roof type code
// @Tags         reference
// @Security     Bearer
// @Param        roof_type  query  string  true  "Roof type"
// @Param        cost_code  query  string  true  "Cost code"
// @Success      204
// @Router       /api/roof-types [delete]
func (h *ReferenceHandler) DeleteRoofType(c *fiber.Ctx) error {
	in := dto.RoofTypeRequest{RoofType: c.Query("roof_type"), CostCode: c.Query("cost_code")}
	if err := h.roofTypes.Delete(c.Context(), in); err != nil {
		return writeError(c, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// SearchCommunities godoc
// @Summary      Search community rules
// @Tags         reference
// @Produce      json
// @Security     Bearer
// @Param        q      query  string  false  "job number, roof type or item code fragment"
// @Param        limit  query  int     false  "max rows"
// @Success      200    {object}  dto.ListResponse[dto.CommunityRuleResponse]
// @Router       /api/communities [get]
func (h *ReferenceHandler) SearchCommunities(c *fiber.Ctx) error {
	list, err := h.communities.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 0))
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(dto.NewList(list))
}

// CreateCommunity godoc
// @Summary      Create community rule
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        body  body  dto.CommunityRuleRequest  true  "rule"
// @Success      201   {object}  dto.CommunityRuleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/communities [post]
func (h *ReferenceHandler) CreateCommunity(c *fiber.Ctx) error {
	return h.saveCommunity(c, "", fiber.StatusCreated)
}

// UpdateCommunity godoc
// @Summary      Replace community rule
// @Tags         reference
// @Accept       json
// @Produce      json
// @Security     Bearer
// @Param        id    path  string                    true  "Rule ID"
// @Param        body  body  dto.CommunityRuleRequest  true  "rule"
// @Success      200   {object}  dto.CommunityRuleResponse
// @Router       /api/communities/{id} [put]
func (h *ReferenceHandler) UpdateCommunity(c *fiber.Ctx) error {
	return h.saveCommunity(c, c.Params("id"), fiber.StatusOK)
}

func (h *ReferenceHandler) saveCommunity(c *fiber.Ctx, id string, status int) error {
	var in dto.CommunityRuleRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.communities.Save(c.Context(), id, in)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.Status(status).JSON(out)
}

// DeleteCommunity godoc
// @Summary      Delete community rule
// @Tags         reference
// @Security     Bearer
// @Param        id  path  string  true  "Rule ID"
// @Success      204
// @Router       /api/communities/{id} [delete]
func (h *ReferenceHandler) DeleteCommunity(c *fiber.Ctx) error {
	if err := h.communities.Delete(c.Context(), c.Params("id")); err != nil {
		return writeError(c, err, nil)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
