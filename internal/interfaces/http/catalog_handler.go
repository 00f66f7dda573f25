package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
	"github.com/jhoicas/almacen-bridge/internal/application/usecase"
	"github.com/jhoicas/almacen-bridge/internal/domain"
)

// CatalogHandler categorías, armarios y estantes.
type CatalogHandler struct {
	categories *usecase.CategoryUseCase
	cabinets   *usecase.CabinetUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(categories *usecase.CategoryUseCase, cabinets *usecase.CabinetUseCase) *CatalogHandler {
	return &CatalogHandler{categories: categories, cabinets: cabinets}
}

// CreateCategory godoc
// @Summary      Crear categoría
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCategoryRequest  true  "name, description"
// @Success      201   {object}  dto.CategoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /categories [post]
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	var in dto.CreateCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.categories.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err, errorTexts{
			domain.ErrInvalidInput: "name es requerido",
			domain.ErrDuplicate:    "la categoría ya existe",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCategories godoc
// @Summary      Listar categorías
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CategoryResponse
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	out, err := h.categories.List(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(out)
}

// CreateCabinet godoc
// @Summary      Crear armario
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateCabinetRequest  true  "name"
// @Success      201   {object}  dto.CabinetResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /cabinets [post]
func (h *CatalogHandler) CreateCabinet(c *fiber.Ctx) error {
	var in dto.CreateCabinetRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.cabinets.Create(c.UserContext(), in)
	if err != nil {
		return fail(c, err, errorTexts{
			domain.ErrInvalidInput: "name es requerido",
			domain.ErrDuplicate:    "el armario ya existe",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListCabinets godoc
// @Summary      Listar armarios
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.CabinetResponse
// @Router       /cabinets [get]
func (h *CatalogHandler) ListCabinets(c *fiber.Ctx) error {
	out, err := h.cabinets.List(c.UserContext())
	if err != nil {
		return fail(c, err, nil)
	}
	return c.JSON(out)
}

// CreateShelf godoc
// @Summary      Crear estante en un armario
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                      true  "ID del armario"
// @Param        body  body  dto.CreateShelfRequest   true  "name, allows_multiple_categories"
// @Success      201   {object}  dto.ShelfResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /cabinets/{id}/shelves [post]
func (h *CatalogHandler) CreateShelf(c *fiber.Ctx) error {
	cabinetID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	var in dto.CreateShelfRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.cabinets.CreateShelf(c.UserContext(), cabinetID, in)
	if err != nil {
		return fail(c, err, errorTexts{domain.ErrNotFound: "armario no encontrado"})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListShelves godoc
// @Summary      Listar estantes de un armario
// @Tags         catalog
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del armario"
// @Success      200  {array}  dto.ShelfResponse
// @Router       /cabinets/{id}/shelves [get]
func (h *CatalogHandler) ListShelves(c *fiber.Ctx) error {
	cabinetID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	out, err := h.cabinets.ListShelves(c.UserContext(), cabinetID)
	if err != nil {
		return fail(c, err, errorTexts{domain.ErrNotFound: "armario no encontrado"})
	}
	return c.JSON(out)
}

// AddShelfCategory godoc
// @Summary      Asignar categoría a un estante
// @Description  Un estante sin allows_multiple_categories admite una sola categoría.
// @Tags         catalog
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int                          true  "ID del estante"
// @Param        body  body  dto.AddShelfCategoryRequest  true  "category_id"
// @Success      200   {object}  dto.ShelfResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /shelves/{id}/categories [post]
func (h *CatalogHandler) AddShelfCategory(c *fiber.Ctx) error {
	shelfID, ok := paramID(c, "id")
	if !ok {
		return badRequest(c, "MISSING_ID", "id inválido")
	}
	var in dto.AddShelfCategoryRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.cabinets.AddShelfCategory(c.UserContext(), shelfID, in)
	if err != nil {
		return fail(c, err, errorTexts{domain.ErrConflict: "el estante solo admite una categoría"})
	}
	return c.JSON(out)
}
