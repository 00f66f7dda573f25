package dto

// CreateCategoryRequest entrada para crear una categoría.
type CreateCategoryRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// CategoryResponse salida de una categoría.
type CategoryResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCabinetRequest entrada para crear un armario.
type CreateCabinetRequest struct {
	Name string `json:"name" form:"name"`
}

// CabinetResponse salida de un armario.
type CabinetResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateShelfRequest entrada para crear un estante dentro de un armario.
type CreateShelfRequest struct {
	Name                     string `json:"name" form:"name"`
	AllowsMultipleCategories bool   `json:"allows_multiple_categories" form:"allows_multiple_categories"`
}

// ShelfResponse salida de un estante con sus categorías.
type ShelfResponse struct {
	ID                       int64   `json:"id"`
	CabinetID                int64   `json:"cabinet_id"`
	Name                     string  `json:"name"`
	AllowsMultipleCategories bool    `json:"allows_multiple_categories"`
	CategoryIDs              []int64 `json:"category_ids"`
}

// AddShelfCategoryRequest body de POST /shelves/:id/categories.
type AddShelfCategoryRequest struct {
	CategoryID int64 `json:"category_id" form:"category_id"`
}
