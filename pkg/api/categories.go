package api

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedBy   string `json:"createdBy,omitempty"`
	CreatedAt   int64  `json:"createdAt,omitempty"`
	IsDefault   bool   `json:"isDefault"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type CreateCategoryResponse struct {
	Category Category `json:"category"`
}

type ListCategoriesRequest struct{}

type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

type UpdateCategoryRequest struct {
	CategoryID  string  `json:"categoryId"`
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

type UpdateCategoryResponse struct {
	Category Category `json:"category"`
}

type DeleteCategoryRequest struct {
	CategoryID string `json:"categoryId"`
}

type DeleteCategoryResponse struct{}

type ListDefaultCategoriesRequest struct{}

type ListDefaultCategoriesResponse struct {
	Categories []Category `json:"categories"`
}
