package dto

type CreateCategoryRequest struct {
	Name        string `json:"name"        validate:"required,min=2,max=100"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
