package reference

type CreateIngredientRequest struct {
	Name            string `json:"name" validate:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" validate:"required,max=64"`
}

type CreateTagRequest struct {
	Name string `json:"name" validate:"required,max=64"`
	Slug string `json:"slug" validate:"required,max=64,slug"`
}
