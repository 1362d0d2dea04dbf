package domain

import "time"

const (
	CookingTimeMin      = 1
	IngredientAmountMin = 1
	IngredientAmountMax = 32000
)

// Tag is admin-managed reference data attached to recipes.
type Tag struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"size:64;uniqueIndex;not null"`
	Slug string `json:"slug" gorm:"size:64;uniqueIndex;not null"`
}

func (Tag) TableName() string { return "tags" }

// Ingredient is reference data, unique as a (name, unit) pair.
// Bulk-loaded from a dataset by cmd/seed.
type Ingredient struct {
	ID              int64  `json:"id" gorm:"primaryKey"`
	Name            string `json:"name" gorm:"size:200;not null;index;uniqueIndex:idx_ingredient_name_unit"`
	MeasurementUnit string `json:"measurement_unit" gorm:"size:64;not null;uniqueIndex:idx_ingredient_name_unit"`
}

func (Ingredient) TableName() string { return "ingredients" }

// Recipe is a published dish with tags and measured ingredients.
// Tags and ingredient rows are written in the same transaction as the
// recipe itself, so readers never see a half-assembled recipe.
type Recipe struct {
	ID          int64     `json:"id" gorm:"primaryKey"`
	AuthorID    int64     `json:"author_id" gorm:"not null;index"`
	Name        string    `json:"name" gorm:"size:256;not null"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	Image       string    `json:"image" gorm:"size:512;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null"`
	PubDate     time.Time `json:"pub_date" gorm:"autoCreateTime;index"`

	Author      *User              `json:"-" gorm:"foreignKey:AuthorID"`
	Tags        []Tag              `json:"-" gorm:"many2many:recipe_tags"`
	Ingredients []RecipeIngredient `json:"-" gorm:"foreignKey:RecipeID"`
}

func (Recipe) TableName() string { return "recipes" }

// RecipeIngredient joins a recipe to an ingredient with an amount.
// One ingredient appears at most once per recipe; duplicate lines in a
// payload are rejected, never summed.
type RecipeIngredient struct {
	ID           int64 `json:"id" gorm:"primaryKey"`
	RecipeID     int64 `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_recipe_ingredient"`
	IngredientID int64 `json:"ingredient_id" gorm:"not null;uniqueIndex:idx_recipe_ingredient"`
	Amount       int   `json:"amount" gorm:"not null"`

	Ingredient *Ingredient `json:"-" gorm:"foreignKey:IngredientID"`
}

func (RecipeIngredient) TableName() string { return "recipe_ingredients" }
