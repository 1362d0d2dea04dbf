package domain

import "time"

// Favorite marks a recipe as favorited by a user. The (user, recipe)
// pair carries a composite unique index so a double-submit cannot
// insert two rows even when both requests pass the existence check.
type Favorite struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_favorite_user_recipe"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID"`
}

func (Favorite) TableName() string { return "favorites" }

// ShoppingCartEntry puts a recipe into a user's shopping cart, at most
// once per (user, recipe) pair.
type ShoppingCartEntry struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	RecipeID  int64     `json:"recipe_id" gorm:"not null;index;uniqueIndex:idx_cart_user_recipe"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Recipe *Recipe `json:"-" gorm:"foreignKey:RecipeID"`
}

func (ShoppingCartEntry) TableName() string { return "shopping_cart_entries" }
