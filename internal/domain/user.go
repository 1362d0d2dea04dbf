package domain

import "time"

// User is a registered account. Recipes, favorites, cart entries and
// subscriptions all hang off it.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"size:254;uniqueIndex;not null"`
	Username     string    `json:"username" gorm:"size:150;uniqueIndex;not null"`
	FirstName    string    `json:"first_name" gorm:"size:150;not null"`
	LastName     string    `json:"last_name" gorm:"size:150;not null"`
	Avatar       *string   `json:"avatar,omitempty" gorm:"size:512"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"-" gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

func (User) TableName() string { return "users" }

// Subscription links a subscriber to a recipe author.
// The pair is unique at the storage layer; subscriber == author is
// rejected in the service layer before any write.
type Subscription struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	SubscriberID int64     `json:"subscriber_id" gorm:"not null;index;uniqueIndex:idx_subscriber_author"`
	AuthorID     int64     `json:"author_id" gorm:"not null;index;uniqueIndex:idx_subscriber_author"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`

	Subscriber *User `json:"-" gorm:"foreignKey:SubscriberID"`
	Author     *User `json:"-" gorm:"foreignKey:AuthorID"`
}

func (Subscription) TableName() string { return "subscriptions" }
