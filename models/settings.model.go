package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SiteSettings is the single admin-editable settings document (store name,
// contact details, theme). Stored as one row in the settings collection.
type SiteSettings struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	StoreName    string             `bson:"store_name" json:"store_name"`
	SupportEmail string             `bson:"support_email" json:"support_email"`
	SupportPhone string             `bson:"support_phone" json:"support_phone"`
	Theme        Theme              `bson:"theme" json:"theme"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Theme holds the storefront colour scheme.
type Theme struct {
	PrimaryColor   string `bson:"primary_color" json:"primary_color"`
	SecondaryColor string `bson:"secondary_color" json:"secondary_color"`
	DarkMode       bool   `bson:"dark_mode" json:"dark_mode"`
}
