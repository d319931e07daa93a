package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents an item in the catalog.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Price       float64            `bson:"price" json:"price"`
	Category    string             `bson:"category" json:"category"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Stock       int                `bson:"stock" json:"stock"`
}
