package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem represents an item in the cart. Name, price and image are
// snapshotted from the product at add time so the cart (and any order built
// from it) is not affected by later catalog edits.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice float64            `bson:"unit_price" json:"unit_price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	ImageURL  string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
}

// Cart represents a shopping cart. OwnerID is either the user's ObjectID hex
// or an opaque guest session id, so guest carts work the same way as
// authenticated ones.
type Cart struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	OwnerID string             `bson:"owner_id" json:"owner_id"`
	Items   []CartItem         `bson:"items" json:"items"`
}

// Subtotal returns the pre-discount sum of the cart lines.
func (c *Cart) Subtotal() float64 {
	sum := 0.0
	for _, item := range c.Items {
		sum += item.UnitPrice * float64(item.Quantity)
	}
	return sum
}
