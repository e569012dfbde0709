package models

import "time"

type MenuItem struct {
	MenuID      string    `json:"menuid" bson:"menuid"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Image       string    `json:"image,omitempty" bson:"image,omitempty"`
	Available   bool      `json:"available" bson:"available"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
