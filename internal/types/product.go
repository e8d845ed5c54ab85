package types

// Product is a catalog entry. The optional variant slices are only present
// for products that have them (phones list storage options, clothing lists
// sizes and colors).
type Product struct {
	ID              int64    `json:"id" bson:"id"`
	Name            string   `json:"name" bson:"name" validate:"required"`
	Price           float64  `json:"price" bson:"price" validate:"required,gt=0"`
	Image           string   `json:"image" bson:"image" validate:"required"`
	Category        string   `json:"category" bson:"category" validate:"required"`
	Description     string   `json:"description,omitempty" bson:"description,omitempty"`
	Stock           int      `json:"stock" bson:"stock" validate:"gte=0"`
	Views           int      `json:"views" bson:"views"`
	StorageOptions  []string `json:"storageOptions,omitempty" bson:"storageOptions,omitempty"`
	SizesAvailable  []string `json:"sizesAvailable,omitempty" bson:"sizesAvailable,omitempty"`
	ColorsAvailable []string `json:"colorsAvailable,omitempty" bson:"colorsAvailable,omitempty"`
}
