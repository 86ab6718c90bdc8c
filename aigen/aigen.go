package aigen

import (
	"context"
)

// Generator produces and refines equipment lists. Implementations return
// the model's raw JSON text; callers are responsible for parsing and
// validating it.
type Generator interface {
	// GenerateBOQ asks the model for a bill of quantities covering the
	// given free-text room requirements.
	GenerateBOQ(ctx context.Context, requirements string) (string, error)

	// RefineBOQ sends an existing BOQ (as JSON) together with a change
	// instruction and returns the full updated BOQ.
	RefineBOQ(ctx context.Context, currentBOQ, instruction string) (string, error)
}

// ProductInfo is the result of a product details lookup.
type ProductInfo struct {
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

// ProductLookup is an optional extension of Generator that can fetch an
// image URL and short description for a named product.
type ProductLookup interface {
	ProductDetails(ctx context.Context, productName string) (ProductInfo, error)
}
