package cart

import (
	"errors"

	"savra-store/internal/domain"
)

var (
	ErrUnknownCategory        = errors.New("unknown constructor category")
	ErrCategoryNotChosen      = errors.New("select a category first")
	ErrProductNotChosen       = errors.New("select a model first")
	ErrProductOutsideCategory = errors.New("model does not belong to the selected category")
	ErrBuildIncomplete        = errors.New("constructor selection is incomplete")
)

// ConstructorCategories are the ring constructor funnel categories
var ConstructorCategories = []string{"all", "classic", "textured", "mens"}

// Builder drives the three-step ring constructor: category, then model,
// then size. A later step only becomes available once the prior one holds
// a value, and changing an earlier step resets everything after it.
type Builder struct {
	category string
	product  *domain.Product
	size     string
}

// NewBuilder returns a constructor funnel with nothing selected
func NewBuilder() *Builder {
	return &Builder{}
}

// SelectCategory picks the funnel category and resets model and size
func (b *Builder) SelectCategory(category string) error {
	valid := false
	for _, c := range ConstructorCategories {
		if c == category {
			valid = true
			break
		}
	}
	if !valid {
		return ErrUnknownCategory
	}
	b.category = category
	b.product = nil
	b.size = ""
	return nil
}

// SelectProduct picks a model within the chosen category and resets the
// size selection
func (b *Builder) SelectProduct(product *domain.Product) error {
	if b.category == "" {
		return ErrCategoryNotChosen
	}
	if !product.MatchesConstructorCategory(b.category) {
		return ErrProductOutsideCategory
	}
	b.product = product
	b.size = ""
	return nil
}

// SelectSize picks the ring size for the chosen model
func (b *Builder) SelectSize(size string) error {
	if b.product == nil {
		return ErrProductNotChosen
	}
	if b.product.SizeVariant() && !b.product.HasSize(size) {
		return ErrUnknownSize
	}
	b.size = size
	return nil
}

// Ready reports whether all three steps hold a value
func (b *Builder) Ready() bool {
	return b.category != "" && b.product != nil && b.size != ""
}

// Build returns the selected product and cart options for a constructor
// order. It fails unless every step has been completed.
func (b *Builder) Build() (*domain.Product, AddOptions, error) {
	if !b.Ready() {
		return nil, AddOptions{}, ErrBuildIncomplete
	}
	return b.product, AddOptions{
		Quantity:  1,
		Size:      b.size,
		OrderType: domain.OrderTypeConstructor,
	}, nil
}
