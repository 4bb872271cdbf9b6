package usecase

import (
	"context"
	"strings"

	"github.com/openfoodfacts-mcp/backend/internal/domain"
)

// IdentifierArgs carries a product name or barcode.
type IdentifierArgs struct {
	NameOrBarcode string `json:"nameOrBarcode" jsonschema:"required,description=Product name or barcode (EAN/UPC)" validate:"required"`
}

// AllergenArgs are the arguments of getAllergenCheck.
type AllergenArgs struct {
	NameOrBarcode string `json:"nameOrBarcode" jsonschema:"required,description=Product name or barcode" validate:"required"`
	Allergen      string `json:"allergen" jsonschema:"required,description=Allergen to check for such as gluten or milk or peanuts" validate:"required"`
}

// MultiAllergenArgs are the arguments of checkMultipleAllergens.
type MultiAllergenArgs struct {
	NameOrBarcode string   `json:"nameOrBarcode" jsonschema:"required,description=Product name or barcode" validate:"required"`
	Allergens     []string `json:"allergens" jsonschema:"required,description=List of allergens to check,minItems=1" validate:"required,min=1,dive,required"`
}

// GetNutriScore reports the Nutri-Score of a product.
func (s *Service) GetNutriScore(ctx context.Context, args *IdentifierArgs) (*Result, error) {
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}
	return dataResult(BuildNutriScore(product)), nil
}

// GetEcoScore reports the Eco-Score of a product.
func (s *Service) GetEcoScore(ctx context.Context, args *IdentifierArgs) (*Result, error) {
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}
	return dataResult(BuildEcoScore(product)), nil
}

// GetAdditivesInfo lists the additives of a product.
func (s *Service) GetAdditivesInfo(ctx context.Context, args *IdentifierArgs) (*Result, error) {
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}
	return dataResult(BuildAdditives(product)), nil
}

// GetAllergenCheck checks one allergen, traces included.
func (s *Service) GetAllergenCheck(ctx context.Context, args *AllergenArgs) (*Result, error) {
	allergen := strings.TrimSpace(args.Allergen)
	if allergen == "" {
		return nil, domain.NewInvalidArgument("allergen must not be empty")
	}
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}
	result := CheckAllergen(product, allergen)
	return &Result{Text: allergenSummary(result), Data: result}, nil
}

// CheckMultipleAllergens checks several allergens at once.
func (s *Service) CheckMultipleAllergens(ctx context.Context, args *MultiAllergenArgs) (*Result, error) {
	allergens := make([]string, 0, len(args.Allergens))
	for _, a := range args.Allergens {
		if a = strings.TrimSpace(a); a != "" {
			allergens = append(allergens, a)
		}
	}
	if len(allergens) == 0 {
		return nil, domain.NewInvalidArgument("allergens must contain at least one entry")
	}
	product, err := s.resolver.Resolve(ctx, args.NameOrBarcode)
	if err != nil {
		return nil, err
	}
	result := CheckAllergens(product, allergens)
	return &Result{Text: multiAllergenSummary(result), Data: result}, nil
}
