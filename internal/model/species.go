package model

import (
	"fmt"
	"strings"
	"time"
)

// Catalog names a species catalog (one crossover universe)
type Catalog string

const (
	CatalogPokemon       Catalog = "pokemon"
	CatalogDigimon       Catalog = "digimon"
	CatalogNexomon       Catalog = "nexomon"
	CatalogYokai         Catalog = "yokai"
	CatalogPals          Catalog = "pals"
	CatalogMonsterHunter Catalog = "monsterhunter"
	CatalogFinalFantasy  Catalog = "finalfantasy"
	CatalogFakemon       Catalog = "fakemon"
)

// Catalogs lists every known catalog
var Catalogs = []Catalog{
	CatalogPokemon,
	CatalogDigimon,
	CatalogNexomon,
	CatalogYokai,
	CatalogPals,
	CatalogMonsterHunter,
	CatalogFinalFantasy,
	CatalogFakemon,
}

// ParseCatalog accepts a catalog name in any case
func ParseCatalog(s string) (Catalog, error) {
	c := Catalog(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Catalogs {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown species catalog %q", s)
}

// SpeciesField is a logical species attribute. Each catalog maps the fields
// it supports onto its own physical columns.
type SpeciesField string

const (
	FieldNumber          SpeciesField = "number"
	FieldName            SpeciesField = "name"
	FieldImageURL        SpeciesField = "imageUrl"
	FieldFamily          SpeciesField = "family"
	FieldTribe           SpeciesField = "tribe"
	FieldRank            SpeciesField = "rank"
	FieldElement         SpeciesField = "element"
	FieldAttribute       SpeciesField = "attribute"
	FieldStage           SpeciesField = "stage"
	FieldTypePrimary     SpeciesField = "typePrimary"
	FieldTypeSecondary   SpeciesField = "typeSecondary"
	FieldEvolvesFrom     SpeciesField = "evolvesFrom"
	FieldEvolvesTo       SpeciesField = "evolvesTo"
	FieldBreedingResults SpeciesField = "breedingResults"
)

// Species is one catalog entry. Fields the catalog does not carry stay nil.
type Species struct {
	ID              int       `json:"id" yaml:"-"`
	Catalog         Catalog   `json:"catalog" yaml:"-"`
	Number          *int      `json:"number,omitempty" yaml:"number,omitempty"`
	Name            string    `json:"name" yaml:"name"`
	ImageURL        *string   `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Family          *string   `json:"family,omitempty" yaml:"family,omitempty"`
	Tribe           *string   `json:"tribe,omitempty" yaml:"tribe,omitempty"`
	Rank            *string   `json:"rank,omitempty" yaml:"rank,omitempty"`
	Element         *string   `json:"element,omitempty" yaml:"element,omitempty"`
	Attribute       *string   `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Stage           *string   `json:"stage,omitempty" yaml:"stage,omitempty"`
	TypePrimary     *string   `json:"typePrimary,omitempty" yaml:"type_primary,omitempty"`
	TypeSecondary   *string   `json:"typeSecondary,omitempty" yaml:"type_secondary,omitempty"`
	EvolvesFrom     *string   `json:"evolvesFrom,omitempty" yaml:"evolves_from,omitempty"`
	EvolvesTo       *string   `json:"evolvesTo,omitempty" yaml:"evolves_to,omitempty"`
	BreedingResults *string   `json:"breedingResults,omitempty" yaml:"breeding_results,omitempty"`
	CreatedAt       time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt       time.Time `json:"updatedAt" yaml:"-"`
}

// SpeciesInput creates or partially updates a species. On create Name is
// required; on update nil fields are unchanged.
type SpeciesInput struct {
	Number          *int    `json:"number,omitempty" yaml:"number,omitempty"`
	Name            *string `json:"name,omitempty" yaml:"name,omitempty"`
	ImageURL        *string `json:"imageUrl,omitempty" yaml:"image_url,omitempty"`
	Family          *string `json:"family,omitempty" yaml:"family,omitempty"`
	Tribe           *string `json:"tribe,omitempty" yaml:"tribe,omitempty"`
	Rank            *string `json:"rank,omitempty" yaml:"rank,omitempty"`
	Element         *string `json:"element,omitempty" yaml:"element,omitempty"`
	Attribute       *string `json:"attribute,omitempty" yaml:"attribute,omitempty"`
	Stage           *string `json:"stage,omitempty" yaml:"stage,omitempty"`
	TypePrimary     *string `json:"typePrimary,omitempty" yaml:"type_primary,omitempty"`
	TypeSecondary   *string `json:"typeSecondary,omitempty" yaml:"type_secondary,omitempty"`
	EvolvesFrom     *string `json:"evolvesFrom,omitempty" yaml:"evolves_from,omitempty"`
	EvolvesTo       *string `json:"evolvesTo,omitempty" yaml:"evolves_to,omitempty"`
	BreedingResults *string `json:"breedingResults,omitempty" yaml:"breeding_results,omitempty"`
}

// Fields returns the set fields and their values. Number is an int, every
// other value a string.
func (in *SpeciesInput) Fields() map[SpeciesField]interface{} {
	out := make(map[SpeciesField]interface{})
	if in == nil {
		return out
	}
	if in.Number != nil {
		out[FieldNumber] = *in.Number
	}
	strs := map[SpeciesField]*string{
		FieldName:            in.Name,
		FieldImageURL:        in.ImageURL,
		FieldFamily:          in.Family,
		FieldTribe:           in.Tribe,
		FieldRank:            in.Rank,
		FieldElement:         in.Element,
		FieldAttribute:       in.Attribute,
		FieldStage:           in.Stage,
		FieldTypePrimary:     in.TypePrimary,
		FieldTypeSecondary:   in.TypeSecondary,
		FieldEvolvesFrom:     in.EvolvesFrom,
		FieldEvolvesTo:       in.EvolvesTo,
		FieldBreedingResults: in.BreedingResults,
	}
	for f, v := range strs {
		if v != nil {
			out[f] = *v
		}
	}
	return out
}

// Validate checks the input for a create
func (in *SpeciesInput) Validate() []FieldError {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return []FieldError{{Field: "name", Message: "name is required"}}
	}
	return nil
}

// SpeciesQuery filters and pages a catalog. Filters keys outside the
// catalog's filterable fields are ignored.
type SpeciesQuery struct {
	Search    string
	Filters   map[SpeciesField]string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}
