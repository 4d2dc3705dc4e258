package domain

import "strings"

// Breed is a named animal sub-type belonging to exactly one category
type Breed struct {
	Code                string `json:"breedCode" yaml:"breedCode"`
	DisplayName         string `json:"breedDisplayName" yaml:"breedDisplayName"`
	CategoryCode        string `json:"categoryCode" yaml:"categoryCode"`
	CategoryDisplayName string `json:"categoryDisplayName" yaml:"categoryDisplayName"`
}

// Category groups breeds, e.g. a species. It is derived from the breed list.
type Category struct {
	Code        string `json:"code" yaml:"code"`
	DisplayName string `json:"displayName" yaml:"displayName"`
}

// Category returns the category the breed belongs to
func (b Breed) Category() Category {
	return Category{
		Code:        b.CategoryCode,
		DisplayName: b.CategoryDisplayName,
	}
}

// NameContains reports whether the display name contains the lowercased needle
func (b Breed) NameContains(lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(b.DisplayName), lowerNeedle)
}

// BreedFilter selects breeds by category and/or display name substring.
// Empty fields are treated as absent.
type BreedFilter struct {
	CategoryCode string `json:"categoryCode,omitempty"`
	Subtext      string `json:"subtext,omitempty"`
}
