package domain

// GroupByCategory builds the category list and the category -> breeds index.
//
// Categories are ordered by first appearance in breeds. The display name of a
// category is the CategoryDisplayName of the first breed seen in it, later
// breeds never rename it. Breeds keep their source order inside each group.
func GroupByCategory(breeds []Breed) ([]Category, map[string][]Breed) {
	categories := make([]Category, 0)
	index := make(map[string][]Breed)

	for _, breed := range breeds {
		if _, seen := index[breed.CategoryCode]; !seen {
			categories = append(categories, breed.Category())
		}
		index[breed.CategoryCode] = append(index[breed.CategoryCode], breed)
	}

	return categories, index
}
