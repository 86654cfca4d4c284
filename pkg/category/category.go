package category

import "github.com/klokku/budgetwise/pkg/priority"

type Category struct {
	Id       int
	Name     string
	Priority priority.Priority
	Color    string
	Icon     string
}

// ById indexes categories by their id.
func ById(categories []Category) map[int]Category {
	byId := make(map[int]Category, len(categories))
	for _, c := range categories {
		byId[c.Id] = c
	}
	return byId
}
