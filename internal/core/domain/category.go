package domain

import "strings"

type Category string

// DefaultCategories is used when no category set is configured.
var DefaultCategories = Categories{"อาหาร", "เครื่องดื่ม", "ของใช้", "เสื้อผ้า"}

type Categories []Category

func NewCategories(values []string) Categories {
	categories := make(Categories, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		categories = append(categories, Category(value))
	}
	return categories
}

func (c Categories) Contains(category Category) bool {
	for _, allowed := range c {
		if allowed == category {
			return true
		}
	}
	return false
}

func (c Categories) Strings() []string {
	values := make([]string, len(c))
	for i, category := range c {
		values[i] = string(category)
	}
	return values
}
