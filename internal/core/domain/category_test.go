package domain

import "testing"

func TestCategories_Contains(t *testing.T) {
	tests := []struct {
		category Category
		valid    bool
	}{
		{"อาหาร", true},
		{"เครื่องดื่ม", true},
		{"ของใช้", true},
		{"เสื้อผ้า", true},
		{"food", false},
		{"", false},
		{" อาหาร", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			if got := DefaultCategories.Contains(tt.category); got != tt.valid {
				t.Errorf("Contains(%q) = %v, want %v", tt.category, got, tt.valid)
			}
		})
	}
}

func TestNewCategories(t *testing.T) {
	categories := NewCategories([]string{" food ", "", "drinks"})

	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0] != "food" || categories[1] != "drinks" {
		t.Fatalf("unexpected categories %v", categories)
	}
	if got := categories.Strings(); got[0] != "food" {
		t.Fatalf("expected first string 'food', got %q", got[0])
	}
}
