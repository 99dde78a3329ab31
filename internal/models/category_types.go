package models

// Category is the model for the 'categories' table.
// Categories form a tree via the self-referencing parent_id.
type Category struct {
	ID          string  `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
	ParentID    *string `json:"parentId,omitempty" db:"parent_id"`
	Icon        *string `json:"icon,omitempty" db:"icon"`
}
