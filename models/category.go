package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MacroType classifies categories and, through them, transactions.
type MacroType string

const (
	Income           MacroType = "income"
	ExpenseNecessity MacroType = "expense_necessity"
	ExpenseExtra     MacroType = "expense_extra"
)

var MacroTypes = []MacroType{Income, ExpenseNecessity, ExpenseExtra}

func ParseMacroType(s string) (MacroType, error) {
	t := MacroType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MacroTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fieldErr("type", "category type must be one of: %s", joinTypes(MacroTypes))
}

// IsExpense reports whether money leaves the account for this type.
func (t MacroType) IsExpense() bool {
	return t == ExpenseNecessity || t == ExpenseExtra
}

func (t MacroType) Valid() bool {
	return t == Income || t.IsExpense()
}

type Category struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"user_id" db:"user_id"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty" db:"parent_id"`
	Name      string     `json:"name" db:"name"`
	Type      MacroType  `json:"type" db:"type"`
	Color     *string    `json:"color,omitempty" db:"color"`
	Icon      *string    `json:"icon,omitempty" db:"icon"`
	IsActive  bool       `json:"is_active" db:"is_active"`
	IsSystem  bool       `json:"is_system" db:"is_system"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type CategoryCreate struct {
	ParentID *uuid.UUID `json:"parent_id,omitempty"`
	Name     string     `json:"name"`
	Type     MacroType  `json:"type"`
	Color    *string    `json:"color,omitempty"`
	Icon     *string    `json:"icon,omitempty"`
}

func (in *CategoryCreate) Validate() error {
	var err error
	if in.Name, err = normalizeName("name", in.Name, 100); err != nil {
		return err
	}
	if in.Type, err = ParseMacroType(string(in.Type)); err != nil {
		return err
	}
	if in.Color, err = NormalizeColor(in.Color); err != nil {
		return err
	}
	in.Icon, err = normalizeText("icon", in.Icon, 50)
	return err
}

// ValidateParent enforces the two-level tree: the parent must be top-level
// and share the child's type.
func (in CategoryCreate) ValidateParent(parent *Category) error {
	if parent == nil {
		return nil
	}
	if parent.ParentID != nil {
		return fieldErr("parent_id", "categories can be nested at most two levels deep")
	}
	if parent.Type != in.Type {
		return fieldErr("type", "must match the parent category type %q", parent.Type)
	}
	return nil
}

func (in CategoryCreate) NewCategory(owner uuid.UUID, now time.Time) *Category {
	return &Category{
		ID:        uuid.New(),
		UserID:    owner,
		ParentID:  in.ParentID,
		Name:      in.Name,
		Type:      in.Type,
		Color:     in.Color,
		Icon:      in.Icon,
		IsActive:  true,
		CreatedAt: now,
	}
}
