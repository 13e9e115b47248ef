package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/valeriaulyamaeva/budget-ledger/internal/logging"
	"github.com/valeriaulyamaeva/budget-ledger/models"
)

// CreateCategory stores a category. A parent must exist, be top-level and
// share the child's type.
func (s *Service) CreateCategory(ctx context.Context, owner uuid.UUID, in models.CategoryCreate) (*models.Category, error) {
	if err := in.Validate(); err != nil {
		return nil, invalid(err)
	}
	cat := in.NewCategory(owner, s.now())
	err := s.store.InTx(ctx, func(tx Tx) error {
		if in.ParentID != nil {
			parent, err := tx.GetCategory(ctx, owner, *in.ParentID)
			if err != nil {
				if isNotFound(err) {
					return NotFound("parent category", *in.ParentID)
				}
				return fmt.Errorf("failed to load parent category: %w", err)
			}
			if err := in.ValidateParent(parent); err != nil {
				return invalid(err)
			}
		}
		return tx.InsertCategory(ctx, cat)
	})
	if err != nil {
		return nil, err
	}
	s.opLog("create_category", owner).WithField(logging.FieldCategoryID, cat.ID).Debug("Category created")
	return cat, nil
}

func (s *Service) ListCategories(ctx context.Context, owner uuid.UUID) ([]models.Category, error) {
	return s.store.ListCategories(ctx, owner)
}
