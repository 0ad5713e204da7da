package ledger

import (
	"strings"

	"github.com/Veraticus/fintrack/internal/common"
	"github.com/Veraticus/fintrack/internal/model"
	"github.com/Veraticus/fintrack/internal/state"
)

// AddCategory creates a custom category.
func (s *Service) AddCategory(name string, t model.CategoryType) (model.Category, error) {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return model.Category{}, err
	}

	cat := model.Category{ID: s.newID(), Name: model.NormalizeName(name), Type: t}
	if err := validateCategory(st, cat); err != nil {
		return model.Category{}, err
	}

	s.store.Dispatch(state.AddCategory{Category: cat})
	return cat, nil
}

// UpdateCategory renames or retypes a custom category. Transactions that used the
// old name follow the rename.
func (s *Service) UpdateCategory(cat model.Category) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	existing, ok := st.Category(cat.ID)
	if !ok {
		return notFound("Category", cat.ID)
	}
	if existing.IsDefault {
		return common.NewUserError("Default categories cannot be edited", common.ErrDefaultCategory)
	}

	cat.Name = model.NormalizeName(cat.Name)
	cat.IsDefault = false
	if err := validateCategory(st, cat); err != nil {
		return err
	}

	s.store.Dispatch(state.UpdateCategory{Category: cat})
	return nil
}

// DeleteCategory removes a custom category. Its transactions move to the fallback
// category of the same type.
func (s *Service) DeleteCategory(id string) error {
	st := s.store.State()
	if err := requireAuthenticated(st); err != nil {
		return err
	}
	existing, ok := st.Category(id)
	if !ok {
		return notFound("Category", id)
	}
	if existing.IsDefault {
		return common.NewUserError("Default categories cannot be deleted", common.ErrDefaultCategory)
	}

	s.store.Dispatch(state.DeleteCategory{ID: id})
	return nil
}

func validateCategory(st state.State, cat model.Category) error {
	if cat.Name == "" {
		return invalid("Category name is required")
	}
	if !cat.Type.Valid() {
		return invalid("Category type must be income or expense")
	}
	for _, other := range st.Categories {
		if other.ID != cat.ID && other.Type == cat.Type && strings.EqualFold(other.Name, cat.Name) {
			return common.NewUserError("A category with this name already exists", common.ErrDuplicateEntry)
		}
	}
	return nil
}
