package task

import "github.com/google/uuid"

type EffectiveCategoryType string

const EffectiveCustom EffectiveCategoryType = "custom"
const EffectiveDefault EffectiveCategoryType = "default"

// EffectiveCategory - категория, которая реально отображается для задачи
type EffectiveCategory struct {
	Type  EffectiveCategoryType `json:"type"`
	ID    *uuid.UUID            `json:"id,omitempty"`
	Code  Category              `json:"code,omitempty"`
	Name  string                `json:"name"`
	Color string                `json:"color,omitempty"`
}

// EffectiveCategory: пользовательская категория важнее системной,
// при отсутствии обеих - OTHER.
func (t *Task) EffectiveCategory() EffectiveCategory {
	if t.CustomCategory != nil {
		id := t.CustomCategory.ID
		return EffectiveCategory{
			Type:  EffectiveCustom,
			ID:    &id,
			Name:  t.CustomCategory.Name,
			Color: t.CustomCategory.Color,
		}
	}

	if t.Category != nil {
		return EffectiveCategory{
			Type: EffectiveDefault,
			Code: *t.Category,
			Name: t.Category.DisplayName(),
		}
	}

	return EffectiveCategory{
		Type: EffectiveDefault,
		Code: CategoryOther,
		Name: CategoryOther.DisplayName(),
	}
}

// Key - ключ для группировки по эффективной категории
func (e EffectiveCategory) Key() string {
	if e.Type == EffectiveCustom && e.ID != nil {
		return "custom:" + e.ID.String()
	}
	return "default:" + string(e.Code)
}
