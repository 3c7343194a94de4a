package dto

// OptionCreateDTO carries one choice of a question being authored.
type OptionCreateDTO struct {
	Text      string  `json:"text" binding:"required"`
	SortOrder int     `json:"sort_order"`
	IsCorrect bool    `json:"is_correct"`
	Weight    float64 `json:"weight"`
}

type QuestionCreateDTO struct {
	Text      string            `json:"text" binding:"required"`
	SortOrder int               `json:"sort_order"`
	Weight    float64           `json:"weight"`
	Options   []OptionCreateDTO `json:"options" binding:"required,min=2,dive"`
}

type TestCreateDTO struct {
	Code        string              `json:"code" binding:"required"`
	Name        string              `json:"name" binding:"required"`
	Description string              `json:"description"`
	IsActive    bool                `json:"is_active"`
	Questions   []QuestionCreateDTO `json:"questions" binding:"omitempty,dive"`
}

type SetActiveDTO struct {
	IsActive *bool `json:"is_active" binding:"required"`
}
