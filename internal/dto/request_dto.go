package dto

type StartAttemptRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

type SubmitAnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	OptionID   uint `json:"option_id" binding:"required"`
}

type RegisterUserRequest struct {
	TgID      int64  `json:"tg_id" binding:"required"`
	FullName  string `json:"full_name"`
	Username  string `json:"username"`
	Lang      string `json:"lang"`
	IsStudent bool   `json:"is_student"`
}

type SavePhoneRequest struct {
	Phone    string `json:"phone" binding:"required"`
	FullName string `json:"full_name"`
}
