package dto

// SubmitEssayRequest is a new essay submission.
type SubmitEssayRequest struct {
	Title   string `json:"title" binding:"required,max=200"`
	Theme   string `json:"theme" binding:"omitempty,max=200"`
	Content string `json:"content" binding:"required"`
}
