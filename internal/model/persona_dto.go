package model

// PersonaRequest is the body of persona create/update calls
type PersonaRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=80"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=500"`
	StyleTags   []string `json:"styleTags,omitempty" validate:"omitempty,max=20,dive,min=1,max=40"`
	VoicePrompt string   `json:"voicePrompt,omitempty" validate:"omitempty,max=1000"`
}

// UserStatusRequest is the body of the admin user-moderation call
type UserStatusRequest struct {
	Status UserStatus `json:"status" validate:"required,oneof=active suspended"`
}
