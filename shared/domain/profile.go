package domain

type Profile struct {
	Name      string   `json:"name" validate:"required,min=2"`
	Email     Email    `json:"email" validate:"required,email"`
	Bio       string   `json:"bio" validate:"max=500"`
	Skills    []string `json:"skills" validate:"max=30,dive,required,max=40"`
	AvatarURL string   `json:"avatarUrl" validate:"omitempty,url"`
}
