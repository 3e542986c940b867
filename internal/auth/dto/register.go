package dto

type RegisterInput struct {
	Name            string `json:"name" validate:"required,max=30"`
	Username        string `json:"username" validate:"required,min=5,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}
