package dto

// Form payloads for signup, login and profile edits

// SignupForm: payload for user signup
type SignupForm struct {
	Username  string `form:"username" binding:"required,max=50"`
	FirstName string `form:"first_name" binding:"required,max=100"`
	LastName  string `form:"last_name" binding:"required,max=100"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"min=6"`
}

// LoginForm: payload for user login
type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"min=6"`
}

// ProfileForm: payload for profile edits, the current password confirms the change
type ProfileForm struct {
	Username  string `form:"username" binding:"required,max=50"`
	FirstName string `form:"first_name" binding:"required,max=100"`
	LastName  string `form:"last_name" binding:"required,max=100"`
	Email     string `form:"email" binding:"required,email"`
	Password  string `form:"password" binding:"min=6"`
}
