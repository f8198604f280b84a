package dto

// RegisterDTO 注册请求
type RegisterDTO struct {
	Username   string `json:"username" binding:"required" validate:"min=6,max=20"`
	Password   string `json:"password" binding:"required" validate:"min=6,max=20"`
	University string `json:"university" binding:"required" validate:"min=1,max=128"`
}

// CredentialDTO 登录请求
type CredentialDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenDTO 登录响应
type TokenDTO struct {
	Token string   `json:"token"`
	User  *UserDTO `json:"user"`
}

// UserDTO 用户信息响应
type UserDTO struct {
	ID         uint64   `json:"id"`
	Username   string   `json:"username"`
	University string   `json:"university"`
	Roles      []string `json:"roles"`
}
