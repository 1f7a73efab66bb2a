package user

import (
	"time"
)

// Role 用户角色
// 说明:只有两种角色,member(读者)与admin(管理员),
// 借阅/归还申请要求member且必须是借阅单本人,审批要求admin
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

// IsValid 是否为合法角色
func (r Role) IsValid() bool {
	return r == RoleMember || r == RoleAdmin
}

// User 用户实体(聚合根)
// DDD设计说明:
// 1. User是用户聚合的根实体,包含用户的核心属性
// 2. 密码已加密存储(bcrypt),不应该有GetPassword()等方法暴露明文
// 3. 领域实体不依赖GORM tag(infrastructure层的Repository实现时会处理映射)
type User struct {
	ID        uint
	Email     string
	Password  string // bcrypt哈希值
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户(工厂方法)
// hashedPassword必须是bcrypt加密后的密码
func NewUser(email, hashedPassword, name string, role Role) *User {
	now := time.Now()
	return &User{
		Email:     email,
		Password:  hashedPassword,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
