package security

// 系统内全部角色
const (
	RoleStudent    = "STUDENT"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

// IsModerator 判断角色列表是否具备审核权限。
// "谁算管理员"这条规则只在这里定义一次，
// 商品查询过滤和审核流水线都复用它。
func IsModerator(roles []string) bool {
	for _, r := range roles {
		if r == RoleAdmin || r == RoleSuperAdmin {
			return true
		}
	}
	return false
}
