package service

import (
	"UniMarket/internal/api/dto"
	"UniMarket/internal/model"
	"UniMarket/internal/pkg/consts"
	"UniMarket/internal/pkg/redis"
	"UniMarket/internal/pkg/security"
	"UniMarket/internal/pkg/util"
	"UniMarket/internal/repository"
	"context"
	log "log/slog"
)

// UserService 用户服务接口定义
type UserService interface {
	Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error)
	Login(ctx context.Context, req *dto.CredentialDTO) (*dto.TokenDTO, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, userID uint64) (*dto.UserDTO, error)
}

type userServiceImpl struct {
	userRepo      repository.UserRepo
	userRolesRepo repository.UserRolesRepo
}

func NewUserService(userRepo repository.UserRepo, userRolesRepo repository.UserRolesRepo) UserService {
	return &userServiceImpl{
		userRepo:      userRepo,
		userRolesRepo: userRolesRepo,
	}
}

// Register 注册新用户，默认授予学生角色
func (s *userServiceImpl) Register(ctx context.Context, req *dto.RegisterDTO) (*dto.TokenDTO, error) {
	if err := util.ValidateDTO(req); err != nil {
		return nil, ErrParamInvalid
	}

	existing, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		log.ErrorContext(ctx, "get user by username error", "err", err)
		return nil, UnExpectedError
	}
	if existing != nil {
		return nil, ErrUserExist
	}

	hashed, err := security.HashPassword(req.Password)
	if err != nil {
		log.ErrorContext(ctx, "hash password error", "err", err)
		return nil, UnExpectedError
	}

	user := &model.User{
		Username:   req.Username,
		Password:   hashed,
		University: req.University,
	}

	var roles []*model.UserRole
	studentRole, err := s.userRolesRepo.GetRoleByName(ctx, security.RoleStudent)
	if err != nil {
		log.ErrorContext(ctx, "get student role error", "err", err)
		return nil, UnExpectedError
	}
	if studentRole != nil {
		roles = append(roles, &model.UserRole{RoleID: studentRole.ID})
	}

	if err = s.userRepo.CreateUser(ctx, user, roles); err != nil {
		log.ErrorContext(ctx, "create user error", "err", err)
		return nil, UnExpectedError
	}

	return s.issueToken(ctx, user)
}

// Login 账号密码登录
func (s *userServiceImpl) Login(ctx context.Context, req *dto.CredentialDTO) (*dto.TokenDTO, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		log.ErrorContext(ctx, "get user by username error", "err", err)
		return nil, UnExpectedError
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if !security.CheckPassword(user.Password, req.Password) {
		return nil, ErrPasswordIncorrect
	}

	return s.issueToken(ctx, user)
}

// Logout 把当前 token 的签名放入黑名单，TTL 与 token 有效期一致
func (s *userServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrParamInvalid
	}
	err = redis.SetWithExpiration(ctx, consts.TokenBlacklistKey+signature, "1", security.JWTExpirationTime)
	if err != nil {
		log.ErrorContext(ctx, "blacklist token error", "err", err)
		return UnExpectedError
	}
	return nil
}

func (s *userServiceImpl) GetUserInfo(ctx context.Context, userID uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get user error", "userID", userID, "err", err)
		return nil, UnExpectedError
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	roleNames, err := s.roleNames(ctx, user.ID)
	if err != nil {
		return nil, UnExpectedError
	}

	return &dto.UserDTO{
		ID:         user.ID,
		Username:   user.Username,
		University: user.University,
		Roles:      roleNames,
	}, nil
}

func (s *userServiceImpl) issueToken(ctx context.Context, user *model.User) (*dto.TokenDTO, error) {
	roleNames, err := s.roleNames(ctx, user.ID)
	if err != nil {
		return nil, UnExpectedError
	}

	token, err := security.GenerateToken(user.ID, roleNames, user.University)
	if err != nil {
		log.ErrorContext(ctx, "generate token error", "err", err)
		return nil, UnExpectedError
	}

	return &dto.TokenDTO{
		Token: token,
		User: &dto.UserDTO{
			ID:         user.ID,
			Username:   user.Username,
			University: user.University,
			Roles:      roleNames,
		},
	}, nil
}

func (s *userServiceImpl) roleNames(ctx context.Context, userID uint64) ([]string, error) {
	roles, err := s.userRolesRepo.GetUserRoles(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "get user roles error", "userID", userID, "err", err)
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}
