package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"matchgraph/internal/config"
	"matchgraph/internal/models"
	"matchgraph/internal/storage"
)

const (
	defaultSearchLimit = 10
	defaultMaxLimit    = 500
)

// UserService 提供对身份存储的只读访问。
type UserService interface {
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	UserExists(ctx context.Context, userID uuid.UUID) (bool, error)
	SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error)
	GetBasicInfoByIDs(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserBasicInfo, error)
}

// userService 是 UserService 的实现。
type userService struct {
	userRepo storage.UserRepository
	maxLimit int
}

// NewUserService 创建一个新的 UserService 实例。搜索结果数量以 pagination.MaxLimit 为上限。
func NewUserService(userRepo storage.UserRepository, pagination config.PaginationConfig) UserService {
	maxLimit := pagination.MaxLimit
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	return &userService{userRepo: userRepo, maxLimit: maxLimit}
}

func (s *userService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) UserExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", userID, err)
	}
	return exists, nil
}

// SearchUsers 按邮箱或姓名模糊匹配，limit<=0 时使用默认值 10，超过上限时截断为上限。
func (s *userService) SearchUsers(ctx context.Context, query string, limit int) ([]models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, validationError(errors.New("query must not be empty"))
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	return s.userRepo.SearchUsers(ctx, query, limit)
}

func (s *userService) GetBasicInfoByIDs(ctx context.Context, userIDs []uuid.UUID) ([]*models.UserBasicInfo, error) {
	return s.userRepo.GetMultipleBasicInfoByIDs(ctx, userIDs)
}
