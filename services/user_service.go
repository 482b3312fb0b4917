package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"game-stats-system/models"
	"game-stats-system/repository"
)

type CreateUserInput struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type UserService struct {
	DB  *gorm.DB
	Log *zap.Logger
}

func NewUserService(db *gorm.DB, log *zap.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

func (s *UserService) users() *repository.Repository[models.User] {
	return repository.New[models.User](s.DB)
}

// Create registers a player. The password is stored as a bcrypt hash.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	externalID := strings.TrimSpace(in.UserID)
	if externalID == "" {
		return nil, invalid("userId is required")
	}
	existing, err := s.users().FindOne(ctx, repository.Filter{"user_id": externalID})
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, invalid("User already exists!")
	}

	user := &models.User{
		ID:          uuid.NewString(),
		ExternalID:  externalID,
		FullName:    strings.TrimSpace(in.FullName),
		GameInfoIDs: models.RefList{},
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, invalid("password cannot be hashed")
		}
		user.Password = string(hash)
	}

	if _, err := s.users().Insert(ctx, user); err != nil {
		return nil, err
	}
	s.Log.Info("[USERS] created user", zap.String("id", user.ID), zap.String("user_id", externalID))
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users().FindMany(ctx, nil)
}

// Get returns the user with its player records summarized.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, EntityUser)
	}
	infos, err := repository.New[models.UserGameInfoSummary](s.DB).FindByIDs(ctx, user.GameInfoIDs, infoSummaryID)
	if err != nil {
		return nil, err
	}
	user.GameInfos = infos
	return user, nil
}
