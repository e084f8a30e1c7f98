package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tieubaoca/pdfchat/repository"
	"github.com/tieubaoca/pdfchat/types"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	// Signup creates an account. Both fields are required and the username
	// must be free.
	Signup(ctx context.Context, username, password string) (*types.User, error)
	// Login verifies credentials. It never reveals which of the two was wrong.
	Login(ctx context.Context, username, password string) (*types.User, error)
	GetUser(ctx context.Context, id string) (*types.User, error)
}

type userService struct {
	repo repository.UserRepo
	cost int
}

func NewUserService(repo repository.UserRepo) UserService {
	return &userService{
		repo: repo,
		cost: bcrypt.DefaultCost,
	}
}

func (s *userService) Signup(ctx context.Context, username, password string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required: %w", types.ErrInvalidInput)
	}

	existing, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, types.ErrDuplicateUsername
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &types.User{
		Username:       username,
		HashedPassword: string(hashed),
		CreateAt:       time.Now().Unix(),
	}
	// the unique index still catches a concurrent signup for the same name
	if _, err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) Login(ctx context.Context, username, password string) (*types.User, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, types.ErrAuthenticationFailure
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, types.ErrAuthenticationFailure
	}
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*types.User, error) {
	return s.repo.GetUser(ctx, id)
}
