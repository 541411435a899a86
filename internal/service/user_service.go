package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/storage"

	"github.com/google/uuid"
)

type UpdateProfileRequest struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	District    string `json:"district"`
}

type UserService interface {
	GetProfile(id uuid.UUID) (*model.UserResponse, error)
	UpdateProfile(id uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error)
	UploadAvatar(ctx context.Context, id uuid.UUID, filename string, file io.Reader, contentType string) (string, error)
	ListUsers(role model.Role) ([]model.UserResponse, error)
	SetBlocked(id uuid.UUID, blocked bool) error
	Delete(id uuid.UUID) error
}

type userService struct {
	userRepo repository.UserRepository
	storage  storage.ObjectStorage
}

func NewUserService(userRepo repository.UserRepository, store storage.ObjectStorage) UserService {
	return &userService{userRepo: userRepo, storage: store}
}

func (s *userService) GetProfile(id uuid.UUID) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateProfile(id uuid.UUID, req *UpdateProfileRequest) (*model.UserResponse, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	user.PhoneNumber = req.PhoneNumber
	user.Address = req.Address
	user.District = req.District

	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UploadAvatar(ctx context.Context, id uuid.UUID, filename string, file io.Reader, contentType string) (string, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return "", ErrUserNotFound
	}
	if s.storage == nil {
		return "", errors.New("object storage not configured")
	}

	key := fmt.Sprintf("avatars/%s%s", uuid.New().String(), filepath.Ext(filename))
	url, err := s.storage.Upload(ctx, key, file, contentType)
	if err != nil {
		return "", err
	}

	user.AvatarURL = url
	if err := s.userRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

func (s *userService) ListUsers(role model.Role) ([]model.UserResponse, error) {
	users, err := s.userRepo.FindAll(role)
	if err != nil {
		return nil, err
	}
	responses := make([]model.UserResponse, len(users))
	for i, u := range users {
		responses[i] = u.ToResponse()
	}
	return responses, nil
}

func (s *userService) SetBlocked(id uuid.UUID, blocked bool) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return ErrUserNotFound
	}
	return s.userRepo.SetBlocked(id, blocked)
}

// Delete soft-deletes an account. The row stays for order history.
func (s *userService) Delete(id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(id); err != nil {
		return ErrUserNotFound
	}
	return s.userRepo.Delete(id)
}
