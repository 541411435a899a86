package service

import (
	"errors"

	"fasalbajar-api/internal/model"
	"fasalbajar-api/internal/repository"
	"fasalbajar-api/pkg/token"
	"fasalbajar-api/pkg/validator"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserBlocked        = errors.New("user account is blocked")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

type RegisterRequest struct {
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Role        model.Role `json:"role"`
	PhoneNumber string     `json:"phone_number"`
	Address     string     `json:"address"`
	District    string     `json:"district"`
}

type LoginResponse struct {
	AccessToken  string             `json:"access_token"`
	RefreshToken string             `json:"refresh_token"`
	User         model.UserResponse `json:"user"`
}

type AuthService interface {
	Register(req *RegisterRequest) (*model.UserResponse, error)
	Login(email, password string) (*LoginResponse, error)
	Refresh(refreshToken string) (string, error)
	ResetPassword(email, oldPassword, newPassword string) error
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(req *RegisterRequest) (*model.UserResponse, error) {
	// Admin accounts are seeded, never self-registered
	if req.Role != model.RoleFarmer && req.Role != model.RoleSupplier && req.Role != model.RoleBuyer {
		return nil, errors.New("role must be Farmer, Supplier or Buyer")
	}

	user := &model.User{
		FullName:    req.FullName,
		Email:       req.Email,
		Role:        req.Role,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		District:    req.District,
	}

	if req.Password == "" {
		return nil, errors.New("password is required")
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, errors.New("failed to hash password")
	}

	if errs := validator.ValidateStruct(user); len(errs) > 0 {
		return nil, errors.New(validator.FirstError(errs))
	}

	if existing, _ := s.userRepo.FindByEmail(req.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *authService) Login(email, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := token.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}
	refreshToken, err := token.GenerateRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, errors.New("failed to generate token")
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.ToResponse(),
	}, nil
}

func (s *authService) Refresh(refreshToken string) (string, error) {
	claims, err := token.ValidateRefreshToken(refreshToken)
	if err != nil {
		return "", token.ErrInvalidToken
	}

	user, err := s.userRepo.FindByID(claims.UserID)
	if err != nil {
		return "", ErrUserNotFound
	}
	if user.IsBlocked {
		return "", ErrUserBlocked
	}

	return token.GenerateAccessToken(user.ID, string(user.Role))
}

func (s *authService) ResetPassword(email, oldPassword, newPassword string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		return ErrUserNotFound
	}

	if !user.CheckPassword(oldPassword) {
		return ErrWrongPassword
	}

	if err := user.SetPassword(newPassword); err != nil {
		return errors.New("failed to hash new password")
	}

	return s.userRepo.UpdatePassword(user.ID, user.Password)
}
