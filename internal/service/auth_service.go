package service

import (
	"errors"

	"go-repricer-ws/internal/model"
	"go-repricer-ws/internal/repository"
	"go-repricer-ws/pkg/jwt"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSellerInactive     = errors.New("seller account is deactivated")
)

type LoginResult struct {
	Token  string        `json:"token"`
	Seller *model.Seller `json:"seller"`
}

type AuthService interface {
	Login(email, password string) (*LoginResult, error)
	ValidateToken(token string) (*jwt.Claims, error)
}

type authService struct {
	sellerRepo repository.SellerRepository
	log        *zap.Logger
}

func NewAuthService(sellerRepo repository.SellerRepository, log *zap.Logger) AuthService {
	return &authService{sellerRepo: sellerRepo, log: log}
}

func (s *authService) Login(email, password string) (*LoginResult, error) {
	seller, err := s.sellerRepo.FindByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !seller.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !seller.IsActive {
		return nil, ErrSellerInactive
	}

	token, err := jwt.GenerateToken(seller.ID, seller.Email, seller.FullName)
	if err != nil {
		return nil, err
	}

	if err := s.sellerRepo.UpdateLastSeen(seller.ID); err != nil {
		s.log.Warn("failed to update last seen", zap.Error(err))
	}

	return &LoginResult{Token: token, Seller: seller}, nil
}

func (s *authService) ValidateToken(token string) (*jwt.Claims, error) {
	return jwt.ValidateToken(token)
}
