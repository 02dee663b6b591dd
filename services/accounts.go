package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"food-delivery/models"
)

type SignupRequest struct {
	Role           models.Role `json:"role"`
	Username       string      `json:"username"`
	Password       string      `json:"password"`
	Name           string      `json:"name"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	TelegramChatID *int64      `json:"telegram_chat_id,omitempty"`

	// RestaurantPartner only.
	RestaurantName string `json:"restaurant_name"`
	Address        string `json:"address"`
	CuisineType    string `json:"cuisine_type"`

	// DeliveryPartner only.
	VehicleType   string `json:"vehicle_type"`
	VehicleNumber string `json:"vehicle_number"`
}

func (r *SignupRequest) validate() error {
	if !r.Role.Valid() {
		return models.NewValidationError("role", "must be Customer, RestaurantPartner or DeliveryPartner")
	}
	checks := []error{
		ValidateUsername(r.Username),
		ValidatePassword(r.Password),
		ValidateName(r.Name),
		ValidateEmail(r.Email),
		ValidatePhone(r.Phone),
	}
	switch r.Role {
	case models.RoleRestaurantPartner:
		checks = append(checks, ValidateRestaurantName(r.RestaurantName), ValidateAddress(r.Address))
	case models.RoleDeliveryPartner:
		checks = append(checks, ValidateVehicleNumber(r.VehicleNumber))
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}

type AccountService struct {
	repo     AccountRepository
	throttle ThrottleStore
	log      *slog.Logger
}

// NewAccountService wires account handling. throttle may be nil.
func NewAccountService(repo AccountRepository, throttle ThrottleStore, log *slog.Logger) *AccountService {
	return &AccountService{repo: repo, throttle: throttle, log: log}
}

func (s *AccountService) Signup(ctx context.Context, req SignupRequest) (*models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := req.validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	a := &models.Account{
		Username:       req.Username,
		Role:           req.Role,
		Name:           strings.TrimSpace(req.Name),
		Email:          req.Email,
		Phone:          req.Phone,
		TelegramChatID: req.TelegramChatID,
	}
	switch req.Role {
	case models.RoleRestaurantPartner:
		r := &models.Restaurant{
			Name:        strings.TrimSpace(req.RestaurantName),
			Address:     strings.TrimSpace(req.Address),
			CuisineType: strings.TrimSpace(req.CuisineType),
		}
		err = s.repo.CreatePartnerWithRestaurant(ctx, a, hash, r)
	case models.RoleDeliveryPartner:
		a.VehicleType = req.VehicleType
		a.VehicleNumber = req.VehicleNumber
		err = s.repo.CreateAccount(ctx, a, hash)
	default:
		err = s.repo.CreateAccount(ctx, a, hash)
	}
	if err != nil {
		if errors.Is(err, models.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	s.log.Info("account created", slog.Int64("account_id", a.ID), slog.String("role", string(a.Role)))
	return a, nil
}

// throttleKey matches the case-insensitive account lookup, so case variants
// of a username share one cooldown.
func throttleKey(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Login checks the password with bcrypt. Failed attempts start an exponential
// cooldown during which every attempt fails with *models.ThrottledError.
func (s *AccountService) Login(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if s.throttle != nil {
		wait, err := s.throttle.WaitSeconds(ctx, throttleKey(username))
		if err != nil {
			s.log.Warn("login throttle lookup", slog.Any("error", err))
		} else if wait > 0 {
			return nil, &models.ThrottledError{WaitSeconds: wait}
		}
	}

	a, hash, err := s.repo.FindByUsername(ctx, username)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("find account: %w", err)
	}
	if err != nil || !CheckPassword(hash, password) {
		s.recordFailure(ctx, username)
		return nil, models.ErrInvalidCredential
	}

	if s.throttle != nil {
		if err := s.throttle.RecordSuccess(ctx, throttleKey(username)); err != nil {
			s.log.Warn("reset login throttle", slog.Any("error", err))
		}
	}
	return a, nil
}

func (s *AccountService) recordFailure(ctx context.Context, username string) {
	s.log.Info("login failed", slog.String("username", username))
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, throttleKey(username)); err != nil {
		s.log.Warn("record login failure", slog.Any("error", err))
	}
}

// Lookup finds an account by username without checking a password.
func (s *AccountService) Lookup(ctx context.Context, username string) (*models.Account, error) {
	a, _, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("find account %q: %w", username, err)
	}
	return a, nil
}

// ResetPassword replaces the password with a generated one and returns it.
func (s *AccountService) ResetPassword(ctx context.Context, username string) (string, error) {
	password, err := GenerateSecurePassword()
	if err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return "", err
	}
	if err := s.repo.UpdatePassword(ctx, username, hash); err != nil {
		return "", fmt.Errorf("update password: %w", err)
	}
	if s.throttle != nil {
		if err := s.throttle.RecordSuccess(ctx, throttleKey(username)); err != nil {
			s.log.Warn("reset login throttle", slog.Any("error", err))
		}
	}
	s.log.Info("password reset", slog.String("username", username))
	return password, nil
}
