package services_test

import (
	"context"
	"errors"
	"testing"

	"food-delivery/models"
	"food-delivery/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSignup(role models.Role, username string) services.SignupRequest {
	return services.SignupRequest{
		Role:     role,
		Username: username,
		Password: "Secr3t!pass",
		Name:     "Asha Rao",
		Email:    "asha@example.com",
		Phone:    "9876543210",
	}
}

func TestSignupCustomerThenLogin(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	a, err := e.accounts.Signup(ctx, validSignup(models.RoleCustomer, "asha"))
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	got, err := e.accounts.Login(ctx, "asha", "Secr3t!pass")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Equal(t, models.RoleCustomer, got.Role)

	_, err = e.accounts.Signup(ctx, validSignup(models.RoleCustomer, "ASHA"))
	assert.ErrorIs(t, err, models.ErrUsernameTaken)
}

func TestSignupRestaurantPartnerCreatesRestaurant(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	req := validSignup(models.RoleRestaurantPartner, "dosa_king")
	req.RestaurantName = "Dosa King"
	req.Address = "7 Temple Rd"
	req.CuisineType = "South Indian"
	a, err := e.accounts.Signup(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, a.RestaurantID)

	p, err := e.roles.RestaurantPartner(a)
	require.NoError(t, err)
	assert.Empty(t, p.Menu(ctx))

	var names []string
	for _, r := range e.roles.Catalog.ListRestaurants(ctx) {
		names = append(names, r.Name)
	}
	assert.Contains(t, names, "Dosa King")
}

func TestSignupValidation(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		edit  func(*services.SignupRequest)
		field string
	}{
		{"bad role", func(r *services.SignupRequest) { r.Role = "Admin" }, "role"},
		{"short username", func(r *services.SignupRequest) { r.Username = "ab" }, "username"},
		{"weak password", func(r *services.SignupRequest) { r.Password = "password" }, "password"},
		{"digits in name", func(r *services.SignupRequest) { r.Name = "R2D2" }, "name"},
		{"bad email", func(r *services.SignupRequest) { r.Email = "nope" }, "email"},
		{"bad phone", func(r *services.SignupRequest) { r.Phone = "12345" }, "phone"},
		{"rider without vehicle", func(r *services.SignupRequest) { r.Role = models.RoleDeliveryPartner }, "vehicle_number"},
		{"partner without restaurant", func(r *services.SignupRequest) { r.Role = models.RoleRestaurantPartner }, "restaurant_name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup(models.RoleCustomer, "valid_user")
			tt.edit(&req)
			_, err := e.accounts.Signup(ctx, req)
			var verr *models.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestLoginThrottlesAfterFailure(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	_, err := e.accounts.Signup(ctx, validSignup(models.RoleCustomer, "asha"))
	require.NoError(t, err)

	_, err = e.accounts.Login(ctx, "asha", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)

	_, err = e.accounts.Login(ctx, "asha", "Secr3t!pass")
	var throttled *models.ThrottledError
	require.True(t, errors.As(err, &throttled), "got %v", err)
	assert.Greater(t, throttled.WaitSeconds, 0)
	assert.LessOrEqual(t, throttled.WaitSeconds, services.ThrottleCooldownCapSeconds)
}

func TestLoginThrottleIgnoresUsernameCase(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	_, err := e.accounts.Signup(ctx, validSignup(models.RoleCustomer, "carol"))
	require.NoError(t, err)

	_, err = e.accounts.Login(ctx, "carol", "wrong")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)

	var throttled *models.ThrottledError
	for _, variant := range []string{"CAROL", "Carol", " cArOl "} {
		_, err = e.accounts.Login(ctx, variant, "Secr3t!pass")
		assert.True(t, errors.As(err, &throttled), "%q: got %v", variant, err)
	}

	_, err = e.accounts.ResetPassword(ctx, "CAROL")
	require.NoError(t, err)
	wait, err := e.mem.WaitSeconds(ctx, "carol")
	require.NoError(t, err)
	assert.Zero(t, wait)
}

func TestLookup(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	created, err := e.accounts.Signup(ctx, validSignup(models.RoleCustomer, "asha"))
	require.NoError(t, err)

	a, err := e.accounts.Lookup(ctx, " ASHA")
	require.NoError(t, err)
	assert.Equal(t, created.ID, a.ID)

	_, err = e.accounts.Lookup(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLoginUnknownUser(t *testing.T) {
	e := newEnv(t, nil, nil)
	_, err := e.accounts.Login(context.Background(), "ghost", "Secr3t!pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
}

func TestResetPassword(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	_, err := e.accounts.Signup(ctx, validSignup(models.RoleCustomer, "asha"))
	require.NoError(t, err)

	password, err := e.accounts.ResetPassword(ctx, "asha")
	require.NoError(t, err)
	require.NoError(t, services.ValidatePassword(password))

	_, err = e.accounts.Login(ctx, "asha", password)
	require.NoError(t, err)

	_, err = e.accounts.ResetPassword(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
