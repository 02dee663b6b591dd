package services

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"food-delivery/models"
)

var (
	usernameRe      = regexp.MustCompile(`^\w{3,30}$`)
	emailRe         = regexp.MustCompile(`^[\w.\-+]+@[\w.\-]+\.\w+$`)
	phoneRe         = regexp.MustCompile(`^\d{10}$`)
	vehicleNumberRe = regexp.MustCompile(`^[A-Z0-9-]{5,10}$`)
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

func ValidateUsername(username string) error {
	if !usernameRe.MatchString(username) {
		return models.NewValidationError("username", "must be 3-30 letters, digits or underscores")
	}
	return nil
}

// ValidatePassword requires 8+ characters with upper, lower, digit and special.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return models.NewValidationError("password", "must be at least 8 characters long")
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	switch {
	case !upper:
		return models.NewValidationError("password", "must contain an uppercase letter")
	case !lower:
		return models.NewValidationError("password", "must contain a lowercase letter")
	case !digit:
		return models.NewValidationError("password", "must contain a digit")
	case !special:
		return models.NewValidationError("password", "must contain a special character")
	}
	return nil
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.NewValidationError("name", "is required")
	}
	for _, r := range name {
		if !unicode.IsLetter(r) && r != ' ' {
			return models.NewValidationError("name", "must contain only letters")
		}
	}
	return nil
}

func ValidateEmail(email string) error {
	if !emailRe.MatchString(email) {
		return models.NewValidationError("email", "invalid format")
	}
	return nil
}

// ValidatePhone accepts an empty phone; otherwise 10 digits.
func ValidatePhone(phone string) error {
	if phone != "" && !phoneRe.MatchString(phone) {
		return models.NewValidationError("phone", "must be 10 digits")
	}
	return nil
}

func ValidateVehicleNumber(number string) error {
	if !vehicleNumberRe.MatchString(number) {
		return models.NewValidationError("vehicle_number", "must be 5-10 uppercase letters, digits or dashes")
	}
	return nil
}

func ValidateDiscountRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 100 {
		return models.NewValidationError("discount_rate", "must be between 0 and 100")
	}
	return nil
}

func ValidatePrice(price float64) error {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return models.NewValidationError("price", "must not be negative")
	}
	return nil
}

func ValidateQuantity(quantity int) error {
	if quantity < 1 || quantity > models.MaxQuantity {
		return models.NewValidationError("quantity", fmt.Sprintf("must be between 1 and %d", models.MaxQuantity))
	}
	return nil
}

func ValidateRestaurantName(name string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 1 || n > 100 {
		return models.NewValidationError("restaurant_name", "must be 1-100 characters")
	}
	return nil
}

func ValidateAddress(address string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(address)); n < 1 || n > 200 {
		return models.NewValidationError("address", "must be 1-200 characters")
	}
	return nil
}

// ValidateDescription allows an empty description.
func ValidateDescription(description string) error {
	if utf8.RuneCountInString(description) > 500 {
		return models.NewValidationError("description", "must be at most 500 characters")
	}
	return nil
}

func ValidateMenuItemName(name string) error {
	if n := utf8.RuneCountInString(strings.TrimSpace(name)); n < 1 || n > 100 {
		return models.NewValidationError("name", "must be 1-100 characters")
	}
	return nil
}

func ValidatePaymentMethod(m models.PaymentMethod) error {
	if !m.Valid() {
		return models.NewValidationError("method", "must be Credit Card, Debit Card, UPI or Cash on Delivery")
	}
	return nil
}

func ValidateOrderStatus(s models.OrderStatus) error {
	if !s.Valid() {
		return models.NewValidationError("status", "unknown order status")
	}
	return nil
}

func validateMenuItemInput(in models.MenuItemInput) error {
	if err := ValidateMenuItemName(in.Name); err != nil {
		return err
	}
	if err := ValidatePrice(in.Price); err != nil {
		return err
	}
	return ValidateDescription(in.Description)
}
