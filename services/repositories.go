package services

import (
	"context"

	"food-delivery/models"
)

// Repositories return models.ErrNotFound for a missing row.

type CatalogRepository interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id int64) (*models.Restaurant, error)
	ListMenuItems(ctx context.Context, restaurantID int64) ([]models.MenuItem, error)
	GetMenuItem(ctx context.Context, id int64) (*models.MenuItem, error)
	// GetMenuItems returns the subset of ids that exist.
	GetMenuItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) error
	// UpdateMenuItem, SetAvailability and DeleteMenuItem only touch rows of restaurantID.
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	SetAvailability(ctx context.Context, restaurantID, itemID int64, available bool) error
	DeleteMenuItem(ctx context.Context, restaurantID, itemID int64) error
}

// CartStore returns an empty cart for a customer without one.
type CartStore interface {
	GetCart(ctx context.Context, customerID int64) (*models.Cart, error)
	SaveCart(ctx context.Context, cart *models.Cart) error
	// UpdateCart applies fn to the current cart and saves the result as one
	// atomic step. A fn error leaves the cart unchanged.
	UpdateCart(ctx context.Context, customerID int64, fn func(*models.Cart) error) (*models.Cart, error)
	DeleteCart(ctx context.Context, customerID int64) error
}

type OrderRepository interface {
	// CreateOrder writes the header and items in one transaction and fills in ids and order date.
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id int64) (*models.Order, error)
	// UpdateStatus changes status only while it still equals from; otherwise ErrStatusConflict.
	UpdateStatus(ctx context.Context, id int64, from, to models.OrderStatus) error
	ListByCustomer(ctx context.Context, customerID int64) ([]models.OrderSummary, error)
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]models.OrderSummary, error)
	ListByDeliveryPartner(ctx context.Context, partnerID int64) ([]models.OrderSummary, error)
	// ListOpenUnassigned lists orders that are neither terminal nor claimed by a delivery partner.
	ListOpenUnassigned(ctx context.Context) ([]models.OrderSummary, error)
	// AssignDeliveryPartner claims an unassigned order; otherwise ErrAlreadyAssigned.
	AssignDeliveryPartner(ctx context.Context, orderID, partnerID int64) error
	// UpdateItemQuantity and RemoveItem succeed only while the order is Pending (ErrOrderLocked)
	// and store the recomputed membership discount.
	UpdateItemQuantity(ctx context.Context, orderID, itemID int64, quantity int, discount float64) error
	RemoveItem(ctx context.Context, orderID, itemID int64, discount float64) error
}

type MembershipRepository interface {
	GetMembership(ctx context.Context, customerID int64) (*models.Membership, error)
	UpsertMembership(ctx context.Context, m *models.Membership) error
}

type PaymentRepository interface {
	CreatePayment(ctx context.Context, p *models.Payment) error
	GetPaymentByOrder(ctx context.Context, orderID int64) (*models.Payment, error)
	// UpdatePaymentStatus changes status only while it still equals from; otherwise ErrStatusConflict.
	UpdatePaymentStatus(ctx context.Context, id int64, from, to models.PaymentStatus) error
}

type AccountRepository interface {
	// CreateAccount returns ErrUsernameTaken on a duplicate username.
	CreateAccount(ctx context.Context, a *models.Account, passwordHash string) error
	// CreatePartnerWithRestaurant creates the restaurant and its partner account atomically.
	CreatePartnerWithRestaurant(ctx context.Context, a *models.Account, passwordHash string, r *models.Restaurant) error
	FindByUsername(ctx context.Context, username string) (*models.Account, string, error)
	UpdatePassword(ctx context.Context, username, passwordHash string) error
}

type ThrottleStore interface {
	WaitSeconds(ctx context.Context, username string) (int, error)
	RecordFailure(ctx context.Context, username string) error
	RecordSuccess(ctx context.Context, username string) error
}

// ReportSource serves aggregate queries.
type ReportSource interface {
	DeliveryEarnings(ctx context.Context, partnerID int64) (float64, error)
	RestaurantSales(ctx context.Context, restaurantID int64) (*models.SalesSummary, error)
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error
}

type StatusNotifier interface {
	NotifyStatus(ctx context.Context, customerID, orderID int64, status models.OrderStatus) error
}
