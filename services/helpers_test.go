package services_test

import (
	"context"
	"testing"

	"food-delivery/logger"
	"food-delivery/models"
	"food-delivery/services"
	"food-delivery/store"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishOrderEvent(ctx context.Context, ev models.OrderEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyStatus(ctx context.Context, customerID, orderID int64, status models.OrderStatus) error {
	return m.Called(ctx, customerID, orderID, status).Error(0)
}

type env struct {
	mem        *store.Memory
	roles      *services.Roles
	accounts   *services.AccountService
	restaurant models.Restaurant
	other      models.Restaurant
	itemA      models.MenuItem // 100.00
	itemB      models.MenuItem // 50.00
	foreign    models.MenuItem // other restaurant
}

// newEnv wires every service on an in-memory store. publisher and notifier may be nil.
func newEnv(t *testing.T, publisher services.EventPublisher, notifier services.StatusNotifier) *env {
	t.Helper()
	ctx := context.Background()
	log := logger.Discard()
	mem := store.NewMemory()

	e := &env{mem: mem}
	e.restaurant = models.Restaurant{Name: "Spice Hub", Address: "1 Main St"}
	e.other = models.Restaurant{Name: "Noodle Bar", Address: "2 Side St"}
	require.NoError(t, mem.CreateRestaurant(ctx, &e.restaurant))
	require.NoError(t, mem.CreateRestaurant(ctx, &e.other))

	e.itemA = models.MenuItem{RestaurantID: e.restaurant.ID, Name: "Paneer Tikka", Price: 100, Available: true}
	e.itemB = models.MenuItem{RestaurantID: e.restaurant.ID, Name: "Lassi", Price: 50, Available: true}
	e.foreign = models.MenuItem{RestaurantID: e.other.ID, Name: "Ramen", Price: 80, Available: true}
	for _, it := range []*models.MenuItem{&e.itemA, &e.itemB, &e.foreign} {
		require.NoError(t, mem.CreateMenuItem(ctx, it))
	}

	catalog := services.NewCatalogService(mem, log)
	orders := services.NewOrderService(mem, catalog, publisher, notifier, log)
	e.roles = &services.Roles{
		Catalog:  catalog,
		Carts:    services.NewCartService(mem, catalog, log),
		Orders:   orders,
		Pricing:  services.NewPricingService(mem, log),
		Payments: services.NewPaymentService(mem, log),
		Reports:  mem,
		Log:      log,
	}
	e.accounts = services.NewAccountService(mem, mem, log)
	return e
}

func (e *env) account(t *testing.T, role models.Role, username string) *models.Account {
	t.Helper()
	a := &models.Account{Username: username, Role: role, Name: "Test"}
	if role == models.RoleRestaurantPartner {
		a.RestaurantID = &e.restaurant.ID
	}
	require.NoError(t, e.mem.CreateAccount(context.Background(), a, "x"))
	return a
}

func (e *env) customer(t *testing.T, username string) *services.Customer {
	t.Helper()
	c, err := e.roles.Customer(e.account(t, models.RoleCustomer, username))
	require.NoError(t, err)
	return c
}

func (e *env) partner(t *testing.T) *services.RestaurantPartner {
	t.Helper()
	p, err := e.roles.RestaurantPartner(e.account(t, models.RoleRestaurantPartner, "kitchen"))
	require.NoError(t, err)
	return p
}

func (e *env) driver(t *testing.T, username string) *services.DeliveryPartner {
	t.Helper()
	d, err := e.roles.DeliveryPartner(e.account(t, models.RoleDeliveryPartner, username))
	require.NoError(t, err)
	return d
}
