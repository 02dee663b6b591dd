package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"food-delivery/logger"
	"food-delivery/models"
	"food-delivery/services"
	"food-delivery/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolesRejectWrongAccount(t *testing.T) {
	e := newEnv(t, nil, nil)
	buyer := e.account(t, models.RoleCustomer, "alice")
	rider := e.account(t, models.RoleDeliveryPartner, "rider")

	_, err := e.roles.RestaurantPartner(buyer)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = e.roles.DeliveryPartner(buyer)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = e.roles.Customer(rider)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = e.roles.Customer(nil)
	assert.ErrorIs(t, err, models.ErrForbidden)

	orphan := &models.Account{ID: 99, Role: models.RoleRestaurantPartner}
	_, err = e.roles.RestaurantPartner(orphan)
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestCustomerCheckoutWithMembership(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, err := c.Subscribe(ctx, models.TierGold, 30)
	require.NoError(t, err)
	_, err = c.AddToCart(ctx, e.itemA.ID, 2)
	require.NoError(t, err)
	_, err = c.AddToCart(ctx, e.itemB.ID, 1)
	require.NoError(t, err)

	quote, err := c.ViewCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, 250.0, quote.Subtotal)
	assert.Equal(t, 225.0, quote.Total)

	o, err := c.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 225.0, o.Total())

	quote, err = c.ViewCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, quote.Lines)

	history := c.OrderHistory(ctx)
	require.Len(t, history, 1)
	assert.Equal(t, o.ID, history[0].ID)
}

func TestCustomerSubscribeIsTierOnly(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	m, err := c.Subscribe(ctx, models.TierSilver, 30)
	require.NoError(t, err)
	assert.Zero(t, m.DiscountRate)
	mult, err := e.roles.Pricing.MultiplierFor(ctx, c.ID())
	require.NoError(t, err)
	assert.Equal(t, 0.95, mult)

	_, err = e.roles.Pricing.Subscribe(ctx, c.ID(), models.TierNone, 10, 30)
	assert.True(t, models.IsValidation(err))
	_, err = e.roles.Pricing.Subscribe(ctx, c.ID(), models.TierGold, 100.5, 30)
	assert.True(t, models.IsValidation(err))
}

func TestFullRateMembershipPlacesZeroTotalOrder(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, err := e.roles.Pricing.Subscribe(ctx, c.ID(), models.TierGold, 100, 30)
	require.NoError(t, err)
	_, err = c.AddToCart(ctx, e.itemA.ID, 2)
	require.NoError(t, err)

	o, err := c.PlaceOrder(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.DiscountMultiplier)
	assert.Equal(t, 200.0, o.MembershipDiscount)
	assert.Equal(t, 0.0, o.Total())
}

func TestCustomerDoubleCheckoutPlacesOneOrder(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, err := c.AddToCart(ctx, e.itemA.ID, 1)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.PlaceOrder(ctx)
		}(i)
	}
	wg.Wait()

	var placed int
	for _, err := range errs {
		if err == nil {
			placed++
		} else {
			assert.ErrorIs(t, err, models.ErrEmptyOrder)
		}
	}
	assert.Equal(t, 1, placed)
	assert.Len(t, c.OrderHistory(ctx), 1)
}

func TestCustomerPlaceOrderFailureKeepsCart(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, _ = c.AddToCart(ctx, e.itemA.ID, 1)
	_, _ = c.AddToCart(ctx, e.foreign.ID, 1)
	_, err := c.PlaceOrder(ctx)
	assert.ErrorIs(t, err, models.ErrMixedRestaurants)

	quote, err := c.ViewCart(ctx)
	require.NoError(t, err)
	assert.Len(t, quote.Lines, 2)
}

func TestCustomerAddToCartChecksMenu(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, err := c.AddToCart(ctx, 12345, 1)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, e.mem.SetAvailability(ctx, e.restaurant.ID, e.itemB.ID, false))
	_, err = c.AddToCart(ctx, e.itemB.ID, 1)
	assert.ErrorIs(t, err, models.ErrItemUnavailable)
}

func TestCustomerCannotSeeForeignOrders(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	alice := e.customer(t, "alice")
	bob := e.customer(t, "bob")

	_, err := alice.AddToCart(ctx, e.itemA.ID, 1)
	require.NoError(t, err)
	o, err := alice.PlaceOrder(ctx)
	require.NoError(t, err)

	_, err = bob.OrderDetails(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = bob.TrackOrder(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = bob.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	status, err := alice.TrackOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, status)
}

func TestCustomerCancelRefundsPayment(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, _ = c.AddToCart(ctx, e.itemA.ID, 1)
	o, err := c.PlaceOrder(ctx)
	require.NoError(t, err)

	p, err := c.Pay(ctx, o.ID, models.PaymentUPI)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)
	assert.Equal(t, 100.0, p.Amount)

	_, err = c.Pay(ctx, o.ID, models.PaymentUPI)
	assert.ErrorIs(t, err, models.ErrAlreadyPaid)
	_, err = c.UpdateOrderItem(ctx, o.ID, o.Items[0].ID, 3)
	assert.ErrorIs(t, err, models.ErrAlreadyPaid)

	_, err = c.CancelOrder(ctx, o.ID)
	require.NoError(t, err)

	p, err = e.roles.Payments.ForOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, p.Status)
}

type brokenPayments struct {
	*store.Memory
}

func (brokenPayments) UpdatePaymentStatus(context.Context, int64, models.PaymentStatus, models.PaymentStatus) error {
	return errors.New("payments unavailable")
}

func TestCancelStandsWhenRefundFails(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")

	_, _ = c.AddToCart(ctx, e.itemA.ID, 1)
	o, err := c.PlaceOrder(ctx)
	require.NoError(t, err)
	_, err = c.Pay(ctx, o.ID, models.PaymentUPI)
	require.NoError(t, err)

	e.roles.Payments = services.NewPaymentService(brokenPayments{e.mem}, logger.Discard())
	cancelled, err := c.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)

	status, err := c.TrackOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, status)
	p, err := e.roles.Payments.ForOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)
}

func TestRestaurantPartnerScopedToOwnRestaurant(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	p := e.partner(t)
	c := e.customer(t, "alice")

	foreign, err := e.roles.Orders.Place(ctx, c.ID(), []models.CartEntry{{MenuItemID: e.foreign.ID, Quantity: 1}}, 1)
	require.NoError(t, err)
	_, err = p.UpdateOrderStatus(ctx, foreign.ID, models.OrderStatusPreparing)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = p.UpdateMenuItem(ctx, e.foreign.ID, models.MenuItemInput{Name: "Ramen", Price: 1})
	assert.ErrorIs(t, err, models.ErrForbidden)
	assert.ErrorIs(t, p.RemoveMenuItem(ctx, e.foreign.ID), models.ErrNotFound)

	own, err := e.roles.Orders.Place(ctx, c.ID(), []models.CartEntry{{MenuItemID: e.itemA.ID, Quantity: 1}}, 1)
	require.NoError(t, err)
	_, err = p.UpdateOrderStatus(ctx, own.ID, models.OrderStatusDelivered)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	updated, err := p.UpdateOrderStatus(ctx, own.ID, models.OrderStatusPreparing)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPreparing, updated.Status)

	orders := p.ViewOrders(ctx)
	require.Len(t, orders, 1)
	assert.Equal(t, own.ID, orders[0].ID)
}

func TestRestaurantPartnerManagesMenu(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	p := e.partner(t)

	off := false
	item, err := p.AddMenuItem(ctx, models.MenuItemInput{Name: "Kulfi", Price: 40, Available: &off})
	require.NoError(t, err)
	assert.False(t, item.Available)
	assert.Equal(t, e.restaurant.ID, item.RestaurantID)

	require.NoError(t, p.SetAvailability(ctx, item.ID, true))
	updated, err := p.UpdateMenuItem(ctx, item.ID, models.MenuItemInput{Name: "Mango Kulfi", Price: 45})
	require.NoError(t, err)
	assert.True(t, updated.Available)
	assert.Equal(t, 45.0, updated.Price)

	assert.Len(t, p.Menu(ctx), 3)
	require.NoError(t, p.RemoveMenuItem(ctx, item.ID))
	assert.Len(t, p.Menu(ctx), 2)

	_, err = p.AddMenuItem(ctx, models.MenuItemInput{Name: "", Price: 10})
	assert.True(t, models.IsValidation(err))
	_, err = p.AddMenuItem(ctx, models.MenuItemInput{Name: "Free lunch", Price: -1})
	assert.True(t, models.IsValidation(err))
}

func TestDeliveryFlowSettlesCashOnDelivery(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")
	kitchen := e.partner(t)
	rider := e.driver(t, "rider")
	other := e.driver(t, "other")

	_, _ = c.AddToCart(ctx, e.itemA.ID, 2)
	o, err := c.PlaceOrder(ctx)
	require.NoError(t, err)
	p, err := c.Pay(ctx, o.ID, models.PaymentCashOnDelivery)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)

	_, err = rider.AcceptOrder(ctx, o.ID)
	require.NoError(t, err)
	_, err = other.AcceptOrder(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrAlreadyAssigned)

	_, err = kitchen.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPreparing)
	require.NoError(t, err)

	_, err = other.UpdateOrderStatus(ctx, o.ID, models.OrderStatusOutForDelivery)
	assert.ErrorIs(t, err, models.ErrForbidden)
	_, err = rider.UpdateOrderStatus(ctx, o.ID, models.OrderStatusPreparing)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = rider.UpdateOrderStatus(ctx, o.ID, models.OrderStatusOutForDelivery)
	require.NoError(t, err)
	_, err = rider.UpdateOrderStatus(ctx, o.ID, models.OrderStatusDelivered)
	require.NoError(t, err)

	p, err = e.roles.Payments.ForOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, p.Status)

	earnings, err := rider.Earnings(ctx)
	require.NoError(t, err)
	assert.Equal(t, 200.0, earnings)

	assigned := rider.ViewAssignedOrders(ctx)
	require.Len(t, assigned, 1)
	assert.Empty(t, other.ViewAssignedOrders(ctx))

	sales, err := kitchen.Sales(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sales.DeliveredOrders)
	assert.Equal(t, 200.0, sales.Revenue)

	_, err = c.CancelOrder(ctx, o.ID)
	assert.ErrorIs(t, err, models.ErrNotCancellable)
}

func TestDeliveryPartnerSeesOpenOrders(t *testing.T) {
	e := newEnv(t, nil, nil)
	ctx := context.Background()
	c := e.customer(t, "alice")
	rider := e.driver(t, "rider")

	_, _ = c.AddToCart(ctx, e.itemA.ID, 1)
	first, err := c.PlaceOrder(ctx)
	require.NoError(t, err)
	_, _ = c.AddToCart(ctx, e.itemB.ID, 1)
	second, err := c.PlaceOrder(ctx)
	require.NoError(t, err)
	_, _ = c.AddToCart(ctx, e.itemB.ID, 1)
	third, err := c.PlaceOrder(ctx)
	require.NoError(t, err)

	_, err = c.CancelOrder(ctx, third.ID)
	require.NoError(t, err)
	_, err = rider.AcceptOrder(ctx, first.ID)
	require.NoError(t, err)

	open := rider.ViewOpenOrders(ctx)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)
}
