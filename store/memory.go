package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"food-delivery/models"
	"food-delivery/services"
)

// Memory keeps every table in process. It backs STORE_BACKEND=memory and tests.
type Memory struct {
	mu sync.RWMutex
	// cartMu serializes cart read-modify-writes. It is separate from mu so
	// an update callback may place orders.
	cartMu sync.Mutex

	restaurants map[int64]models.Restaurant
	menuItems   map[int64]models.MenuItem
	orders      map[int64]models.Order
	memberships map[int64]models.Membership
	payments    map[int64]models.Payment // by order id
	accounts    map[string]memAccount
	carts       map[int64][]byte
	throttle    map[string]memThrottle

	seq map[string]int64
	now func() time.Time
}

type memAccount struct {
	account models.Account
	hash    string
}

type memThrottle struct {
	failCount     int
	cooldownUntil time.Time
}

var (
	_ services.CatalogRepository    = (*Memory)(nil)
	_ services.CartStore            = (*Memory)(nil)
	_ services.OrderRepository      = (*Memory)(nil)
	_ services.MembershipRepository = (*Memory)(nil)
	_ services.PaymentRepository    = (*Memory)(nil)
	_ services.AccountRepository    = (*Memory)(nil)
	_ services.ThrottleStore        = (*Memory)(nil)
	_ services.ReportSource         = (*Memory)(nil)
)

func NewMemory() *Memory {
	return &Memory{
		restaurants: make(map[int64]models.Restaurant),
		menuItems:   make(map[int64]models.MenuItem),
		orders:      make(map[int64]models.Order),
		memberships: make(map[int64]models.Membership),
		payments:    make(map[int64]models.Payment),
		accounts:    make(map[string]memAccount),
		carts:       make(map[int64][]byte),
		throttle:    make(map[string]memThrottle),
		seq:         make(map[string]int64),
		now:         time.Now,
	}
}

func (m *Memory) next(table string) int64 {
	m.seq[table]++
	return m.seq[table]
}

// Catalog

func (m *Memory) CreateRestaurant(_ context.Context, r *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.createRestaurant(r)
	return nil
}

func (m *Memory) createRestaurant(r *models.Restaurant) {
	r.ID = m.next("restaurants")
	r.CreatedAt = m.now()
	m.restaurants[r.ID] = *r
}

func (m *Memory) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Restaurant, 0, len(m.restaurants))
	for _, r := range m.restaurants {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) GetRestaurant(_ context.Context, id int64) (*models.Restaurant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (m *Memory) ListMenuItems(_ context.Context, restaurantID int64) ([]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.MenuItem
	for _, it := range m.menuItems {
		if it.RestaurantID == restaurantID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetMenuItem(_ context.Context, id int64) (*models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	it, ok := m.menuItems[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &it, nil
}

func (m *Memory) GetMenuItems(_ context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int64]models.MenuItem, len(ids))
	for _, id := range ids {
		if it, ok := m.menuItems[id]; ok {
			out[id] = it
		}
	}
	return out, nil
}

func (m *Memory) CreateMenuItem(_ context.Context, item *models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.restaurants[item.RestaurantID]; !ok {
		return fmt.Errorf("restaurant %d: %w", item.RestaurantID, models.ErrNotFound)
	}
	item.ID = m.next("menu_items")
	m.menuItems[item.ID] = *item
	return nil
}

func (m *Memory) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.menuItems[item.ID]
	if !ok || cur.RestaurantID != item.RestaurantID {
		return models.ErrNotFound
	}
	m.menuItems[item.ID] = *item
	return nil
}

func (m *Memory) SetAvailability(_ context.Context, restaurantID, itemID int64, available bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.menuItems[itemID]
	if !ok || cur.RestaurantID != restaurantID {
		return models.ErrNotFound
	}
	cur.Available = available
	m.menuItems[itemID] = cur
	return nil
}

func (m *Memory) DeleteMenuItem(_ context.Context, restaurantID, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.menuItems[itemID]
	if !ok || cur.RestaurantID != restaurantID {
		return models.ErrNotFound
	}
	delete(m.menuItems, itemID)
	return nil
}

// Carts are stored serialized so callers never share slices with the store.

func (m *Memory) GetCart(_ context.Context, customerID int64) (*models.Cart, error) {
	m.mu.RLock()
	raw, ok := m.carts[customerID]
	m.mu.RUnlock()
	if !ok {
		return models.NewCart(customerID), nil
	}
	return decodeCart(customerID, raw)
}

func (m *Memory) SaveCart(_ context.Context, cart *models.Cart) error {
	m.cartMu.Lock()
	defer m.cartMu.Unlock()
	return m.saveCart(cart)
}

func (m *Memory) saveCart(cart *models.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}
	m.mu.Lock()
	m.carts[cart.CustomerID] = raw
	m.mu.Unlock()
	return nil
}

func (m *Memory) UpdateCart(ctx context.Context, customerID int64, fn func(*models.Cart) error) (*models.Cart, error) {
	m.cartMu.Lock()
	defer m.cartMu.Unlock()
	c, err := m.GetCart(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := m.saveCart(c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCart empties the cart but keeps its entry counter.
func (m *Memory) DeleteCart(ctx context.Context, customerID int64) error {
	_, err := m.UpdateCart(ctx, customerID, func(c *models.Cart) error {
		c.Clear()
		return nil
	})
	return err
}

// Orders

func (m *Memory) CreateOrder(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = m.next("orders")
	o.OrderDate = m.now()
	if r, ok := m.restaurants[o.RestaurantID]; ok {
		o.RestaurantName = r.Name
	}
	for i := range o.Items {
		o.Items[i].ID = m.next("order_items")
		o.Items[i].OrderID = o.ID
	}
	m.orders[o.ID] = cloneOrder(*o)
	return nil
}

func (m *Memory) GetOrder(_ context.Context, id int64) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	c := cloneOrder(o)
	for i, it := range c.Items {
		if mi, ok := m.menuItems[it.MenuItemID]; ok {
			c.Items[i].Name = mi.Name
		}
	}
	return &c, nil
}

func (m *Memory) UpdateStatus(_ context.Context, id int64, from, to models.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return models.ErrNotFound
	}
	if o.Status != from {
		return models.ErrStatusConflict
	}
	o.Status = to
	m.orders[id] = o
	return nil
}

func (m *Memory) listOrders(keep func(models.Order) bool) []models.OrderSummary {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.OrderSummary{}
	for _, o := range m.orders {
		if !keep(o) {
			continue
		}
		out = append(out, models.OrderSummary{
			ID:                o.ID,
			CustomerID:        o.CustomerID,
			RestaurantID:      o.RestaurantID,
			RestaurantName:    m.restaurants[o.RestaurantID].Name,
			Status:            o.Status,
			OrderDate:         o.OrderDate,
			DeliveryPartnerID: o.DeliveryPartnerID,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *Memory) ListByCustomer(_ context.Context, customerID int64) ([]models.OrderSummary, error) {
	return m.listOrders(func(o models.Order) bool { return o.CustomerID == customerID }), nil
}

func (m *Memory) ListByRestaurant(_ context.Context, restaurantID int64) ([]models.OrderSummary, error) {
	return m.listOrders(func(o models.Order) bool { return o.RestaurantID == restaurantID }), nil
}

func (m *Memory) ListByDeliveryPartner(_ context.Context, partnerID int64) ([]models.OrderSummary, error) {
	return m.listOrders(func(o models.Order) bool {
		return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == partnerID
	}), nil
}

func (m *Memory) ListOpenUnassigned(_ context.Context) ([]models.OrderSummary, error) {
	return m.listOrders(func(o models.Order) bool {
		return o.DeliveryPartnerID == nil && !o.Status.Terminal()
	}), nil
}

func (m *Memory) AssignDeliveryPartner(_ context.Context, orderID, partnerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return models.ErrNotFound
	}
	if o.DeliveryPartnerID != nil {
		return models.ErrAlreadyAssigned
	}
	o.DeliveryPartnerID = &partnerID
	m.orders[orderID] = o
	return nil
}

func (m *Memory) UpdateItemQuantity(_ context.Context, orderID, itemID int64, quantity int, discount float64) error {
	return m.editPending(orderID, itemID, discount, func(o *models.Order, i int) {
		o.Items[i].Quantity = quantity
	})
}

func (m *Memory) RemoveItem(_ context.Context, orderID, itemID int64, discount float64) error {
	return m.editPending(orderID, itemID, discount, func(o *models.Order, i int) {
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
	})
}

func (m *Memory) editPending(orderID, itemID int64, discount float64, fn func(*models.Order, int)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok {
		return models.ErrNotFound
	}
	if o.Status != models.OrderStatusPending {
		return models.ErrOrderLocked
	}
	o = cloneOrder(o)
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			fn(&o, i)
			o.MembershipDiscount = discount
			m.orders[orderID] = o
			return nil
		}
	}
	return models.ErrNotFound
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}

// Memberships

func (m *Memory) GetMembership(_ context.Context, customerID int64) (*models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ms, ok := m.memberships[customerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &ms, nil
}

func (m *Memory) UpsertMembership(_ context.Context, ms *models.Membership) error {
	m.mu.Lock()
	m.memberships[ms.CustomerID] = *ms
	m.mu.Unlock()
	return nil
}

// Payments

func (m *Memory) CreatePayment(_ context.Context, p *models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.payments[p.OrderID]; ok {
		return models.ErrAlreadyPaid
	}
	p.ID = m.next("payments")
	m.payments[p.OrderID] = *p
	return nil
}

func (m *Memory) GetPaymentByOrder(_ context.Context, orderID int64) (*models.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[orderID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &p, nil
}

func (m *Memory) UpdatePaymentStatus(_ context.Context, id int64, from, to models.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for orderID, p := range m.payments {
		if p.ID != id {
			continue
		}
		if p.Status != from {
			return models.ErrStatusConflict
		}
		p.Status = to
		m.payments[orderID] = p
		return nil
	}
	return models.ErrNotFound
}

// Accounts

func (m *Memory) CreateAccount(_ context.Context, a *models.Account, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createAccount(a, passwordHash)
}

func (m *Memory) createAccount(a *models.Account, passwordHash string) error {
	key := strings.ToLower(a.Username)
	if _, ok := m.accounts[key]; ok {
		return models.ErrUsernameTaken
	}
	a.ID = m.next("accounts")
	a.CreatedAt = m.now()
	m.accounts[key] = memAccount{account: *a, hash: passwordHash}
	return nil
}

func (m *Memory) CreatePartnerWithRestaurant(_ context.Context, a *models.Account, passwordHash string, r *models.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.accounts[strings.ToLower(a.Username)]; ok {
		return models.ErrUsernameTaken
	}
	m.createRestaurant(r)
	a.RestaurantID = &r.ID
	return m.createAccount(a, passwordHash)
}

func (m *Memory) FindByUsername(_ context.Context, username string) (*models.Account, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.accounts[strings.ToLower(username)]
	if !ok {
		return nil, "", models.ErrNotFound
	}
	a := rec.account
	return &a, rec.hash, nil
}

func (m *Memory) UpdatePassword(_ context.Context, username, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(username)
	rec, ok := m.accounts[key]
	if !ok {
		return models.ErrNotFound
	}
	rec.hash = passwordHash
	m.accounts[key] = rec
	return nil
}

// TelegramChatID implements notify.ChatDirectory.
func (m *Memory) TelegramChatID(_ context.Context, accountID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.accounts {
		if rec.account.ID == accountID && rec.account.TelegramChatID != nil {
			return *rec.account.TelegramChatID, true, nil
		}
	}
	return 0, false, nil
}

// Login throttle

func (m *Memory) WaitSeconds(_ context.Context, username string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.throttle[username]
	if !ok {
		return 0, nil
	}
	return waitSeconds(m.now(), t.cooldownUntil), nil
}

func (m *Memory) RecordFailure(_ context.Context, username string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.throttle[username]
	t.failCount++
	t.cooldownUntil = m.now().Add(time.Duration(services.CooldownSecondsForFailCount(t.failCount)) * time.Second)
	m.throttle[username] = t
	return nil
}

func (m *Memory) RecordSuccess(_ context.Context, username string) error {
	m.mu.Lock()
	delete(m.throttle, username)
	m.mu.Unlock()
	return nil
}

// Reports

func (m *Memory) DeliveryEarnings(_ context.Context, partnerID int64) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var sum float64
	for _, o := range m.orders {
		if o.Status != models.OrderStatusDelivered || o.DeliveryPartnerID == nil || *o.DeliveryPartnerID != partnerID {
			continue
		}
		if p, ok := m.payments[o.ID]; ok && p.Status == models.PaymentCompleted {
			sum += p.Amount
		}
	}
	return models.RoundCents(sum), nil
}

func (m *Memory) RestaurantSales(_ context.Context, restaurantID int64) (*models.SalesSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := &models.SalesSummary{RestaurantID: restaurantID}
	for _, o := range m.orders {
		if o.RestaurantID != restaurantID || o.Status != models.OrderStatusDelivered {
			continue
		}
		s.DeliveredOrders++
		s.Revenue += o.Total()
	}
	s.Revenue = models.RoundCents(s.Revenue)
	return s, nil
}

func waitSeconds(now, until time.Time) int {
	if until.IsZero() || !now.Before(until) {
		return 0
	}
	return int(until.Sub(now).Seconds()) + 1
}
