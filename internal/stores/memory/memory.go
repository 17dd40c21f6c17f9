// Package memory is the reference store: shared tables guarded by a single
// mutex, process-lifetime only. It is the test double for the storage
// contract; the postgres store is the durable counterpart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"techstore/internal/appointments"
	"techstore/internal/cart"
	"techstore/internal/orders"
	"techstore/internal/products"
	"techstore/internal/sessions"
	"techstore/internal/users"
)

// DB holds every table. All mutations run under mu, so the cart add-merge
// read-sum-write is a single critical section.
type DB struct {
	mu           sync.Mutex
	users        map[string]users.User
	sessions     map[string]sessions.Session // keyed by token
	products     map[string]products.Product
	cartItems    map[string]cart.CartItem
	appointments map[string]appointments.Appointment
	orders       map[string]orders.Order
}

var (
	_ users.Store        = (*DB)(nil)
	_ sessions.Store     = (*DB)(nil)
	_ products.Store     = (*DB)(nil)
	_ cart.Store         = (*DB)(nil)
	_ appointments.Store = (*DB)(nil)
	_ orders.Store       = (*DB)(nil)
)

func New() *DB {
	return &DB{
		users:        make(map[string]users.User),
		sessions:     make(map[string]sessions.Session),
		products:     make(map[string]products.Product),
		cartItems:    make(map[string]cart.CartItem),
		appointments: make(map[string]appointments.Appointment),
		orders:       make(map[string]orders.Order),
	}
}

// --- users.Store ---

func (db *DB) CreateUser(ctx context.Context, nu users.NewUser) (users.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == nu.Username || u.Email == nu.Email {
			return users.User{}, users.ErrAlreadyExists
		}
	}
	u := users.User{
		ID:           uuid.NewString(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
	}
	db.users[u.ID] = u
	return u, nil
}

func (db *DB) GetUserByID(ctx context.Context, id string) (users.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	u, ok := db.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (db *DB) GetUserByUsername(ctx context.Context, username string) (users.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Username == username {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

func (db *DB) GetUserByEmail(ctx context.Context, email string) (users.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.Email == email {
			return u, nil
		}
	}
	return users.User{}, users.ErrNotFound
}

// --- sessions.Store ---

func (db *DB) CreateSession(ctx context.Context, s sessions.Session) (sessions.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s.ID = uuid.NewString()
	db.sessions[s.Token] = s
	return s, nil
}

func (db *DB) GetSessionByToken(ctx context.Context, token string) (sessions.Session, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	s, ok := db.sessions[token]
	if !ok {
		return sessions.Session{}, sessions.ErrTokenNotFound
	}
	return s, nil
}

func (db *DB) DeleteSession(ctx context.Context, token string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, ok := db.sessions[token]
	delete(db.sessions, token)
	return ok, nil
}

// --- products.Store ---

func (db *DB) InsertProduct(ctx context.Context, np products.NewProduct) (products.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p := products.Product{
		ID:             uuid.NewString(),
		Name:           np.Name,
		Description:    np.Description,
		Price:          np.Price,
		OriginalPrice:  np.OriginalPrice,
		Category:       np.Category,
		ImageURL:       np.ImageURL,
		Rating:         np.Rating,
		ReviewCount:    np.ReviewCount,
		InStock:        np.InStock,
		Featured:       np.Featured,
		Tags:           np.Tags,
		Specifications: np.Specifications,
	}
	db.products[p.ID] = p
	return p, nil
}

func (db *DB) GetProductByID(ctx context.Context, id string) (products.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	p, ok := db.products[id]
	if !ok {
		return products.Product{}, products.ErrNotFound
	}
	return p, nil
}

func (db *DB) ListProducts(ctx context.Context, f products.Filter) ([]products.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []products.Product
	for _, p := range db.products {
		if products.MatchesFilter(p, f) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (db *DB) SearchProducts(ctx context.Context, query string) ([]products.Product, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []products.Product
	for _, p := range db.products {
		if products.MatchesQuery(p, query) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (db *DB) CountProducts(ctx context.Context) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.products), nil
}

// --- cart.Store ---

func (db *DB) UpsertCartItem(ctx context.Context, sessionID, productID string, quantity int) (cart.CartItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, item := range db.cartItems {
		if item.SessionID == sessionID && item.ProductID == productID {
			item.Quantity += quantity
			db.cartItems[id] = item
			return item, nil
		}
	}
	item := cart.CartItem{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now().UTC(),
	}
	db.cartItems[item.ID] = item
	return item, nil
}

func (db *DB) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (cart.CartItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	item, ok := db.cartItems[id]
	if !ok {
		return cart.CartItem{}, cart.ErrNotFound
	}
	item.Quantity = quantity
	db.cartItems[id] = item
	return item, nil
}

func (db *DB) RemoveCartItem(ctx context.Context, id string) (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	_, ok := db.cartItems[id]
	delete(db.cartItems, id)
	return ok, nil
}

func (db *DB) ClearCart(ctx context.Context, sessionID string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for id, item := range db.cartItems {
		if item.SessionID == sessionID {
			delete(db.cartItems, id)
		}
	}
	return nil
}

func (db *DB) GetCartItems(ctx context.Context, sessionID string) ([]cart.CartItem, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []cart.CartItem
	for _, item := range db.cartItems {
		if item.SessionID == sessionID {
			out = append(out, item)
		}
	}
	return out, nil
}

// --- appointments.Store ---

func (db *DB) CreateAppointment(ctx context.Context, na appointments.NewAppointment) (appointments.Appointment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	a := appointments.Appointment{
		ID:               uuid.NewString(),
		UserID:           na.UserID,
		FullName:         na.FullName,
		Phone:            na.Phone,
		Email:            na.Email,
		Device:           na.Device,
		IssueDescription: na.IssueDescription,
		Status:           appointments.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	db.appointments[a.ID] = a
	return a, nil
}

func (db *DB) GetAppointmentByID(ctx context.Context, id string) (appointments.Appointment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.appointments[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	return a, nil
}

func (db *DB) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]appointments.Appointment, 0, len(db.appointments))
	for _, a := range db.appointments {
		out = append(out, a)
	}
	return out, nil
}

func (db *DB) ListUserAppointments(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []appointments.Appointment
	for _, a := range db.appointments {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (db *DB) UpdateAppointmentStatus(ctx context.Context, id string, status appointments.Status) (appointments.Appointment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	a, ok := db.appointments[id]
	if !ok {
		return appointments.Appointment{}, appointments.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	db.appointments[id] = a
	return a, nil
}

// --- orders.Store ---

func (db *DB) CreateOrder(ctx context.Context, no orders.NewOrder) (orders.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := time.Now().UTC()
	items := make([]orders.Item, len(no.Items))
	copy(items, no.Items)
	o := orders.Order{
		ID:              uuid.NewString(),
		UserID:          no.UserID,
		SessionID:       no.SessionID,
		Status:          no.Status,
		TotalAmount:     no.TotalAmount,
		TaxAmount:       no.TaxAmount,
		PaymentIntentID: no.PaymentIntentID,
		ShippingAddress: no.ShippingAddress,
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	db.orders[o.ID] = o
	return o, nil
}

func (db *DB) GetOrderByID(ctx context.Context, id string) (orders.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	o, ok := db.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	return o, nil
}

func (db *DB) ListUserOrders(ctx context.Context, userID string) ([]orders.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []orders.Order
	for _, o := range db.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (db *DB) UpdateOrderStatus(ctx context.Context, id string, status orders.Status) (orders.Order, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	o, ok := db.orders[id]
	if !ok {
		return orders.Order{}, orders.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	db.orders[id] = o
	return o, nil
}
