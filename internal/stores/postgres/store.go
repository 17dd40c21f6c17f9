package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"techstore/internal/appointments"
	"techstore/internal/cart"
	"techstore/internal/orders"
	"techstore/internal/products"
	"techstore/internal/sessions"
	"techstore/internal/users"
)

const uniqueViolation = "23505"

// Store implements every domain Store interface over a single database.
type Store struct {
	db *sql.DB
}

var (
	_ users.Store        = (*Store)(nil)
	_ sessions.Store     = (*Store)(nil)
	_ products.Store     = (*Store)(nil)
	_ cart.Store         = (*Store)(nil)
	_ appointments.Store = (*Store)(nil)
	_ orders.Store       = (*Store)(nil)
)

func NewStore(db *sql.DB) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	return &Store{db: db}, nil
}

func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		if er := tx.Rollback(); er != nil && !errors.Is(er, sql.ErrTxDone) {
			return fmt.Errorf("failed to rollback tx: %w", er)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tx: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- users.Store ---

func (s *Store) CreateUser(ctx context.Context, nu users.NewUser) (users.User, error) {
	u := users.User{
		ID:           uuid.NewString(),
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: nu.PasswordHash,
	}
	query := `
		INSERT INTO users (id, username, email, password_hash)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := s.db.ExecContext(ctx, query, u.ID, u.Username, u.Email, u.PasswordHash); err != nil {
		if isUniqueViolation(err) {
			return users.User{}, users.ErrAlreadyExists
		}
		return users.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (users.User, error) {
	query := `
		SELECT id, username, email, password_hash
		FROM users
		WHERE ` + where
	var u users.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return users.User{}, users.ErrNotFound
		}
		return users.User{}, fmt.Errorf("failed to query user: %w", err)
	}
	return u, nil
}

func (s *Store) GetUserByID(ctx context.Context, id string) (users.User, error) {
	return s.getUser(ctx, "id = $1", id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (users.User, error) {
	return s.getUser(ctx, "username = $1", username)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (users.User, error) {
	return s.getUser(ctx, "email = $1", email)
}

// --- sessions.Store ---

func (s *Store) CreateSession(ctx context.Context, sess sessions.Session) (sessions.Session, error) {
	sess.ID = uuid.NewString()
	query := `
		INSERT INTO user_sessions (id, user_id, session_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, sess.ID, sess.UserID, sess.Token, sess.ExpiresAt, sess.CreatedAt)
	if err != nil {
		return sessions.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}
	return sess, nil
}

func (s *Store) GetSessionByToken(ctx context.Context, token string) (sessions.Session, error) {
	query := `
		SELECT id, user_id, session_token, expires_at, created_at
		FROM user_sessions
		WHERE session_token = $1
	`
	var sess sessions.Session
	err := s.db.QueryRowContext(ctx, query, token).
		Scan(&sess.ID, &sess.UserID, &sess.Token, &sess.ExpiresAt, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sessions.Session{}, sessions.ErrTokenNotFound
		}
		return sessions.Session{}, fmt.Errorf("failed to query session: %w", err)
	}
	return sess, nil
}

func (s *Store) DeleteSession(ctx context.Context, token string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_sessions WHERE session_token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("failed to delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// --- products.Store ---

const productColumns = `
	id, name, description, price, original_price, category, image_url,
	rating, review_count, in_stock, featured, tags, specifications
`

func scanProduct(row interface{ Scan(...any) error }) (products.Product, error) {
	var (
		p             products.Product
		originalPrice decimal.NullDecimal
		tagsJSON      []byte
		specsJSON     []byte
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &originalPrice,
		&p.Category, &p.ImageURL, &p.Rating, &p.ReviewCount, &p.InStock,
		&p.Featured, &tagsJSON, &specsJSON)
	if err != nil {
		return products.Product{}, err
	}
	if originalPrice.Valid {
		p.OriginalPrice = &originalPrice.Decimal
	}
	if err := json.Unmarshal(tagsJSON, &p.Tags); err != nil {
		return products.Product{}, fmt.Errorf("failed to decode tags: %w", err)
	}
	if err := json.Unmarshal(specsJSON, &p.Specifications); err != nil {
		return products.Product{}, fmt.Errorf("failed to decode specifications: %w", err)
	}
	return p, nil
}

func (s *Store) InsertProduct(ctx context.Context, np products.NewProduct) (products.Product, error) {
	tagsJSON, err := json.Marshal(np.Tags)
	if err != nil {
		return products.Product{}, fmt.Errorf("failed to encode tags: %w", err)
	}
	specsJSON, err := json.Marshal(np.Specifications)
	if err != nil {
		return products.Product{}, fmt.Errorf("failed to encode specifications: %w", err)
	}
	originalPrice := decimal.NullDecimal{}
	if np.OriginalPrice != nil {
		originalPrice = decimal.NullDecimal{Decimal: *np.OriginalPrice, Valid: true}
	}
	id := uuid.NewString()
	query := `
		INSERT INTO products (id, name, description, price, original_price, category,
			image_url, rating, review_count, in_stock, featured, tags, specifications)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(ctx, query, id, np.Name, np.Description, np.Price,
		originalPrice, np.Category, np.ImageURL, np.Rating, np.ReviewCount,
		np.InStock, np.Featured, tagsJSON, specsJSON)
	if err != nil {
		return products.Product{}, fmt.Errorf("failed to insert product: %w", err)
	}
	return s.GetProductByID(ctx, id)
}

func (s *Store) GetProductByID(ctx context.Context, id string) (products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return products.Product{}, products.ErrNotFound
		}
		return products.Product{}, fmt.Errorf("failed to query product: %w", err)
	}
	return p, nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]products.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var out []products.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return out, nil
}

func (s *Store) ListProducts(ctx context.Context, f products.Filter) ([]products.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	var args []any
	if f.Category != "" {
		args = append(args, f.Category)
		query += fmt.Sprintf(" AND category = $%d", len(args))
	}
	if f.Featured != nil {
		args = append(args, *f.Featured)
		query += fmt.Sprintf(" AND featured = $%d", len(args))
	}
	return s.queryProducts(ctx, query, args...)
}

func (s *Store) SearchProducts(ctx context.Context, query string) ([]products.Product, error) {
	q := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		   OR description ILIKE '%' || $1 || '%'
		   OR category ILIKE '%' || $1 || '%'
	`
	return s.queryProducts(ctx, q, query)
}

func (s *Store) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// --- cart.Store ---

func (s *Store) UpsertCartItem(ctx context.Context, sessionID, productID string, quantity int) (cart.CartItem, error) {
	var item cart.CartItem
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// Lock the (session, product) row so two concurrent adds serialize and
		// neither increment is lost.
		querySelect := `
			SELECT id, quantity
			FROM cart_items
			WHERE session_id = $1 AND product_id = $2
			FOR UPDATE
		`
		var (
			id       string
			existing int
		)
		err := tx.QueryRowContext(ctx, querySelect, sessionID, productID).Scan(&id, &existing)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("failed to query cart item: %w", err)
			}
			queryInsert := `
				INSERT INTO cart_items (id, session_id, product_id, quantity)
				VALUES ($1, $2, $3, $4)
				RETURNING id, session_id, product_id, quantity, added_at
			`
			return tx.QueryRowContext(ctx, queryInsert, uuid.NewString(), sessionID, productID, quantity).
				Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.AddedAt)
		}
		queryUpdate := `
			UPDATE cart_items
			SET quantity = $1
			WHERE id = $2
			RETURNING id, session_id, product_id, quantity, added_at
		`
		return tx.QueryRowContext(ctx, queryUpdate, existing+quantity, id).
			Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.AddedAt)
	})
	if err != nil {
		return cart.CartItem{}, err
	}
	return item, nil
}

func (s *Store) UpdateCartItemQuantity(ctx context.Context, id string, quantity int) (cart.CartItem, error) {
	query := `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2
		RETURNING id, session_id, product_id, quantity, added_at
	`
	var item cart.CartItem
	err := s.db.QueryRowContext(ctx, query, quantity, id).
		Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return cart.CartItem{}, cart.ErrNotFound
		}
		return cart.CartItem{}, fmt.Errorf("failed to update cart item: %w", err)
	}
	return item, nil
}

func (s *Store) RemoveCartItem(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete cart item: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

func (s *Store) ClearCart(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cart_items WHERE session_id = $1`, sessionID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *Store) GetCartItems(ctx context.Context, sessionID string) ([]cart.CartItem, error) {
	query := `
		SELECT id, session_id, product_id, quantity, added_at
		FROM cart_items
		WHERE session_id = $1
		ORDER BY added_at
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	var out []cart.CartItem
	for rows.Next() {
		var item cart.CartItem
		if err := rows.Scan(&item.ID, &item.SessionID, &item.ProductID, &item.Quantity, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return out, nil
}

// --- appointments.Store ---

const appointmentColumns = `
	id, COALESCE(user_id, ''), full_name, phone, email, device, issue_description,
	status, appointment_date, estimated_cost, actual_cost,
	COALESCE(technician_notes, ''), created_at, updated_at
`

func scanAppointment(row interface{ Scan(...any) error }) (appointments.Appointment, error) {
	var (
		a             appointments.Appointment
		when          sql.NullTime
		estimatedCost decimal.NullDecimal
		actualCost    decimal.NullDecimal
	)
	err := row.Scan(&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.Email, &a.Device,
		&a.IssueDescription, &a.Status, &when, &estimatedCost, &actualCost,
		&a.TechnicianNotes, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return appointments.Appointment{}, err
	}
	if when.Valid {
		a.AppointmentDate = &when.Time
	}
	if estimatedCost.Valid {
		a.EstimatedCost = &estimatedCost.Decimal
	}
	if actualCost.Valid {
		a.ActualCost = &actualCost.Decimal
	}
	return a, nil
}

func (s *Store) CreateAppointment(ctx context.Context, na appointments.NewAppointment) (appointments.Appointment, error) {
	query := `
		INSERT INTO appointments (id, user_id, full_name, phone, email, device, issue_description, status)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		RETURNING ` + appointmentColumns
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, uuid.NewString(), na.UserID,
		na.FullName, na.Phone, na.Email, na.Device, na.IssueDescription, appointments.StatusPending))
	if err != nil {
		return appointments.Appointment{}, fmt.Errorf("failed to insert appointment: %w", err)
	}
	return a, nil
}

func (s *Store) GetAppointmentByID(ctx context.Context, id string) (appointments.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, fmt.Errorf("failed to query appointment: %w", err)
	}
	return a, nil
}

func (s *Store) queryAppointments(ctx context.Context, query string, args ...any) ([]appointments.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments: %w", err)
	}
	defer rows.Close()

	var out []appointments.Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan appointment: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating appointments: %w", err)
	}
	return out, nil
}

func (s *Store) ListAppointments(ctx context.Context) ([]appointments.Appointment, error) {
	return s.queryAppointments(ctx, `SELECT `+appointmentColumns+` FROM appointments ORDER BY created_at`)
}

func (s *Store) ListUserAppointments(ctx context.Context, userID string) ([]appointments.Appointment, error) {
	return s.queryAppointments(ctx,
		`SELECT `+appointmentColumns+` FROM appointments WHERE user_id = $1 ORDER BY created_at`, userID)
}

func (s *Store) UpdateAppointmentStatus(ctx context.Context, id string, status appointments.Status) (appointments.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + appointmentColumns
	a, err := scanAppointment(s.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appointments.Appointment{}, appointments.ErrNotFound
		}
		return appointments.Appointment{}, fmt.Errorf("failed to update appointment: %w", err)
	}
	return a, nil
}

// --- orders.Store ---

const orderColumns = `
	id, COALESCE(user_id, ''), COALESCE(session_id, ''), status, total_amount,
	tax_amount, COALESCE(payment_intent_id, ''), shipping_address, items,
	created_at, updated_at
`

func scanOrder(row interface{ Scan(...any) error }) (orders.Order, error) {
	var (
		o            orders.Order
		shippingJSON []byte
		itemsJSON    []byte
	)
	err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &o.Status, &o.TotalAmount,
		&o.TaxAmount, &o.PaymentIntentID, &shippingJSON, &itemsJSON,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return orders.Order{}, err
	}
	if len(shippingJSON) > 0 {
		if err := json.Unmarshal(shippingJSON, &o.ShippingAddress); err != nil {
			return orders.Order{}, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return orders.Order{}, fmt.Errorf("failed to decode order items: %w", err)
	}
	return o, nil
}

func (s *Store) CreateOrder(ctx context.Context, no orders.NewOrder) (orders.Order, error) {
	itemsJSON, err := json.Marshal(no.Items)
	if err != nil {
		return orders.Order{}, fmt.Errorf("failed to encode order items: %w", err)
	}
	var shippingJSON []byte
	if no.ShippingAddress != nil {
		if shippingJSON, err = json.Marshal(no.ShippingAddress); err != nil {
			return orders.Order{}, fmt.Errorf("failed to encode shipping address: %w", err)
		}
	}
	query := `
		INSERT INTO orders (id, user_id, session_id, status, total_amount, tax_amount,
			payment_intent_id, shipping_address, items)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, NULLIF($7, ''), $8, $9)
		RETURNING ` + orderColumns
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, uuid.NewString(), no.UserID,
		no.SessionID, no.Status, no.TotalAmount, no.TaxAmount, no.PaymentIntentID,
		shippingJSON, itemsJSON))
	if err != nil {
		return orders.Order{}, fmt.Errorf("failed to insert order: %w", err)
	}
	return o, nil
}

func (s *Store) GetOrderByID(ctx context.Context, id string) (orders.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, orders.ErrNotFound
		}
		return orders.Order{}, fmt.Errorf("failed to query order: %w", err)
	}
	return o, nil
}

func (s *Store) ListUserOrders(ctx context.Context, userID string) ([]orders.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	var out []orders.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status orders.Status) (orders.Order, error) {
	query := `
		UPDATE orders
		SET status = $1, updated_at = now()
		WHERE id = $2
		RETURNING ` + orderColumns
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return orders.Order{}, orders.ErrNotFound
		}
		return orders.Order{}, fmt.Errorf("failed to update order: %w", err)
	}
	return o, nil
}
