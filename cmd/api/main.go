package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"techstore/handlers"
	"techstore/internal/appointments"
	"techstore/internal/cart"
	"techstore/internal/checkout"
	"techstore/internal/orders"
	"techstore/internal/payments"
	"techstore/internal/products"
	"techstore/internal/sessions"
	"techstore/internal/stores/kafka"
	"techstore/internal/stores/memory"
	"techstore/internal/stores/postgres"
	"techstore/internal/users"
	"techstore/middleware"
	"techstore/pkg/logkey"
)

// storage is the union of the per-domain persistence contracts. Both the
// in-memory store and the postgres store satisfy it.
type storage interface {
	users.Store
	sessions.Store
	products.Store
	cart.Store
	appointments.Store
	orders.Store
}

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, relying on environment")
	}

	if err := startApp(); err != nil {
		slog.Error("service failed", slog.String(logkey.ERROR, err.Error()))
		os.Exit(1)
	}
}

func startApp() error {
	ctx := context.Background()

	store, cleanup, err := openStorage()
	if err != nil {
		return err
	}
	defer cleanup()

	u, err := users.NewConf(store)
	if err != nil {
		return fmt.Errorf("users conf: %w", err)
	}
	s, err := sessions.NewConf(store, u)
	if err != nil {
		return fmt.Errorf("sessions conf: %w", err)
	}
	p, err := products.NewConf(store)
	if err != nil {
		return fmt.Errorf("products conf: %w", err)
	}
	ct, err := cart.NewConf(store, p)
	if err != nil {
		return fmt.Errorf("cart conf: %w", err)
	}
	a, err := appointments.NewConf(store)
	if err != nil {
		return fmt.Errorf("appointments conf: %w", err)
	}
	o, err := orders.NewConf(store)
	if err != nil {
		return fmt.Errorf("orders conf: %w", err)
	}

	if err := p.EnsureSeedData(ctx); err != nil {
		return fmt.Errorf("seeding catalog: %w", err)
	}

	var gateway payments.Gateway
	if key := os.Getenv("STRIPE_SECRET_KEY"); key != "" {
		sg, err := payments.NewStripeGateway(key, 10*time.Second)
		if err != nil {
			return fmt.Errorf("stripe gateway: %w", err)
		}
		gateway = sg
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout disabled")
	}

	taxRate, err := envDecimal("TAX_RATE", "0.18")
	if err != nil {
		return err
	}
	currency := os.Getenv("CURRENCY")
	if currency == "" {
		currency = "inr"
	}

	calc, err := checkout.NewCalculator(ct, p, gateway, taxRate, currency)
	if err != nil {
		return fmt.Errorf("checkout calculator: %w", err)
	}

	var events *kafka.Conf
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		events, err = kafka.NewConf(strings.Split(brokers, ","))
		if err != nil {
			return fmt.Errorf("kafka producer: %w", err)
		}
		defer events.Close()
	}

	ttlHours := 168
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		ttlHours, err = strconv.Atoi(v)
		if err != nil || ttlHours <= 0 {
			return fmt.Errorf("invalid SESSION_TTL_HOURS %q", v)
		}
	}

	h, err := handlers.NewHandler(u, s, p, ct, a, o, calc, events, time.Duration(ttlHours)*time.Hour)
	if err != nil {
		return fmt.Errorf("building handler: %w", err)
	}
	m, err := middleware.NewMid(s)
	if err != nil {
		return fmt.Errorf("building middleware: %w", err)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      handlers.API(h, m),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", slog.String("port", port))
		errCh <- srv.ListenAndServe()
	}()

	stop, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-stop.Done():
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown: %w", err)
		}
	}
	return nil
}

// openStorage selects the backing store. DATABASE_URL switches on postgres;
// without it the service runs self-contained on the in-memory store.
func openStorage() (storage, func(), error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		slog.Info("DATABASE_URL not set, using in-memory store")
		return memory.New(), func() {}, nil
	}

	db, err := postgres.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := postgres.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}
	store, err := postgres.NewStore(db)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("postgres store: %w", err)
	}
	slog.Info("using postgres store")
	return store, func() { db.Close() }, nil
}

func envDecimal(key, fallback string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
