package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rentcare/rentcare-gobackend/internal/handlers"
	"github.com/rentcare/rentcare-gobackend/internal/seed"
	"github.com/rentcare/rentcare-gobackend/internal/services"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the REST API",
		Long: `Run the REST API.

Examples:
  rentcare serve
  rentcare serve --store memory --seed testdata/seed.yaml
  rentcare serve --port 8080`,
		RunE: runServe,
	}

	cmd.Flags().String("store", storeMongo, "document store: mongo or memory")
	cmd.Flags().String("port", "", "port to listen on (overrides PORT)")
	cmd.Flags().String("seed", "", "YAML seed file to load at startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	kind, _ := cmd.Flags().GetString("store")
	if err := cfg.ValidateServer(kind == storeMongo); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, kind)
	if err != nil {
		return err
	}
	defer st.close()

	userService := services.NewUserService(st.users)
	propertyService := services.NewPropertyService(st.properties)
	authService := services.NewAuthService(st.users, st.properties, st.sessions, cfg.JWTSecret, cfg.SessionTTL)

	var provider services.CheckoutProvider
	if cfg.PaymentsEnabled() {
		provider = services.NewStripeCheckout(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Println("Warning: STRIPE_SECRET_KEY not set, payments are disabled")
	}
	paymentService := services.NewPaymentService(propertyService, provider, cfg.ClientURL, cfg.PaymentCurrency)

	if path, _ := cmd.Flags().GetString("seed"); path != "" {
		f, err := seed.Load(path)
		if err != nil {
			return err
		}
		res, err := seed.Apply(ctx, f, userService, propertyService)
		if err != nil {
			return err
		}
		log.Printf("Seeded %d owners, %d properties, %d tenants", res.Owners, res.Properties, res.Tenants)
	}

	router := handlers.NewRouter(handlers.Services{
		Auth:       authService,
		Users:      userService,
		Properties: propertyService,
		Payments:   paymentService,
	}, handlers.RouterConfig{
		ClientURL: cfg.ClientURL,
		AccessLog: os.Stdout,
	})

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
