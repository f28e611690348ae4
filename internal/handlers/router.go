package handlers

import (
	"io"
	"net/http"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/rentcare/rentcare-gobackend/internal/services"
)

type Services struct {
	Auth       *services.AuthService
	Users      *services.UserService
	Properties *services.PropertyService
	Payments   *services.PaymentService
}

type RouterConfig struct {
	// ClientURL is the only origin CORS lets through.
	ClientURL string
	// AccessLog receives one line per request. Nil disables it.
	AccessLog io.Writer
}

// NewRouter mounts every route and wraps them in panic recovery, CORS and
// access logging.
func NewRouter(svc Services, cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(svc.Auth, svc.Users)
	userHandler := NewUserHandler(svc.Users)
	propertyHandler := NewPropertyHandler(svc.Properties)
	paymentHandler := NewPaymentHandler(svc.Payments, svc.Properties)

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "HEAD")
	router.HandleFunc("/api/ping", Ping).Methods("GET")
	router.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	router.HandleFunc("/api/payment/webhook", paymentHandler.Webhook).Methods("POST")

	protected := router.NewRoute().Subrouter()
	protected.Use(RequireSession(svc.Auth))

	protected.HandleFunc("/api/logout", authHandler.Logout).Methods("POST")
	protected.HandleFunc("/api/session", authHandler.Session).Methods("GET")

	protected.HandleFunc("/users", userHandler.GetUsers).Methods("GET")
	protected.HandleFunc("/users", userHandler.CreateUser).Methods("POST")

	protected.HandleFunc("/properties", propertyHandler.GetProperties).Methods("GET")
	protected.HandleFunc("/properties", propertyHandler.CreateProperty).Methods("POST")
	protected.HandleFunc("/properties/{id}", propertyHandler.GetProperty).Methods("GET")
	protected.HandleFunc("/properties/{id}", propertyHandler.ReplaceProperty).Methods("PUT")
	protected.HandleFunc("/properties/{id}", propertyHandler.UpdatePropertyDetails).Methods("PATCH")
	protected.HandleFunc("/properties/{id}", propertyHandler.DeleteProperty).Methods("DELETE")

	protected.HandleFunc("/properties/{id}/tenants", propertyHandler.AddTenant).Methods("POST")
	protected.HandleFunc("/properties/{id}/tenants/{flatNo}", propertyHandler.RemoveTenant).Methods("DELETE")
	protected.HandleFunc("/properties/{id}/tenants/{flatNo}/notifications", propertyHandler.NotifyTenant).Methods("POST")
	protected.HandleFunc("/properties/{id}/tenants/{flatNo}/payment-success", paymentHandler.PaymentSuccess).Methods("PUT")

	protected.HandleFunc("/properties/{id}/maintenance-requests", propertyHandler.RaiseRequest).Methods("POST")
	protected.HandleFunc("/properties/{id}/maintenance-requests/{requestId}", propertyHandler.UpdateRequest).Methods("PATCH")
	protected.HandleFunc("/properties/{id}/maintenance-requests/{requestId}", propertyHandler.DeleteRequest).Methods("DELETE")

	protected.HandleFunc("/api/payment/create-checkout-session", paymentHandler.CreateCheckoutSession).Methods("POST")

	cors := gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{cfg.ClientURL}),
		gorillahandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillahandlers.AllowCredentials(),
	)

	var handler http.Handler = cors(Recover(router))
	if cfg.AccessLog != nil {
		handler = gorillahandlers.LoggingHandler(cfg.AccessLog, handler)
	}
	return handler
}
