package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"doctags/internal/delivery/http/controllers"
	"doctags/internal/delivery/http/middleware"
	"doctags/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	documentController *controllers.DocumentController,
	userController *controllers.UserController,
	subscriptionController *controllers.SubscriptionController,
	verifier domain.TokenVerifier,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", userController.SignUp)
	mux.HandleFunc("POST /auth/login", userController.Login)

	// Users
	mux.HandleFunc("GET /users/me", auth(userController.GetMe))

	// Documents
	mux.HandleFunc("POST /documents", auth(documentController.CreateDocument))
	mux.HandleFunc("GET /documents", auth(documentController.ListDocuments))
	mux.HandleFunc("GET /documents/{documentID}", auth(documentController.GetDocument))
	mux.HandleFunc("PATCH /documents/{documentID}", auth(documentController.UpdateDocument))
	mux.HandleFunc("DELETE /documents/{documentID}", auth(documentController.DeleteDocument))

	// Document tags
	mux.HandleFunc("PUT /documents/{documentID}/tags/{tag}", auth(documentController.AddTag))
	mux.HandleFunc("DELETE /documents/{documentID}/tags/{tag}", auth(documentController.RemoveTag))
	mux.HandleFunc("GET /documents/{documentID}/tags/{tag}", auth(documentController.HasTag))

	// Tag subscriptions
	mux.HandleFunc("POST /subscriptions", auth(subscriptionController.Subscribe))
	mux.HandleFunc("GET /subscriptions", auth(subscriptionController.ListSubscriptions))
	mux.HandleFunc("DELETE /subscriptions/{tag}", auth(subscriptionController.Unsubscribe))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
