// Package routes wires the HTTP handlers onto the chi router.
package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"Placemap/internal/api/handlers"
	"Placemap/internal/api/middleware"
	"Placemap/internal/core/events"
	"Placemap/internal/core/notify"
	"Placemap/internal/core/orgs"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
	"Placemap/internal/core/subscriptions"
	"Placemap/internal/core/tags"
	"Placemap/internal/core/users"
	"Placemap/internal/flows"
)

// Deps bundles everything the API routes need.
type Deps struct {
	Flows         *flows.Flows
	Places        places.Service
	Events        events.Service
	Ratings       ratings.Service
	Users         users.Service
	Subscriptions subscriptions.Service
	Tags          tags.Repository
	Orgs          orgs.Gateway
	Index         search.Indexer
	Notify        notify.NotificationGateway

	BaseURL    string
	Version    string
	EnableCORS bool
}

// API builds the /api/v0 route tree.
func API(deps Deps) chi.Router {
	r := chi.NewRouter()

	if deps.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))
	}
	r.Use(middleware.OrgAuth(deps.Orgs))

	entryHandler := handlers.NewEntryHandler(deps.Flows, deps.Places, deps.Ratings, deps.Index)
	eventHandler := handlers.NewEventHandler(deps.Flows, deps.Events)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Notify, deps.BaseURL)
	ratingHandler := handlers.NewRatingHandler(deps.Flows, deps.Ratings)
	searchHandler := handlers.NewSearchHandler(deps.Index)
	subscriptionHandler := handlers.NewSubscriptionHandler(deps.Subscriptions)
	serverHandler := handlers.NewServerHandler(deps.Places, deps.Tags, deps.Version)

	requireScout := middleware.RequireRole(deps.Users, users.RoleScout)

	// Places
	r.Post("/entries", entryHandler.HandleCreate)
	r.Get("/entries/{ids}", entryHandler.HandleGet)
	r.Put("/entries/{ids}", entryHandler.HandleUpdate)
	r.With(requireScout).Get("/entries/{ids}/history", entryHandler.HandleHistory)
	r.With(requireScout).Post("/entries/{ids}/review", entryHandler.HandleReview)
	r.Get("/duplicates", entryHandler.HandleDuplicates)
	r.Get("/export/entries.csv", entryHandler.HandleExportCSV)

	// Search
	r.Get("/search", searchHandler.HandleSearch)

	// Events
	r.Get("/events", eventHandler.HandleList)
	r.Post("/events", eventHandler.HandleCreate)
	r.Get("/events/{ids}", eventHandler.HandleGet)
	r.Put("/events/{ids}", eventHandler.HandleUpdate)
	r.Delete("/events/{ids}", eventHandler.HandleDelete)
	r.With(requireScout).Post("/events/{ids}/archive", eventHandler.HandleArchive)

	// Ratings
	r.Post("/ratings", ratingHandler.HandleCreate)
	r.Get("/ratings/{ids}", ratingHandler.HandleGet)

	// Users and sessions
	r.Post("/users", userHandler.HandleRegister)
	r.Post("/login", userHandler.HandleLogin)
	r.Post("/logout", userHandler.HandleLogout)
	r.Post("/confirm-email-address", userHandler.HandleConfirmEmail)
	r.Post("/users/reset-password-request", userHandler.HandleRequestPasswordReset)
	r.Post("/users/reset-password", userHandler.HandleResetPassword)
	r.Get("/users/current", userHandler.HandleGetCurrentUser)
	r.Delete("/users/current", userHandler.HandleDeleteCurrentUser)

	// Bounding box subscriptions
	r.Post("/subscribe-to-bbox", subscriptionHandler.HandleSubscribe)
	r.Delete("/unsubscribe-all-bboxes", subscriptionHandler.HandleUnsubscribeAll)
	r.Get("/bbox-subscriptions", subscriptionHandler.HandleList)

	// Tags, categories, statistics, metadata
	r.Get("/tags", serverHandler.HandleTags)
	r.Get("/most-popular-tags", serverHandler.HandleMostPopularTags)
	r.Get("/categories", serverHandler.HandleCategoryIDs)
	r.Get("/categories/{ids}", serverHandler.HandleCategories)
	r.Get("/count/entries", serverHandler.HandleCountEntries)
	r.Get("/count/tags", serverHandler.HandleCountTags)
	r.Get("/server/version", serverHandler.HandleVersion)
	r.Get("/server/api.yaml", serverHandler.HandleAPISpec)

	return r
}
