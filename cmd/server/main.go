package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"Placemap/internal/api/middleware"
	"Placemap/internal/api/routes"
	"Placemap/internal/api/session"
	"Placemap/internal/config"
	"Placemap/internal/core/events"
	"Placemap/internal/core/places"
	"Placemap/internal/core/ratings"
	"Placemap/internal/core/search"
	"Placemap/internal/core/subscriptions"
	"Placemap/internal/core/users"
	"Placemap/internal/db/migrations"
	"Placemap/internal/db/sqlite"
	"Placemap/internal/flows"
	"Placemap/internal/geocode"
	notifygw "Placemap/internal/notify"
	"Placemap/internal/search/bleveidx"
)

const serverVersion = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	root := &cobra.Command{
		Use:          "placemap",
		Short:        "Curated civic map backend",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}
	cfg.AddFlags(root)

	root.AddCommand(&cobra.Command{
		Use:   "fix-event-address-location",
		Short: "Re-geocode event addresses and persist the coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return fixEventAddressLocation(cmd.Context(), cfg)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serve(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	index, err := bleveidx.Open(cfg.IndexDir)
	if err != nil {
		return fmt.Errorf("opening search index: %w", err)
	}

	session.InitStore(cfg.SessionSecret)

	// Repositories
	placeRepo := sqlite.NewPlaceRepository(db)
	tagRepo := sqlite.NewTagRepository(db)
	orgRepo := sqlite.NewOrgRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewUserTokenRepository(db)
	ratingRepo := sqlite.NewRatingRepository(db)
	commentRepo := sqlite.NewRatingCommentRepository(db)
	eventRepo := sqlite.NewEventRepository(db)
	subscriptionRepo := sqlite.NewSubscriptionRepository(db)

	// Services
	placeService := places.NewPlaceService(placeRepo, tagRepo, orgRepo)
	userService := users.NewUserService(userRepo, tokenRepo)
	eventService := events.NewEventService(eventRepo, tagRepo, orgRepo, userService)
	ratingService := ratings.NewRatingService(ratingRepo, commentRepo)
	subscriptionService := subscriptions.NewSubscriptionService(subscriptionRepo)

	emailGateway := notifygw.NewSMTPEmailGateway(notifygw.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	notificationGateway := notifygw.NewNotificationGateway(emailGateway)

	useCases := &flows.Flows{
		Places:        placeService,
		Events:        eventService,
		Ratings:       ratingService,
		Subscriptions: subscriptionService,
		Index:         index,
		Notify:        notificationGateway,
	}

	if err := reindexAllPlaces(context.Background(), placeRepo, ratingService, index); err != nil {
		return fmt.Errorf("rebuilding search index: %w", err)
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)

	// Rate limiting: 100 requests per minute per IP
	rateLimiter := middleware.NewRateLimiter(100, 1*time.Minute)
	r.Use(rateLimiter.Middleware)

	r.Mount("/api/v0", routes.API(routes.Deps{
		Flows:         useCases,
		Places:        placeService,
		Events:        eventService,
		Ratings:       ratingService,
		Users:         userService,
		Subscriptions: subscriptionService,
		Tags:          tagRepo,
		Orgs:          orgRepo,
		Index:         index,
		Notify:        notificationGateway,
		BaseURL:       cfg.BaseURL,
		Version:       serverVersion,
		EnableCORS:    cfg.EnableCORS,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	log.Printf("Placemap %s listening on %s", serverVersion, cfg.ListenAddr)
	return http.ListenAndServe(cfg.ListenAddr, r)
}

func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sqlite.Open(cfg.DBURL, cfg.DBConnectionPoolSize)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.Up(db, "."); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

// reindexAllPlaces rebuilds the search index from the visible current
// revisions. The index directory is disposable; a fresh one converges after
// this pass.
func reindexAllPlaces(ctx context.Context, repo places.Repository, ratingService ratings.Service, index search.Indexer) error {
	all, err := repo.AllPlaces(ctx)
	if err != nil {
		return err
	}
	indexed := 0
	for i := range all {
		if !all[i].Status.IsVisible() {
			continue
		}
		avg, err := ratingService.AvgRatingsForPlace(ctx, all[i].ID)
		if err != nil {
			return err
		}
		if err := index.AddOrUpdatePlace(&all[i].Place, avg); err != nil {
			return err
		}
		indexed++
	}
	if err := index.Flush(); err != nil {
		return err
	}
	log.Printf("Indexed %d places", indexed)
	return nil
}

// fixEventAddressLocation walks all events and re-resolves their address to
// coordinates. Failures are logged and leave the event unchanged.
func fixEventAddressLocation(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	eventRepo := sqlite.NewEventRepository(db)
	resolver := geocode.NewNominatim(cfg.GeocodingURL)

	all, err := eventRepo.AllEvents(ctx)
	if err != nil {
		return err
	}
	fixed := 0
	for i := range all {
		event := &all[i]
		if event.Location == nil || event.Location.Address == nil {
			continue
		}
		pos, ok := resolver.ResolveAddressLatLng(ctx, event.Location.Address)
		if !ok {
			slog.Warn("could not geocode event address", "event", event.ID)
			continue
		}
		if event.Location.Pos == pos {
			continue
		}
		event.Location.Pos = pos
		if err := eventRepo.UpdateEvent(ctx, event); err != nil {
			slog.Error("failed to store geocoded position", "event", event.ID, "error", err)
			continue
		}
		fixed++
	}
	log.Printf("Updated the position of %d events", fixed)
	return nil
}
