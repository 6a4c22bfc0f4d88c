package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"tsena/internal/adapter/api"
	"tsena/internal/adapter/api/handler"
	apimiddleware "tsena/internal/adapter/api/middleware"
	"tsena/internal/adapter/api/router"
	"tsena/internal/adapter/repository"
	domainrepo "tsena/internal/domain/repository"
	"tsena/internal/infrastructure/firebase"
	"tsena/internal/usecase"
	"tsena/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var (
		conversationRepo domainrepo.ConversationRepository
		notificationRepo domainrepo.NotificationRepository
		listingRepo      domainrepo.ListingRepository
		userRepo         domainrepo.UserRepository
		proposalRepo     domainrepo.ProposalRepository
		reportRepo       domainrepo.ReportRepository
		favoriteRepo     domainrepo.FavoriteRepository
		verifier         apimiddleware.TokenVerifier
	)

	if cfg.StoreDriver == "memory" {
		log.Printf("Using in-memory store driver, bearer tokens are treated as user ids")

		store := repository.NewMemoryStore()
		conversationRepo = store.Conversations()
		notificationRepo = store.Notifications()
		listingRepo = store.Listings()
		userRepo = store.Users()
		proposalRepo = store.Proposals()
		reportRepo = store.Reports()
		favoriteRepo = store.Favorites()
		verifier = apimiddleware.InsecureVerifier{}
	} else {
		var opt option.ClientOption

		serviceAccountJSON := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
		if serviceAccountJSON != "" {
			log.Printf("Using Firebase service account from environment variable")
			opt = option.WithCredentialsJSON([]byte(serviceAccountJSON))
		} else {
			serviceAccountPath := os.Getenv("FIREBASE_SERVICE_ACCOUNT_PATH")
			if serviceAccountPath == "" {
				log.Fatalf("FIREBASE_SERVICE_ACCOUNT_JSON or FIREBASE_SERVICE_ACCOUNT_PATH must be set")
			}
			if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
				log.Fatalf("Service account file does not exist: %s", serviceAccountPath)
			}
			log.Printf("Using Firebase service account from file: %s", serviceAccountPath)
			opt = option.WithCredentialsFile(serviceAccountPath)
		}

		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}

		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase Auth: %v", err)
		}

		firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
		if err != nil {
			log.Fatalf("Failed to create Firestore client: %v", err)
		}
		defer firestoreClient.Close()

		conversationRepo = repository.NewFirestoreConversationRepository(firestoreClient)
		notificationRepo = repository.NewFirestoreNotificationRepository(firestoreClient)
		listingRepo = repository.NewFirestoreListingRepository(firestoreClient)
		userRepo = repository.NewFirestoreUserRepository(firestoreClient)
		proposalRepo = repository.NewFirestoreProposalRepository(firestoreClient)
		reportRepo = repository.NewFirestoreReportRepository(firestoreClient)
		favoriteRepo = repository.NewFirestoreFavoriteRepository(firestoreClient)
		verifier = firebase.NewFirebaseAuthClient(authClient)
	}

	notificationUseCase := usecase.NewNotificationUseCase(notificationRepo)
	chatUseCase := usecase.NewChatUseCase(conversationRepo, listingRepo, userRepo, notificationUseCase, cfg.MaxMessageLen)
	proposalUseCase := usecase.NewProposalUseCase(proposalRepo, listingRepo, userRepo, notificationUseCase, chatUseCase)
	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, listingRepo, notificationUseCase)
	reportUseCase := usecase.NewReportUseCase(reportRepo, listingRepo, notificationUseCase)

	handler.Setup(chatUseCase, notificationUseCase, proposalUseCase, favoriteUseCase, reportUseCase)
	handler.SetupHealthHandler()

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(verifier)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
