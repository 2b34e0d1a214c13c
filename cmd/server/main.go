// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/mahluminnovations/gymengine/internal/config"
	"github.com/mahluminnovations/gymengine/internal/domain"
	"github.com/mahluminnovations/gymengine/internal/handlers"
	"github.com/mahluminnovations/gymengine/internal/middleware"
	sessionrepo "github.com/mahluminnovations/gymengine/internal/repository/session"
	"github.com/mahluminnovations/gymengine/internal/services"
	"github.com/mahluminnovations/gymengine/internal/services/ai"
	"github.com/mahluminnovations/gymengine/internal/services/chat"
	"github.com/mahluminnovations/gymengine/internal/services/email"
	"github.com/mahluminnovations/gymengine/internal/services/extract"
	"github.com/mahluminnovations/gymengine/internal/services/ingest"
	"github.com/mahluminnovations/gymengine/internal/services/report"
	"github.com/mahluminnovations/gymengine/internal/services/search"
	"github.com/mahluminnovations/gymengine/internal/services/session"
	"github.com/mahluminnovations/gymengine/internal/services/storage"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("gymengine")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}

	if err := db.AutoMigrate(&domain.ChatSession{}, &domain.Message{}, &domain.FileAttachment{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	sessionRepo := sessionrepo.NewSessionRepository(db)

	// --- Object storage ---
	var blobs storage.ObjectStore = storage.DisabledStore{}
	if cfg.BlobContainerURL != "" {
		blobConfig := storage.DefaultConfig()
		blobConfig.ContainerURL = cfg.BlobContainerURL
		blobConfig.SASToken = cfg.BlobSASToken
		blobService, err := storage.NewBlobService(blobConfig, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize blob storage: %v", err)
		}
		blobs = blobService
	} else {
		logger.Warn("no blob storage configured, uploads will be rejected")
	}

	// --- Search index ---
	searchConfig := search.DefaultConfig()
	searchConfig.Endpoint = cfg.SearchEndpoint
	searchConfig.APIKey = cfg.SearchAPIKey
	searchConfig.IndexName = cfg.SearchIndexName
	searchConfig.DefaultTopK = cfg.RetrievalTopK
	index := search.NewClientService(searchConfig, logger)

	// --- Document extraction ---
	extractConfig := extract.DefaultConfig()
	extractConfig.AnalyzerEndpoint = cfg.AnalyzerEndpoint
	extractConfig.AnalyzerKey = cfg.AnalyzerAPIKey
	extractConfig.VisionEndpoint = cfg.VisionEndpoint
	extractConfig.VisionKey = cfg.VisionAPIKey

	var pdfExtractor extract.DocumentExtractor
	if extractConfig.ValidateAnalyzer() == nil {
		pdfExtractor, err = extract.NewPDFExtractor(extractConfig, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize PDF extractor: %v", err)
		}
	} else {
		logger.Warn("no document analyzer configured, PDF uploads will be rejected")
	}

	var imageDescriber extract.ImageDescriber
	if extractConfig.ValidateVision() == nil {
		imageDescriber, err = extract.NewVisionDescriber(extractConfig, logger)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize vision describer: %v", err)
		}
	} else {
		logger.Warn("no vision backend configured, image uploads will be rejected")
	}

	docxExtractor := extract.NewDocxExtractor(logger)

	// --- Completion engine ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.AIAPIKey
	aiConfig.BaseURL = cfg.AIBaseURL
	aiConfig.Model = cfg.ChatModel
	if err := aiConfig.Validate(); err != nil {
		log.Fatalf("FATAL: Invalid AI configuration: %v", err)
	}
	aiProvider := ai.NewOpenAIProvider(aiConfig)

	// --- Services ---
	sessionService := session.NewService(sessionRepo, blobs, logger)
	ingestService := ingest.NewService(blobs, pdfExtractor, docxExtractor, imageDescriber, index, logger)
	reportCache := report.NewCache()
	reportRenderer := report.NewRenderer()

	chatConfig := chat.DefaultConfig()
	chatConfig.ChatModel = cfg.ChatModel
	chatConfig.ReportModel = cfg.ReportModel
	chatConfig.RetrievalTopK = cfg.RetrievalTopK
	chatService, err := chat.NewService(chatConfig, sessionService, ingestService, index, aiProvider, reportCache, logger)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize Chat Service: %v", err)
	}

	var mailSender email.Sender
	if cfg.EmailAPIKey != "" {
		emailConfig := email.DefaultConfig()
		emailConfig.APIKey = cfg.EmailAPIKey
		mailSender = email.NewSendGridProvider(emailConfig)
	} else {
		logger.Warn("no email provider configured, contact form disabled")
	}

	// --- Handlers ---
	chatHandler := handlers.NewChatHandler(chatService, sessionService, ingestService, cfg.ChunkSize, logger)
	reportHandler := handlers.NewReportHandler(reportCache, reportRenderer, logger)
	contactHandler := handlers.NewContactHandler(mailSender, cfg.ContactFromEmail, cfg.ContactToEmail, logger)

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic)
	r.Use(middleware.LoggingMiddleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); _, _ = w.Write([]byte("OK")) }).Methods("GET")

	r.HandleFunc("/chat", chatHandler.HandleChat).Methods("POST")
	r.HandleFunc("/chats", chatHandler.GetChats).Methods("GET")
	r.HandleFunc("/archiveAllChats", chatHandler.ArchiveAllChats).Methods("POST")
	r.HandleFunc("/deleteAllChats", chatHandler.DeleteAllChats).Methods("POST")
	r.HandleFunc("/deleteChat", chatHandler.DeleteChat).Methods("POST")
	r.HandleFunc("/renameChat", chatHandler.RenameChat).Methods("POST")
	r.HandleFunc("/uploadLargeFile", chatHandler.UploadLargeFile).Methods("POST")
	r.HandleFunc("/askDoc", chatHandler.AskDoc).Methods("POST")
	r.HandleFunc("/generateChatTitle", chatHandler.GenerateChatTitle).Methods("POST")
	r.HandleFunc("/contact", contactHandler.SubmitContact).Methods("POST")
	r.HandleFunc("/api/generateReport", reportHandler.GenerateReport).Methods("GET")

	// --- Server Configuration ---
	port := ":8080"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:    port,
		Handler: r,
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Server starting on port %s", port)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}
