package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/text/language"

	"github.com/digkill/PromptLibrary/internal/billing"
	"github.com/digkill/PromptLibrary/internal/config"
	"github.com/digkill/PromptLibrary/internal/database"
	"github.com/digkill/PromptLibrary/internal/notify"
	"github.com/digkill/PromptLibrary/internal/repository"
	"github.com/digkill/PromptLibrary/internal/server"
	"github.com/digkill/PromptLibrary/internal/service"
	"github.com/digkill/PromptLibrary/internal/storage"
	"github.com/digkill/PromptLibrary/internal/usage"
	"github.com/digkill/PromptLibrary/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logr := logger.New(cfg.LogLevel)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("database connect: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("database migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	promptRepo := repository.NewPromptRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	folderRepo := repository.NewFolderRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	planRepo := repository.NewPlanRepository(db)
	eventRepo := repository.NewBillingEventRepository(db)

	var usageStore usage.Store = repository.NewUsageLogRepository(db)
	if cfg.UsageStore == "redis" {
		rdb, err := usage.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis connect: %v", err)
		}
		defer rdb.Close()
		usageStore = usage.NewRedisStore(rdb)
	}
	tracker := usage.NewTracker(usageStore, logr, cfg.Timezone)

	var gateway billing.Gateway
	if cfg.BillingEnabled() {
		gateway = billing.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		logr.Warn("stripe not configured, billing disabled")
	}

	var uploader service.CoverUploader
	if cfg.StorageEnabled() {
		up, err := storage.NewUploader(storage.ConfigFrom(cfg))
		if err != nil {
			log.Fatalf("storage uploader: %v", err)
		}
		uploader = up
	}

	var announcer service.Announcer
	if cfg.NotificationsEnabled() {
		botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
		if err != nil {
			log.Fatalf("telegram bot: %v", err)
		}
		announcer = notify.NewTelegramAnnouncer(botAPI, cfg.TelegramChannelID, cfg.FrontendURL, logr)
	}

	planService := service.NewPlanService(cfg, planRepo)
	if err := planService.EnsureDefaultPlans(ctx); err != nil {
		log.Fatalf("ensure default plans: %v", err)
	}

	svc := server.Services{
		Auth:          service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTTTL),
		Accounts:      service.NewAccountService(userRepo, subRepo),
		Library:       service.NewLibraryService(promptRepo, favoriteRepo, folderRepo, tracker, language.English),
		Favorites:     service.NewFavoriteService(favoriteRepo, promptRepo),
		Folders:       service.NewFolderService(folderRepo, promptRepo),
		CustomPrompts: service.NewCustomPromptService(promptRepo),
		Import:        service.NewImportService(favoriteRepo, folderRepo, promptRepo),
		Articles:      service.NewArticleService(articleRepo, uploader, announcer, logr),
		PromptAdmin:   service.NewPromptAdminService(promptRepo),
		Plans:         planService,
		Billing:       service.NewBillingService(gateway, subRepo, planService, eventRepo, cfg.FrontendURL, logr),
	}

	srv := server.NewServer(cfg, logr, svc)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logr.Error("server stopped", "err", err)
	}
}
