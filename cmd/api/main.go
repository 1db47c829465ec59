package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/socialhub-api/internal/application/auth"
	"github.com/socialhub-api/internal/application/comment"
	"github.com/socialhub-api/internal/application/emaillink"
	"github.com/socialhub-api/internal/application/like"
	"github.com/socialhub-api/internal/application/media"
	"github.com/socialhub-api/internal/application/notification"
	"github.com/socialhub-api/internal/application/otp"
	"github.com/socialhub-api/internal/application/post"
	"github.com/socialhub-api/internal/application/profile"
	"github.com/socialhub-api/internal/application/taxonomy"
	"github.com/socialhub-api/internal/application/user"
	"github.com/socialhub-api/internal/config"
	"github.com/socialhub-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/socialhub-api/internal/infrastructure/jwt"
	"github.com/socialhub-api/internal/infrastructure/redis"
	s3infra "github.com/socialhub-api/internal/infrastructure/s3"
	"github.com/socialhub-api/internal/infrastructure/smtp"
	"github.com/socialhub-api/internal/infrastructure/sns"
	"github.com/socialhub-api/internal/pkg/metrics"
	transporthttp "github.com/socialhub-api/internal/transport/http"
)

const (
	resendLimit  = 6
	resendWindow = time.Minute
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	setupLogger(cfg.LogLevel)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(cfg)
	dynamo.Bootstrap(context.Background(), dynamoClient, cfg.DynamoTables)

	userRepo := dynamo.NewUserRepo(dynamoClient, cfg.DynamoTables.Users)
	sessionRepo := dynamo.NewSessionRepo(dynamoClient, cfg.DynamoTables.Sessions)
	deviceRepo := dynamo.NewDeviceRepo(dynamoClient, cfg.DynamoTables.Devices)
	profileRepo := dynamo.NewProfileRepo(dynamoClient, cfg.DynamoTables.Profiles)
	postRepo := dynamo.NewPostRepo(dynamoClient, cfg.DynamoTables.Posts)
	commentRepo := dynamo.NewCommentRepo(dynamoClient, cfg.DynamoTables.Comments)
	likeRepo := dynamo.NewLikeRepo(dynamoClient, cfg.DynamoTables.Likes, cfg.DynamoTables.Posts)
	tagRepo := dynamo.NewTermRepo(dynamoClient, cfg.DynamoTables.Tags, taxonomy.KindTag)
	categoryRepo := dynamo.NewTermRepo(dynamoClient, cfg.DynamoTables.Categories, taxonomy.KindCategory)
	fileRepo := dynamo.NewFileRepo(dynamoClient, cfg.DynamoTables.Files)
	notificationRepo := dynamo.NewNotificationRepo(dynamoClient, cfg.DynamoTables.Notifications)
	verificationRepo := dynamo.NewVerificationRepo(dynamoClient, cfg.DynamoTables.Verifications)

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		fatal("jwt provider unavailable", err)
	}

	s3Store := s3infra.NewStore(s3infra.NewClient(cfg), cfg.S3BucketName)

	mailer, err := smtp.NewMailer(cfg)
	if err != nil {
		fatal("smtp mailer unavailable", err)
	}

	// SNS is optional unless codes go out by SMS.
	snsClient, err := sns.NewClient(cfg)
	if err != nil {
		if cfg.OTP.Channel == otp.ChannelSMS {
			fatal("sns client required for sms codes", err)
		}
		slog.Warn("sns client not available", "err", err)
	}

	notifDeps := notification.ServiceDeps{Repo: notificationRepo, TopicARN: cfg.SNSVerifiedTopicARN}
	if snsClient != nil {
		notifDeps.Publisher = snsClient
	}
	notificationSvc := notification.NewService(notifDeps)

	var delivery otp.Delivery = otp.NewEmailDelivery(mailer)
	if cfg.OTP.Channel == otp.ChannelSMS {
		delivery = otp.NewSMSDelivery(snsClient)
	}
	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:    userRepo,
		Delivery: delivery,
		Notifier: notificationSvc,
		Config: otp.Config{
			Length:      cfg.OTP.Length,
			Expiration:  cfg.OTP.Expiration,
			MaxAttempts: cfg.OTP.MaxAttempts,
		},
	})

	emailLinkSvc := emaillink.NewService(emaillink.ServiceDeps{
		Users:      userRepo,
		Links:      verificationRepo,
		Signer:     jwtProvider,
		Mailer:     mailer,
		Notifier:   notificationSvc,
		BaseURL:    cfg.AppURL,
		Expiration: cfg.EmailLinkExpiration,
	})

	userSvc := user.NewService(user.ServiceDeps{UserRepo: userRepo, SessionRepo: sessionRepo})
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:           userSvc,
		UserRepo:        userRepo,
		SessionRepo:     sessionRepo,
		DeviceRepo:      deviceRepo,
		ProfileRepo:     profileRepo,
		JWTProvider:     jwtProvider,
		OTP:             otpSvc,
		RefreshTokenDur: cfg.RefreshTokenDur,
	})

	mediaSvc := media.NewService(media.ServiceDeps{Objects: s3Store, FileRepo: fileRepo, PresignTTL: cfg.PresignTTL})
	tagSvc := taxonomy.NewService(tagRepo, taxonomy.KindTag)
	categorySvc := taxonomy.NewService(categoryRepo, taxonomy.KindCategory)

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	deps := &transporthttp.Deps{
		Auth:  authSvc,
		OTP:   otpSvc,
		Users: userSvc,
		Posts: post.NewService(post.ServiceDeps{
			Repo:       postRepo,
			Users:      userRepo,
			Profiles:   profileRepo,
			Media:      mediaSvc,
			Tags:       tagSvc,
			Categories: categorySvc,
		}),
		Comments:      comment.NewService(commentRepo, postRepo),
		Likes:         like.NewService(likeRepo, postRepo),
		Profiles:      profile.NewService(profile.ServiceDeps{Repo: profileRepo, Media: mediaSvc}),
		Tags:          tagSvc,
		Categories:    categorySvc,
		Notifications: notificationSvc,
		EmailLinks:    emailLinkSvc,
		Tokens:        jwtProvider,
		Accounts:      userRepo,
		Metrics:       metrics.Handler(registry),
	}
	if cfg.RedisAddr != "" {
		deps.ResendLimiter = redis.NewLimiter(redis.NewClient(cfg), resendLimit, resendWindow, "")
	}

	router := transporthttp.NewRouter(cfg, deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fatal("forced shutdown", err)
	}
	slog.Info("server stopped")
}

func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})))
}

func fatal(msg string, err error) {
	slog.Error(msg, "err", err)
	os.Exit(1)
}
