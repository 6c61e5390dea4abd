package main

import (
	"context"
	"errors"
	"flag"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yashraj-ghemud/royal-state/internal/auth"
	"github.com/yashraj-ghemud/royal-state/internal/config"
	"github.com/yashraj-ghemud/royal-state/internal/logger"
	"github.com/yashraj-ghemud/royal-state/internal/media"
	"github.com/yashraj-ghemud/royal-state/internal/models"
	"github.com/yashraj-ghemud/royal-state/internal/store"
	roomsync "github.com/yashraj-ghemud/royal-state/internal/sync"
	"github.com/yashraj-ghemud/royal-state/internal/upload"
)

func main() {
	cfgPath := os.Getenv("RENTEASY_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(logger.Config{
		Development: cfg.App.Env == "development",
		Level:       cfg.Log.Level,
	})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	mc, err := store.Connect(ctx, cfg.Mongo.URI, cfg.ConnectTimeout)
	cancel()
	if err != nil {
		log.Fatalf("store connect: %v", err)
	}
	defer func() {
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = mc.Disconnect(timeoutCtx)
	}()

	db := mc.Database(cfg.Mongo.Database)
	rooms := store.NewRoomRepository(db.Collection(cfg.Mongo.RoomsCollection), cfg.Upload.PlaceholderURL, log)
	roles := store.NewRoleRepository(db.Collection(cfg.Mongo.RolesCollection))

	provider := auth.NewIdentityClient(cfg.Auth.Endpoint, cfg.Auth.APIKey)
	sessions := auth.NewManager(provider, roles, cfg.Auth.StatePath, cfg.Auth.AdminEmail, cfg.Auth.AdminSecret, log)
	sessions.Start(context.Background())

	if len(os.Args) > 1 && os.Args[1] == "post" {
		if err := runPost(cfg, sessions, rooms, log, os.Args[2:]); err != nil {
			log.Fatalf("post: %v", err)
		}
		return
	}

	runWatch(sessions, rooms, log)
}

// runWatch follows the live listing set until interrupted.
func runWatch(sessions *auth.Manager, rooms *store.RoomRepository, log *zap.SugaredLogger) {
	synchronizer := roomsync.New(roomsync.NewRoomSource(rooms), log)
	unsubscribe, err := synchronizer.Subscribe(
		func(set []models.Listing) {
			log.Infow("listing set updated", "count", len(set))
		},
		func(err error) {
			log.Errorw("listing subscription lost", "err", err)
		},
	)
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	stopObserving := sessions.Observe(func(snap auth.Snapshot) {
		if snap.Loading {
			return
		}
		if snap.Session == nil {
			log.Info("no active session")
			return
		}
		log.Infow("session resolved", "email", snap.Session.Email, "role", snap.Session.Role)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info("shutdown requested")

	stopObserving()
	unsubscribe()
	log.Info("shutdown completed")
}

// runPost signs in and drives one submission through the orchestrator,
// streaming progress to the log until the record write lands or fails.
func runPost(cfg *config.Config, sessions *auth.Manager, rooms *store.RoomRepository, log *zap.SugaredLogger, args []string) error {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	secret := fs.String("secret", "", "account password")
	title := fs.String("title", "", "listing title (derived when empty)")
	location := fs.String("location", "", "street or sector address")
	description := fs.String("description", "", "room description")
	phone := fs.String("phone", "", "10-digit contact number")
	price := fs.Int64("price", 0, "monthly rent")
	roomType := fs.String("type", "", "room type")
	district := fs.String("district", "", "region")
	imagePath := fs.String("image", "", "path to the room photo")
	videoPath := fs.String("video", "", "path to the walkthrough video")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	sess, err := sessions.Login(ctx, *email, *secret)
	if err != nil {
		return err
	}

	var files upload.Files
	if files.Image, err = readMediaFile(*imagePath); err != nil {
		return err
	}
	if files.Video, err = readMediaFile(*videoPath); err != nil {
		return err
	}

	uploader := media.NewClient(cfg.Media.BaseURL, cfg.Media.CloudName, cfg.Media.UploadPreset)
	orchestrator := upload.New(rooms, uploader, cfg.PersistTimeout, cfg.Upload.PlaceholderURL, cfg.Upload.JPEGQuality, log)

	form := upload.Form{
		Title:       *title,
		Location:    *location,
		Description: *description,
		Phone:       *phone,
		Price:       *price,
		RoomType:    models.RoomType(*roomType),
		District:    models.District(*district),
	}
	task, err := orchestrator.Submit(ctx, sess, form, files)
	if err != nil {
		return err
	}

	for {
		select {
		case snap := <-task.Progress():
			log.Infow("progress", "phase", snap.Phase, "percent", snap.Percent)
		case <-task.Done():
			if err := task.Err(); err != nil {
				return err
			}
			log.Infow("room posted", "id", task.Listing().ID, "title", task.Listing().Title)
			return nil
		}
	}
}

func readMediaFile(path string) (*media.File, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		return nil, errors.New("unrecognized media file extension: " + path)
	}
	return &media.File{Name: filepath.Base(path), ContentType: contentType, Data: data}, nil
}
