package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/usecase"
	"github.com/rsdeals/discord-bridge/internal/conf"
	"github.com/rsdeals/discord-bridge/internal/data"
	"github.com/rsdeals/discord-bridge/internal/server"
	"github.com/rsdeals/discord-bridge/internal/service"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := conf.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	// Refuse to run twice against the same log files.
	lock, err := acquireLock(cfg.LockFilePath)
	if err != nil {
		log.Fatalf("Another instance appears to be running (%s): %v", cfg.LockFilePath, err)
	}
	defer releaseLock(cfg.LockFilePath, lock)

	audit, err := data.NewAuditRepo(cfg.LogDir, cfg.SourceGuildID, cfg.DestGuildID)
	if err != nil {
		log.Fatalf("Failed to open audit store: %v", err)
	}
	_ = audit.Append(domain.LogBot, domain.Entry{
		"event":             "bridge_start",
		"channel_map_count": len(cfg.ChannelMap),
	})

	directory, err := data.NewDirectoryRepo(cfg.DirectoryDBPath)
	if err != nil {
		fmt.Printf("[Bridge] Channel directory unavailable, names resolved via API only: %v\n", err)
		directory = nil
	}
	defer func() {
		if directory != nil {
			directory.Close()
		}
	}()

	// Repository layer
	webhooks := data.NewWebhookRepo()
	channels := data.NewChannelRepo(cfg.Token)
	names := usecase.NewNameResolvers(directory, channels)

	// Usecase layer
	filter := domain.NewFilter(
		cfg.Rules.DeniedAuthorPrefixes,
		cfg.Rules.DeniedProviderPrefixes,
		cfg.MessageWindow(),
	)
	classifier := domain.NewClassifier(cfg.Targets, cfg.Rules.StoreDomains)
	pipelineUC := usecase.NewPipelineUsecase(filter, classifier)
	forwardUC := usecase.NewForwardUsecase(
		webhooks, channels, audit, names,
		domain.NewWindow(cfg.ForwardWindow()),
		cfg.Verbose,
	)

	// Service layer
	bridgeSvc := service.NewBridgeService(pipelineUC, forwardUC, audit, names, cfg.ChannelMap, cfg.Verbose)

	var mentionSvc *service.MentionService
	if len(cfg.PingChannels) > 0 && cfg.MentionToken != "" {
		mentionChannels := data.NewChannelRepo("Bot " + cfg.MentionToken)
		// Resolved once so the mention service can ignore its own pings.
		selfID, err := mentionChannels.CurrentUserID(context.Background())
		if err != nil {
			fmt.Printf("[Bridge] Could not resolve ping bot identity: %v\n", err)
		}
		broadcastUC := usecase.NewBroadcastUsecase(
			domain.NewCooldownGate(), mentionChannels, audit,
			cfg.VisibleDelay(), cfg.Cooldown(),
		)
		mentionSvc = service.NewMentionService(
			broadcastUC, names, cfg.DestGuildID, cfg.PingChannels, selfID, cfg.PingWebhookOnly,
		)
		fmt.Printf("[Bridge] Mention pings enabled for %d channels\n", len(cfg.PingChannels))
	}

	heartbeat := service.NewHeartbeat(audit, bridgeSvc)
	if err := heartbeat.Start(); err != nil {
		fmt.Printf("[Bridge] Heartbeat disabled: %v\n", err)
	}

	// Gateway
	gw := server.NewGateway(cfg.Token)
	gw.OnReady(bridgeSvc.HandleReady)
	gw.OnMessage(func(m *domain.Message) {
		ctx := context.Background()
		bridgeSvc.HandleMessage(ctx, m)
		if mentionSvc != nil {
			mentionSvc.HandleMessage(ctx, m)
		}
	})

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		heartbeat.Stop()
		gw.Stop()
		if directory != nil {
			directory.Close()
		}
		releaseLock(cfg.LockFilePath, lock)
		os.Exit(0)
	}()

	fmt.Printf("Starting bridge, monitoring %d channels...\n", len(cfg.ChannelMap))
	if err := gw.Start(); err != nil {
		log.Fatalf("Gateway error: %v", err)
	}
}

// acquireLock creates the lock file exclusively, failing if it exists.
func acquireLock(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(f, "%d\n", os.Getpid())
	return f, nil
}

func releaseLock(path string, f *os.File) {
	if f == nil {
		return
	}
	f.Close()
	os.Remove(path)
}
