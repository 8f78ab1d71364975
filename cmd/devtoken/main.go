// Command devtoken mints an access token for an existing profile and registers
// its session, so the API can be exercised locally without an identity provider.
// With -revoke it ends the session behind a previously minted token.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/storefront-backend/internal/profiles"
	"github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	email := flag.String("email", "", "email of the profile to mint a token for")
	revoke := flag.String("revoke", "", "access token whose session should be revoked")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "devtoken"})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if cfg.App.IsProd() {
		logg.Error(ctx, "devtoken refuses to run in production", nil)
		os.Exit(1)
	}
	if strings.TrimSpace(*email) == "" && strings.TrimSpace(*revoke) == "" {
		fmt.Fprintln(os.Stderr, "usage: devtoken -email someone@example.com | -revoke <token>")
		os.Exit(2)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	if token := strings.TrimSpace(*revoke); token != "" {
		claims, err := auth.ParseAccessTokenAllowExpired(cfg.JWT, token)
		if err != nil {
			logg.Error(ctx, "token could not be parsed", err)
			os.Exit(1)
		}
		if err := sessions.Revoke(ctx, claims.ID); err != nil {
			logg.Error(ctx, "failed to revoke session", err)
			os.Exit(1)
		}
		logg.Info(logg.WithField(ctx, "user_id", claims.UserID.String()), "session revoked")
		return
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	profile, err := profiles.NewRepository(dbClient.DB()).FindByEmail(ctx, *email)
	if err != nil {
		logg.Error(logg.WithField(ctx, "email", *email), "profile lookup failed", err)
		os.Exit(1)
	}

	accessID := session.NewAccessID()
	if err := sessions.Open(ctx, accessID, profile.ID); err != nil {
		logg.Error(ctx, "failed to register session", err)
		os.Exit(1)
	}
	token, err := auth.MintAccessToken(cfg.JWT, time.Now(), auth.AccessTokenPayload{
		UserID: profile.ID,
		Email:  profile.Email,
		Role:   profile.Role,
		JTI:    accessID,
	})
	if err != nil {
		logg.Error(ctx, "failed to mint token", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
