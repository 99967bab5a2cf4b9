// Command admintoken prints an access token with the ADMIN role. Admin tokens
// are never issued over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/omerdemirkan/stem-bound-api/internal/auth"
	"github.com/omerdemirkan/stem-bound-api/internal/core/domain"
	"github.com/omerdemirkan/stem-bound-api/internal/infrastructure/config"
	"github.com/omerdemirkan/stem-bound-api/pkg/logger"
)

func main() {
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	subject := flag.String("subject", "admin", "value of the token's user id")
	flag.Parse()

	log := logger.Init(logger.Options{Output: os.Stderr})

	cfg, err := config.Load(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	token, err := auth.NewIssuer(cfg.Auth.Secret, *ttl).Sign(domain.TokenUser{ID: *subject, Role: domain.RoleAdmin})
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(token)
}
