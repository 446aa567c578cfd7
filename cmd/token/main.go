// Command token mints an access token signed with the server's auth
// settings, for operators and service accounts.
//
//	token -config config/config.yaml -user alice -role editor
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/5sursyncIT/edusync-sub001/config"
	"github.com/5sursyncIT/edusync-sub001/pkg/jwt"
)

var errNoSecret = errors.New("auth.jwt_secret is not set, tokens cannot be signed")

func main() {
	configPath := flag.String("config", "", "path to the config file")
	user := flag.String("user", "", "user id carried by the token")
	role := flag.String("role", jwt.RoleEditor, "admin, editor or viewer")
	ttl := flag.Duration("ttl", 0, "token lifetime, defaults to auth.access_token_ttl")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	token, err := mint(cfg.Auth, *user, *role, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mint token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(auth config.AuthConfig, user, role string, ttl time.Duration) (string, error) {
	if !auth.Enabled() {
		return "", errNoSecret
	}
	if user == "" {
		return "", errors.New("-user is required")
	}
	switch role {
	case jwt.RoleAdmin, jwt.RoleEditor, jwt.RoleViewer:
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}
	if ttl > 0 {
		auth.AccessTokenTTL = ttl
	}
	return jwt.NewManager(&auth).GenerateAccessToken(user, role)
}
