package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"greencoin.backend/internal/config"
	"greencoin.backend/pkg/jwt"
)

// token-gen issues bearer tokens accepted when AUTH_MODE=local.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	if err := runTokenGen(os.Args[1:], config.Load(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func validateInputs(uid, email string) error {
	if strings.TrimSpace(uid) == "" {
		return fmt.Errorf("--uid is required")
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email: %q", email)
	}
	return nil
}

func runTokenGen(args []string, cfg *config.Config, out io.Writer) error {
	fs := flag.NewFlagSet("token-gen", flag.ContinueOnError)
	uid := fs.String("uid", "", "subject the token is issued for (required)")
	email := fs.String("email", "", "email claim (required)")
	name := fs.String("name", "", "display name claim (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validateInputs(*uid, *email); err != nil {
		return err
	}
	if cfg.Auth.Mode != config.AuthModeLocal {
		log.Printf("AUTH_MODE=%s, the server will not accept this token", cfg.Auth.Mode)
	}

	token, err := jwt.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.JWTExpiry).IssueToken(*uid, *email, *name)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	_, _ = fmt.Fprintf(out, "TOKEN=%s\n", token)
	_, _ = fmt.Fprintf(out, "expires_in=%s\n", cfg.Auth.JWTExpiry)
	return nil
}
