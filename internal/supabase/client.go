// Package supabase resolves users against Supabase Auth.
package supabase

import (
	"context"
	"fmt"
	"strings"

	"github.com/supabase-community/supabase-go"

	"freelance-backend/internal/config"
	"freelance-backend/internal/models"
	"freelance-backend/internal/services"
)

// AuthDirectory looks users up in Supabase Auth with their own access token.
type AuthDirectory struct {
	Supabase *supabase.Client
}

var _ services.IdentitySource = (*AuthDirectory)(nil)

func NewAuthDirectory(cfg *config.Config) (*AuthDirectory, error) {
	client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &AuthDirectory{Supabase: client}, nil
}

// FetchUser returns the token owner. The role comes from the user_type
// entry of the user's metadata, set at sign-up.
func (d *AuthDirectory) FetchUser(ctx context.Context, accessToken string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := d.Supabase.Auth.WithToken(accessToken).GetUser()
	if err != nil {
		return nil, fmt.Errorf("failed to get supabase user: %w", err)
	}

	return UserFromMetadata(resp.ID.String(), resp.Email, resp.UserMetadata)
}

// UserFromMetadata builds a local user record from Supabase Auth fields.
func UserFromMetadata(id, email string, metadata map[string]interface{}) (*models.User, error) {
	user := &models.User{Email: email}
	if err := user.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, fmt.Errorf("invalid supabase user id %q: %w", id, err)
	}

	userType, _ := metadata["user_type"].(string)
	user.Role = models.ParseRole(userType)

	username, _ := metadata["username"].(string)
	if username == "" {
		username, _, _ = strings.Cut(email, "@")
	}
	if username == "" {
		username = user.ID.String()
	}
	user.Username = username
	return user, nil
}
