// Package credentials resolves per-user Google Calendar access tokens,
// refreshing them against the OAuth token endpoint when expired.
package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pmorrell/minder/internal/models"
	"gorm.io/gorm"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

// ErrNoCredential means the user never linked a calendar account.
var ErrNoCredential = errors.New("no calendar credential on file")

// Provider loads stored credentials and keeps access tokens fresh.
type Provider struct {
	db           *gorm.DB
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
}

// NewProvider creates a credential provider backed by the database.
func NewProvider(db *gorm.DB, clientID, clientSecret string) *Provider {
	return &Provider{
		db:           db,
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     googleTokenURL,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
}

// NewProviderWithTokenURL is used by tests to point refresh at a fake server.
func NewProviderWithTokenURL(db *gorm.DB, clientID, clientSecret, tokenURL string) *Provider {
	p := NewProvider(db, clientID, clientSecret)
	p.tokenURL = tokenURL
	return p
}

// CalendarToken returns a valid access token for the user, refreshing
// and persisting it first when the stored one has expired. A single
// refresh attempt is made; failure surfaces to the caller.
func (p *Provider) CalendarToken(ctx context.Context, userID uint) (string, error) {
	var cred models.CalendarCredential
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNoCredential
		}
		return "", fmt.Errorf("failed to load credential: %w", err)
	}

	if cred.Expired(time.Now()) && cred.RefreshToken != "" {
		if err := p.refresh(ctx, &cred); err != nil {
			return "", fmt.Errorf("failed to refresh access token: %w", err)
		}
	}

	if cred.AccessToken == "" {
		return "", ErrNoCredential
	}
	return cred.AccessToken, nil
}

// tokenResponse is the OAuth token endpoint reply.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (p *Provider) refresh(ctx context.Context, cred *models.CalendarCredential) error {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", cred.RefreshToken)
	form.Set("client_id", p.clientID)
	form.Set("client_secret", p.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("token endpoint returned empty access token")
	}

	cred.AccessToken = token.AccessToken
	if token.ExpiresIn > 0 {
		expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
		cred.TokenExpiry = &expiry
	}

	// Write the refreshed token back so the next invocation skips the
	// round trip. Save runs the encryption hooks in place, so persist a
	// copy and keep the plaintext on the caller's struct.
	persisted := *cred
	if err := p.db.WithContext(ctx).Save(&persisted).Error; err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	return nil
}
