package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sweepboard/app/interfaces"

	"github.com/golang-jwt/jwt/v5"
)

// RemoteViewStore persists view state against the hosted settings API so a
// user's filters follow them across machines. Records live under
// {base}/settings/{userKey}/{settingsKey}.
type RemoteViewStore struct {
	baseURL string
	token   string
	userKey string
	client  *http.Client
}

// NewRemoteViewStore creates a remote store from the API base URL and the
// session token. The per-user key is extracted from the token's claims
// without verifying the signature; the server is the authority on the token,
// the client only needs a stable key.
func NewRemoteViewStore(baseURL, token string) (*RemoteViewStore, error) {
	userKey, err := UserKeyFromToken(token)
	if err != nil {
		return nil, err
	}
	return &RemoteViewStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		userKey: userKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// UserKeyFromToken extracts the per-user settings key from a JWT session
// token, preferring the sub claim and falling back to email.
func UserKeyFromToken(token string) (string, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return "", fmt.Errorf("failed to parse session token: %w", err)
	}
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub, nil
	}
	if email, ok := claims["email"].(string); ok && email != "" {
		return email, nil
	}
	return "", fmt.Errorf("session token has no sub or email claim")
}

func (s *RemoteViewStore) url() string {
	return fmt.Sprintf("%s/settings/%s/%s", s.baseURL, s.userKey, SettingsKey)
}

// Load fetches the persisted state. A 404 means the user has never saved;
// that yields the default state, not an error.
func (s *RemoteViewStore) Load() (*interfaces.ViewState, error) {
	req, err := http.NewRequest("GET", s.url(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to load view state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return DefaultViewState(), nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("view state request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var state interfaces.ViewState
	if err := json.Unmarshal(body, &state); err != nil {
		// A record written by a newer or older build should not lock the
		// user out; start from defaults instead.
		return DefaultViewState(), nil
	}
	return Normalize(&state), nil
}

// Save writes the state with a PUT, replacing the stored record.
func (s *RemoteViewStore) Save(state *interfaces.ViewState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal view state: %w", err)
	}
	req, err := http.NewRequest("PUT", s.url(), bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to save view state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("view state save failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
