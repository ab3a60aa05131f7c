// Package directory resolves principal ids to contact addresses via the
// external user system.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"communityhub/internal/domain"
)

// HTTPDirectory looks up a principal's email over the user system's REST API.
type HTTPDirectory struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPDirectory returns a directory backed by the user service at baseURL.
// token, if non-empty, is sent as a bearer token on each request.
func NewHTTPDirectory(baseURL, token string) *HTTPDirectory {
	return &HTTPDirectory{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

var _ domain.PrincipalDirectory = (*HTTPDirectory)(nil)

func (d *HTTPDirectory) EmailFor(ctx context.Context, principalID string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/contact", d.baseURL, url.PathEscape(principalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build directory request: %w", err)
	}
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("directory lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("principal %s: %w", principalID, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("directory lookup: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode directory response: %w", err)
	}
	if body.Email == "" {
		return "", fmt.Errorf("principal %s has no email on file", principalID)
	}
	return body.Email, nil
}
