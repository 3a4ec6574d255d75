package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/subwatch/internal/crypto"
	"github.com/pfrederiksen/subwatch/internal/subscription"
	"github.com/pkg/errors"
)

const (
	gistAPIURL  = "https://api.github.com/gists"
	gistTimeout = 15 * time.Second
)

// GistStore implements subscription.Storage using a private GitHub Gist
type GistStore struct {
	gistID      string
	githubToken string
	fileName    string
	apiURL      string
	httpClient  *http.Client
	encryptor   *crypto.Encryptor
}

// NewGistStore creates a new Gist-based storage
func NewGistStore(gistID, githubToken string) (*GistStore, error) {
	return NewGistStoreWithEncryption(gistID, githubToken, "")
}

// NewGistStoreWithEncryption creates a Gist-based storage that seals the state with
// encryptionKey. An empty key stores plain JSON.
func NewGistStoreWithEncryption(gistID, githubToken, encryptionKey string) (*GistStore, error) {
	if gistID == "" {
		return nil, errors.New("gist ID is required")
	}
	if githubToken == "" {
		return nil, errors.New("GitHub token is required")
	}

	return &GistStore{
		gistID:      gistID,
		githubToken: githubToken,
		fileName:    StateFileName,
		apiURL:      gistAPIURL,
		httpClient: &http.Client{
			Timeout: gistTimeout,
		},
		encryptor: crypto.NewEncryptor(encryptionKey),
	}, nil
}

func (g *GistStore) url() string {
	return fmt.Sprintf("%s/%s", g.apiURL, g.gistID)
}

func (g *GistStore) newRequest(method string, body []byte) (*http.Request, error) {
	req, err := http.NewRequest(method, g.url(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Load retrieves the state from the Gist. A Gist without the state file yields an empty state.
func (g *GistStore) Load() (subscription.State, error) {
	req, err := g.newRequest("GET", nil)
	if err != nil {
		return nil, &subscription.IOError{Op: "creating request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &subscription.IOError{Op: "fetching gist", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Response body is left out of the error to avoid leaking gist content
		return nil, &subscription.IOError{Op: "fetching gist", Err: errors.Errorf("GitHub API error (status %d)", resp.StatusCode)}
	}

	var gistResp struct {
		Files map[string]struct {
			Content   string `json:"content"`
			Truncated bool   `json:"truncated"`
			RawURL    string `json:"raw_url"`
		} `json:"files"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gistResp); err != nil {
		return nil, &subscription.IOError{Op: "decoding gist response", Err: err}
	}

	file, exists := gistResp.Files[g.fileName]
	if !exists {
		return subscription.NewState(), nil
	}

	content := []byte(file.Content)
	if file.Truncated {
		content, err = g.fetchRaw(file.RawURL)
		if err != nil {
			return nil, err
		}
	}

	data, err := g.encryptor.Open(content)
	if err != nil {
		return nil, errors.Wrapf(subscription.ErrCorruptState, "opening sealed state: %v", err)
	}
	return Decode(data)
}

// fetchRaw downloads the full file content when the API response only carried part of it
func (g *GistStore) fetchRaw(rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, &subscription.IOError{Op: "fetching gist", Err: errors.New("state file truncated and no raw_url given")}
	}

	req, err := http.NewRequest("GET", rawURL, nil)
	if err != nil {
		return nil, &subscription.IOError{Op: "creating raw request", Err: err}
	}
	req.Header.Set("Authorization", fmt.Sprintf("token %s", g.githubToken))

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &subscription.IOError{Op: "fetching raw gist file", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &subscription.IOError{Op: "fetching raw gist file", Err: errors.Errorf("GitHub API error (status %d)", resp.StatusCode)}
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &subscription.IOError{Op: "reading raw gist file", Err: err}
	}
	return content, nil
}

// Save replaces the state file in the Gist
func (g *GistStore) Save(state subscription.State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	data, err = g.encryptor.Seal(data)
	if err != nil {
		return &subscription.IOError{Op: "sealing state", Err: err}
	}

	payload := map[string]interface{}{
		"files": map[string]interface{}{
			g.fileName: map[string]string{
				"content": string(data),
			},
		},
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshaling payload")
	}

	req, err := g.newRequest("PATCH", payloadBytes)
	if err != nil {
		return &subscription.IOError{Op: "creating request", Err: err}
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return &subscription.IOError{Op: "updating gist", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &subscription.IOError{Op: "updating gist", Err: errors.Errorf("GitHub API error (status %d)", resp.StatusCode)}
	}

	return nil
}
