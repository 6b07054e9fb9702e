package githubapp

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/agentbeats/github-app/config"
)

// AppClient implements Client against the GitHub REST API.
type AppClient struct {
	baseURL         string
	appID           int64
	privateKey      *rsa.PrivateKey
	httpClient      *http.Client
	limiter         *rate.Limiter
	downloadTimeout time.Duration
	writeTimeout    time.Duration
	logger          *slog.Logger

	mu     sync.Mutex
	tokens map[int64]installationToken
}

var _ Client = (*AppClient)(nil)

// NewAppClient builds a client from the GitHub App configuration. The
// private key must be a PEM-encoded RSA key.
func NewAppClient(cfg config.GitHubConfig, logger *slog.Logger) (*AppClient, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.PrivateKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse github app private key: %w", err)
	}

	return &AppClient{
		baseURL:    cfg.APIBaseURL,
		appID:      cfg.AppID,
		privateKey: key,
		httpClient: &http.Client{},
		// GitHub allows far more, but this app has no business bursting past
		// a handful of calls per second.
		limiter:         rate.NewLimiter(rate.Limit(10), 20),
		downloadTimeout: cfg.DownloadTimeout,
		writeTimeout:    cfg.WriteTimeout,
		logger:          logger,
		tokens:          make(map[int64]installationToken),
	}, nil
}

// GetRepoContents reads the raw contents of a file in the repository.
func (c *AppClient) GetRepoContents(ctx context.Context, installationID int64, repo, path string) ([]byte, error) {
	return c.requestRaw(ctx, installationID, http.MethodGet,
		fmt.Sprintf("/repos/%s/contents/%s", repo, path),
		"application/vnd.github.raw+json", 0)
}

// ListArtifacts lists the artifacts produced by a workflow run.
func (c *AppClient) ListArtifacts(ctx context.Context, installationID int64, repo string, runID int64) ([]Artifact, error) {
	var out struct {
		Artifacts []Artifact `json:"artifacts"`
	}
	err := c.requestJSON(ctx, installationID, http.MethodGet,
		fmt.Sprintf("/repos/%s/actions/runs/%d/artifacts", repo, runID), nil, &out, 0)
	if err != nil {
		return nil, err
	}
	return out.Artifacts, nil
}

// DownloadArtifact downloads an artifact's zip archive. GitHub answers with
// a redirect to short-lived blob storage whose signed URL must be fetched
// without the bearer token, so the redirect is followed manually.
func (c *AppClient) DownloadArtifact(ctx context.Context, installationID int64, repo string, artifactID int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.downloadTimeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	client, err := c.clientFor(ctx, installationID)
	if err != nil {
		return nil, err
	}
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		return http.ErrUseLastResponse
	}

	path := fmt.Sprintf("/repos/%s/actions/artifacts/%d/zip", repo, artifactID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("GET %s: %w", path, ErrNotFound)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &APIError{StatusCode: resp.StatusCode, Method: http.MethodGet, Path: path, Message: apiMessage(body)}
	case resp.StatusCode >= 300:
		location, err := resp.Location()
		if err != nil {
			return nil, fmt.Errorf("GET %s: redirect without location: %w", path, err)
		}
		return c.fetchBlob(ctx, location.String())
	}
	return io.ReadAll(resp.Body)
}

// fetchBlob retrieves a signed blob URL with the unauthenticated client.
func (c *AppClient) fetchBlob(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build blob request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download artifact blob: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Method: http.MethodGet, Path: url, Message: "artifact blob download failed"}
	}
	return io.ReadAll(resp.Body)
}

type gitObject struct {
	SHA string `json:"sha"`
}

type gitRef struct {
	Ref    string    `json:"ref"`
	Object gitObject `json:"object"`
}

// CreateBranch creates branch pointing at the current head of base.
func (c *AppClient) CreateBranch(ctx context.Context, installationID int64, repo, branch, base string) error {
	var baseRef gitRef
	err := c.requestJSON(ctx, installationID, http.MethodGet,
		fmt.Sprintf("/repos/%s/git/ref/heads/%s", repo, base), nil, &baseRef, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to resolve base branch %q: %w", base, err)
	}

	body := map[string]string{
		"ref": "refs/heads/" + branch,
		"sha": baseRef.Object.SHA,
	}
	err = c.requestJSON(ctx, installationID, http.MethodPost,
		fmt.Sprintf("/repos/%s/git/refs", repo), body, nil, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to create branch %q: %w", branch, err)
	}
	return nil
}

// CommitFiles writes files to branch as one commit via the git data API:
// read the branch head, build a tree on top of it, commit, advance the ref.
func (c *AppClient) CommitFiles(ctx context.Context, installationID int64, repo, branch string, files map[string]string, message string) error {
	var headRef gitRef
	err := c.requestJSON(ctx, installationID, http.MethodGet,
		fmt.Sprintf("/repos/%s/git/ref/heads/%s", repo, branch), nil, &headRef, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to resolve branch %q: %w", branch, err)
	}

	var headCommit struct {
		Tree gitObject `json:"tree"`
	}
	err = c.requestJSON(ctx, installationID, http.MethodGet,
		fmt.Sprintf("/repos/%s/git/commits/%s", repo, headRef.Object.SHA), nil, &headCommit, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to read head commit: %w", err)
	}

	type treeEntry struct {
		Path    string `json:"path"`
		Mode    string `json:"mode"`
		Type    string `json:"type"`
		Content string `json:"content"`
	}
	entries := make([]treeEntry, 0, len(files))
	for path, content := range files {
		entries = append(entries, treeEntry{Path: path, Mode: "100644", Type: "blob", Content: content})
	}

	var tree gitObject
	err = c.requestJSON(ctx, installationID, http.MethodPost,
		fmt.Sprintf("/repos/%s/git/trees", repo),
		map[string]any{"base_tree": headCommit.Tree.SHA, "tree": entries}, &tree, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to create tree: %w", err)
	}

	var commit gitObject
	err = c.requestJSON(ctx, installationID, http.MethodPost,
		fmt.Sprintf("/repos/%s/git/commits", repo),
		map[string]any{
			"message": message,
			"tree":    tree.SHA,
			"parents": []string{headRef.Object.SHA},
		}, &commit, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}

	err = c.requestJSON(ctx, installationID, http.MethodPatch,
		fmt.Sprintf("/repos/%s/git/refs/heads/%s", repo, branch),
		map[string]string{"sha": commit.SHA}, nil, c.writeTimeout)
	if err != nil {
		return fmt.Errorf("failed to advance branch %q: %w", branch, err)
	}
	return nil
}

// CreatePullRequest opens a pull request from head into base.
func (c *AppClient) CreatePullRequest(ctx context.Context, installationID int64, repo, head, base, title, body string) (*PullRequest, error) {
	pr := new(PullRequest)
	err := c.requestJSON(ctx, installationID, http.MethodPost,
		fmt.Sprintf("/repos/%s/pulls", repo),
		map[string]string{"title": title, "head": head, "base": base, "body": body}, pr, c.writeTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request: %w", err)
	}
	return pr, nil
}

// requestJSON performs an authenticated JSON round trip. A zero timeout means the
// caller's context governs the call.
func (c *AppClient) requestJSON(ctx context.Context, installationID int64, method, path string, in, out any, timeout time.Duration) error {
	var payload io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	body, err := c.do(ctx, installationID, method, path, "application/vnd.github+json", payload, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// requestRaw performs an authenticated round trip and returns the response bytes.
func (c *AppClient) requestRaw(ctx context.Context, installationID int64, method, path, accept string, timeout time.Duration) ([]byte, error) {
	return c.do(ctx, installationID, method, path, accept, nil, timeout)
}

func (c *AppClient) do(ctx context.Context, installationID int64, method, path, accept string, payload io.Reader, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	client, err := c.clientFor(ctx, installationID)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Message:    apiMessage(body),
		}
	}
	return body, nil
}
