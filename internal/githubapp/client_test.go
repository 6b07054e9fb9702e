package githubapp

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentbeats/github-app/config"
)

func testPrivateKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
	return string(pem.EncodeToMemory(block))
}

// newTestClient spins up a fake GitHub API on mux and a client pointed at it.
// The token endpoint is installed automatically and counts its mints.
func newTestClient(t *testing.T, mux *http.ServeMux) (*AppClient, *int) {
	t.Helper()

	mints := 0
	mux.HandleFunc("POST /app/installations/42/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, "missing app jwt", http.StatusUnauthorized)
			return
		}
		mints++
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"token":      "inst-token",
			"expires_at": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client, err := NewAppClient(config.GitHubConfig{
		AppID:           12345,
		PrivateKey:      testPrivateKeyPEM(t),
		APIBaseURL:      server.URL,
		DownloadTimeout: 10 * time.Second,
		WriteTimeout:    10 * time.Second,
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return client, &mints
}

func requireInstallationAuth(t *testing.T, r *http.Request) {
	t.Helper()
	assert.Equal(t, "Bearer inst-token", r.Header.Get("Authorization"))
}

func TestGetRepoContents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/bench/leaderboard/contents/.github/workflows/runner.yml", func(w http.ResponseWriter, r *http.Request) {
		requireInstallationAuth(t, r)
		fmt.Fprint(w, "name: runner")
	})
	client, mints := newTestClient(t, mux)

	contents, err := client.GetRepoContents(context.Background(), 42, "bench/leaderboard", ".github/workflows/runner.yml")
	require.NoError(t, err)
	assert.Equal(t, "name: runner", string(contents))

	// Second call reuses the cached installation token.
	_, err = client.GetRepoContents(context.Background(), 42, "bench/leaderboard", ".github/workflows/runner.yml")
	require.NoError(t, err)
	assert.Equal(t, 1, *mints)
}

func TestGetRepoContentsNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.NewServeMux())

	_, err := client.GetRepoContents(context.Background(), 42, "bench/leaderboard", "nope.yml")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListArtifacts(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octocat/agent/actions/runs/987654/artifacts", func(w http.ResponseWriter, r *http.Request) {
		requireInstallationAuth(t, r)
		json.NewEncoder(w).Encode(map[string]any{
			"total_count": 2,
			"artifacts": []map[string]any{
				{"id": 1, "name": "logs", "size_in_bytes": 10},
				{"id": 2, "name": "agentbeats-submission", "size_in_bytes": 2048},
			},
		})
	})
	client, _ := newTestClient(t, mux)

	artifacts, err := client.ListArtifacts(context.Background(), 42, "octocat/agent", 987654)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)
	assert.Equal(t, "agentbeats-submission", artifacts[1].Name)
	assert.Equal(t, int64(2), artifacts[1].ID)
}

func TestDownloadArtifactFollowsRedirectWithoutAuth(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octocat/agent/actions/artifacts/2/zip", func(w http.ResponseWriter, r *http.Request) {
		requireInstallationAuth(t, r)
		http.Redirect(w, r, "/blob/signed-url", http.StatusFound)
	})
	mux.HandleFunc("GET /blob/signed-url", func(w http.ResponseWriter, r *http.Request) {
		// Signed blob URLs reject bearer tokens.
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte("zip-bytes"))
	})
	client, _ := newTestClient(t, mux)

	data, err := client.DownloadArtifact(context.Background(), 42, "octocat/agent", 2)
	require.NoError(t, err)
	assert.Equal(t, "zip-bytes", string(data))
}

func TestCreateBranch(t *testing.T) {
	var createdRef map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/bench/leaderboard/git/ref/heads/main", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"ref":    "refs/heads/main",
			"object": map[string]string{"sha": "base-sha"},
		})
	})
	mux.HandleFunc("POST /repos/bench/leaderboard/git/refs", func(w http.ResponseWriter, r *http.Request) {
		requireInstallationAuth(t, r)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&createdRef))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, "{}")
	})
	client, _ := newTestClient(t, mux)

	err := client.CreateBranch(context.Background(), 42, "bench/leaderboard", "agentbeats/submission-987654", "main")
	require.NoError(t, err)
	assert.Equal(t, "refs/heads/agentbeats/submission-987654", createdRef["ref"])
	assert.Equal(t, "base-sha", createdRef["sha"])
}

func TestCommitFiles(t *testing.T) {
	var (
		treeReq   map[string]any
		commitReq map[string]any
		patchedTo string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/bench/leaderboard/git/ref/heads/work", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"object": map[string]string{"sha": "head-sha"}})
	})
	mux.HandleFunc("GET /repos/bench/leaderboard/git/commits/head-sha", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"tree": map[string]string{"sha": "tree-sha"}})
	})
	mux.HandleFunc("POST /repos/bench/leaderboard/git/trees", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&treeReq))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"sha": "new-tree-sha"})
	})
	mux.HandleFunc("POST /repos/bench/leaderboard/git/commits", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&commitReq))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"sha": "new-commit-sha"})
	})
	mux.HandleFunc("PATCH /repos/bench/leaderboard/git/refs/heads/work", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		patchedTo = body["sha"]
		fmt.Fprint(w, "{}")
	})
	client, _ := newTestClient(t, mux)

	files := map[string]string{"submissions/octocat/x/results.json": `{"score":1}`}
	err := client.CommitFiles(context.Background(), 42, "bench/leaderboard", "work", files, "[AgentBeats] Submission from octocat")
	require.NoError(t, err)

	assert.Equal(t, "tree-sha", treeReq["base_tree"])
	entries := treeReq["tree"].([]any)
	require.Len(t, entries, 1)
	entry := entries[0].(map[string]any)
	assert.Equal(t, "submissions/octocat/x/results.json", entry["path"])
	assert.Equal(t, "100644", entry["mode"])

	assert.Equal(t, "[AgentBeats] Submission from octocat", commitReq["message"])
	assert.Equal(t, "new-tree-sha", commitReq["tree"])
	assert.Equal(t, []any{"head-sha"}, commitReq["parents"])
	assert.Equal(t, "new-commit-sha", patchedTo)
}

func TestCreatePullRequest(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/bench/leaderboard/pulls", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "agentbeats/submission-987654", body["head"])
		assert.Equal(t, "main", body["base"])
		assert.Equal(t, "[Submission] octocat", body["title"])
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"number":   3,
			"html_url": "https://github.com/bench/leaderboard/pull/3",
		})
	})
	client, _ := newTestClient(t, mux)

	pr, err := client.CreatePullRequest(context.Background(), 42, "bench/leaderboard",
		"agentbeats/submission-987654", "main", "[Submission] octocat", "body")
	require.NoError(t, err)
	assert.Equal(t, 3, pr.Number)
	assert.Equal(t, "https://github.com/bench/leaderboard/pull/3", pr.HTMLURL)
}

func TestAPIErrorSurfacesMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/bench/leaderboard/pulls", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"message": "A pull request already exists"})
	})
	client, _ := newTestClient(t, mux)

	_, err := client.CreatePullRequest(context.Background(), 42, "bench/leaderboard", "h", "main", "t", "b")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "pull request already exists")
}
