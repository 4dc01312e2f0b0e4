package sandbox

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"time"

	"github.com/pelletier/go-toml"
)

const (
	reposDirName     = "repos"
	metadataFileName = ".smolpaws.toml"
)

// WorkspaceMetadata is written into the workspace after each provisioning
// pass, so a later attempt (or an operator poking at the sandbox) can see
// what was checked out and when.
type WorkspaceMetadata struct {
	Repository RepositoryMetadata `toml:"repository"`
	State      StateMetadata      `toml:"state"`
}

type RepositoryMetadata struct {
	FullName string `toml:"full_name"`
	Ref      string `toml:"ref,omitempty"`
}

type StateMetadata struct {
	ProvisionedAt string `toml:"provisioned_at"`
}

// WorkspaceProvisioner is an optional Sandbox upgrade: a provider that can
// provision the repository itself (the local provider does it with go-git)
// instead of going through shell commands.
type WorkspaceProvisioner interface {
	EnsureWorkspace(ctx context.Context, repo RepoContext, token string) (string, error)
}

// ensureWorkspace makes sure the repository is cloned and on the requested
// ref inside the sandbox, and returns the workspace root. Idempotent: the
// clone is guarded on the .git directory, so it is safe to call repeatedly
// against the same workspace, including after a failed earlier attempt.
func ensureWorkspace(ctx context.Context, sb Sandbox, repo RepoContext, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}
	if p, ok := sb.(WorkspaceProvisioner); ok {
		return p.EnsureWorkspace(ctx, repo, token)
	}

	reposDir := path.Join(sb.Root(), reposDirName)
	repoDir := path.Join(reposDir, sanitizeRepoName(repo.FullName))
	cloneURL := CloneURL(repo.FullName, token)

	if _, err := sb.Exec(ctx, fmt.Sprintf("mkdir -p %q", reposDir)); err != nil {
		return "", err
	}
	clone := fmt.Sprintf(`if [ ! -d %q ]; then git clone %q %q; fi`, repoDir+"/.git", cloneURL, repoDir)
	if _, err := sb.Exec(ctx, clone); err != nil {
		return "", err
	}

	if repo.Ref != "" {
		if _, err := sb.Exec(ctx, fmt.Sprintf("git -C %q fetch origin %q", repoDir, repo.Ref)); err != nil {
			return "", err
		}
		checkout := fmt.Sprintf("git -C %q checkout -B %q %q", repoDir, repo.Ref, "origin/"+repo.Ref)
		if _, err := sb.Exec(ctx, checkout); err != nil {
			return "", err
		}
	} else {
		if _, err := sb.Exec(ctx, fmt.Sprintf("git -C %q fetch origin", repoDir)); err != nil {
			return "", err
		}
	}

	if err := writeWorkspaceMetadata(ctx, sb, repoDir, repo); err != nil {
		return "", err
	}
	return repoDir, nil
}

func writeWorkspaceMetadata(ctx context.Context, sb Sandbox, repoDir string, repo RepoContext) error {
	meta := WorkspaceMetadata{
		Repository: RepositoryMetadata{FullName: repo.FullName, Ref: repo.Ref},
		State:      StateMetadata{ProvisionedAt: time.Now().UTC().Format(time.RFC3339)},
	}
	b, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding workspace metadata: %w", err)
	}
	_, err = sb.Exec(ctx, heredocWrite(path.Join(repoDir, metadataFileName), string(b)))
	return err
}

// heredocWrite materializes a file inside the sandbox through a quoted
// heredoc, so the content passes through the shell without expansion.
func heredocWrite(filePath, content string) string {
	return fmt.Sprintf("cat <<'EOF' > %q\n%s\nEOF", filePath, content)
}

var repoNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)

// sanitizeRepoName turns a repository full name into a directory slug.
func sanitizeRepoName(fullName string) string {
	return repoNameSanitizer.ReplaceAllString(fullName, "-")
}

// CloneURL builds a token-embedded HTTPS clone URL. The token is URL
// encoded; the resulting string is a credential and is never logged.
func CloneURL(fullName, token string) string {
	return fmt.Sprintf("https://x-access-token:%s@github.com/%s.git", url.QueryEscape(token), fullName)
}
