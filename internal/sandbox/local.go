package sandbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/google/uuid"
	"github.com/pelletier/go-toml"
)

// LocalProvider runs sandboxes on the local machine, for development and
// tests. Workspace provisioning goes through go-git directly instead of
// shelling out.
type LocalProvider struct {
	// Root is the parent directory for sandbox workspaces. Defaults to a
	// smolpaws directory under the OS temp dir.
	Root string
}

func NewLocalProvider(root string) *LocalProvider {
	if root == "" {
		root = filepath.Join(os.TempDir(), "smolpaws")
	}
	return &LocalProvider{Root: root}
}

func (p *LocalProvider) Create(ctx context.Context, opts CreateOptions) (Sandbox, error) {
	id := uuid.NewString()
	root := filepath.Join(p.Root, id)
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &localSandbox{id: id, root: root}, nil
}

type localSandbox struct {
	id   string
	root string
}

func (s *localSandbox) ID() string   { return s.id }
func (s *localSandbox) Root() string { return s.root }

func (s *localSandbox) Exec(ctx context.Context, command string) (string, error) {
	// Argument vector instead of an interpolated string; bash still runs
	// the command because provisioned workspaces rely on shell constructs.
	cmd := exec.CommandContext(ctx, "bash", "-lc", command)
	cmd.Dir = s.root
	out, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", CommandError{Command: command, ExitCode: exitErr.ExitCode(), Output: string(out)}
		}
		return "", fmt.Errorf("running sandbox command: %w", err)
	}
	return string(out), nil
}

func (s *localSandbox) Delete(ctx context.Context) error {
	return os.RemoveAll(s.root)
}

// EnsureWorkspace clones or updates the repository with go-git. Same
// contract as the shell path: guarded clone, fetch, force-create the local
// branch tracking origin/<ref>, idempotent across attempts.
func (s *localSandbox) EnsureWorkspace(ctx context.Context, repo RepoContext, token string) (string, error) {
	if token == "" {
		return "", ErrMissingToken
	}

	// Username can be anything except empty since Github ignores this field
	// "x-access-token" is conventional
	auth := &http.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}

	repoDir := filepath.Join(s.root, reposDirName, sanitizeRepoName(repo.FullName))
	cloneURL := fmt.Sprintf("https://github.com/%s.git", repo.FullName)

	var gitRepo *git.Repository
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); os.IsNotExist(err) {
		logger.Printf("Cloning repository %v", repo.FullName)
		gitRepo, err = git.PlainCloneContext(ctx, repoDir, false, &git.CloneOptions{
			Auth: auth,
			URL:  cloneURL,
		})
		if err != nil {
			return "", fmt.Errorf("cloning %s: %w", repo.FullName, err)
		}
	} else {
		gitRepo, err = git.PlainOpen(repoDir)
		if err != nil {
			return "", fmt.Errorf("opening workspace repository: %w", err)
		}
	}

	remote, err := gitRepo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("finding remote origin: %w", err)
	}

	fetchOpts := &git.FetchOptions{Auth: auth}
	if repo.Ref != "" {
		fetchOpts.RefSpecs = []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/remotes/origin/%s", repo.Ref, repo.Ref)),
		}
	}
	if err := remote.FetchContext(ctx, fetchOpts); err != nil && err != git.NoErrAlreadyUpToDate {
		return "", fmt.Errorf("fetching origin: %w", err)
	}

	if repo.Ref != "" {
		if err := checkoutTracking(gitRepo, repo.Ref); err != nil {
			return "", err
		}
	}

	if err := writeLocalMetadata(repoDir, repo); err != nil {
		return "", err
	}
	return repoDir, nil
}

// checkoutTracking force-creates the local branch at origin/<ref> and
// checks it out, the go-git equivalent of `git checkout -B ref origin/ref`.
func checkoutTracking(gitRepo *git.Repository, ref string) error {
	hash, err := gitRepo.ResolveRevision(plumbing.Revision("refs/remotes/origin/" + ref))
	if err != nil {
		return fmt.Errorf("resolving origin/%s: %w", ref, err)
	}
	branchRef := plumbing.NewBranchReferenceName(ref)
	if err := gitRepo.Storer.SetReference(plumbing.NewHashReference(branchRef, *hash)); err != nil {
		return fmt.Errorf("updating branch %s: %w", ref, err)
	}
	worktree, err := gitRepo.Worktree()
	if err != nil {
		return err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: branchRef, Force: true}); err != nil {
		return fmt.Errorf("checking out %s: %w", ref, err)
	}
	return nil
}

func writeLocalMetadata(repoDir string, repo RepoContext) error {
	meta := WorkspaceMetadata{
		Repository: RepositoryMetadata{FullName: repo.FullName, Ref: repo.Ref},
		State:      StateMetadata{ProvisionedAt: time.Now().UTC().Format(time.RFC3339)},
	}
	b, err := toml.Marshal(meta)
	if err != nil {
		return fmt.Errorf("encoding workspace metadata: %w", err)
	}
	return os.WriteFile(filepath.Join(repoDir, metadataFileName), b, 0644)
}
