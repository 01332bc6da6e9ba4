// Package gitinfo derives source-browse defaults from the input directory's
// git checkout, so projects hosted on a forge get working "view source"
// links without configuring project.tree by hand.
package gitinfo

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"

	"git.home.luguber.info/inful/flashdoc/internal/logfields"
)

var (
	ErrNotARepository = errors.New("input directory is not a git repository")
	ErrNoOrigin       = errors.New("repository has no origin remote")
)

// TreeURL returns a browse base URL for the checkout at dir, built from the
// origin remote and the current HEAD branch: <origin web url>/tree/<branch>/.
// Callers fall back to no browse links when this fails.
func TreeURL(dir string) (string, error) {
	repo, err := git.PlainOpen(dir)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNotARepository, err)
	}

	remote, err := repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoOrigin, err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", ErrNoOrigin
	}
	base := webURL(urls[0])

	branch := "main"
	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		branch = head.Name().Short()
	}

	tree := base + "/tree/" + branch + "/"
	slog.Debug("derived browse base from git checkout",
		logfields.Path(dir), logfields.URL(tree))
	return tree, nil
}

// webURL normalizes a git remote URL to its https web form: ssh and scp-like
// forms are rewritten, a trailing .git is dropped.
func webURL(remote string) string {
	url := strings.TrimSuffix(remote, ".git")
	if rest, ok := strings.CutPrefix(url, "git@"); ok {
		return "https://" + strings.Replace(rest, ":", "/", 1)
	}
	if rest, ok := strings.CutPrefix(url, "ssh://git@"); ok {
		return "https://" + rest
	}
	return url
}
