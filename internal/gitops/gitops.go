// Package gitops resolves a (base, head) pair to the set of changed files.
//
// All git interaction happens here, via synchronous subprocess calls. The
// rest of the system consumes the resolved set and never shells out itself.
package gitops

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"sift/internal/errors"
	"sift/internal/paths"
)

// DefaultBranch detects the default branch for the repository.
//
// Detection order:
//  1. The remote HEAD symref (what the remote considers its default).
//  2. The first of main, master that exists locally.
//  3. "main".
func DefaultBranch(root string) string {
	if out, err := git(root, "symbolic-ref", "refs/remotes/origin/HEAD"); err == nil {
		if branch := branchFromSymref(out); branch != "" {
			return branch
		}
	}

	for _, branch := range []string{"main", "master"} {
		if _, err := git(root, "rev-parse", "--verify", branch); err == nil {
			return branch
		}
	}

	return "main"
}

// branchFromSymref extracts the branch name from a symref like
// "refs/remotes/origin/main".
func branchFromSymref(symref string) string {
	parts := strings.Split(strings.TrimSpace(symref), "/")
	return parts[len(parts)-1]
}

// ChangedFiles resolves the change-set between base and head. An empty head
// means "working tree vs base", which also includes untracked files. All
// returned paths are absolute and symlink-resolved.
func ChangedFiles(root, base, head string) (map[string]bool, error) {
	var diffText string
	var err error

	if head == "" {
		diffText, err = git(root, "diff", base)
	} else {
		// Committed range: diff against the merge base so unrelated
		// history on base does not inflate the change-set.
		diffText, err = git(root, "diff", base+"..."+head)
	}
	if err != nil {
		return nil, errors.New(errors.ResolveFailed,
			fmt.Sprintf("git diff against %q failed", base), err, nil)
	}

	relPaths, err := PathsFromDiff(diffText)
	if err != nil {
		return nil, errors.New(errors.ResolveFailed, "could not parse git diff output", err, nil)
	}

	if head == "" {
		untracked, err := git(root, "ls-files", "--others", "--exclude-standard")
		if err != nil {
			return nil, errors.New(errors.ResolveFailed, "git ls-files failed", err, nil)
		}
		for _, line := range strings.Split(untracked, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				relPaths = append(relPaths, line)
			}
		}
	}

	changed := make(map[string]bool, len(relPaths))
	for _, rel := range relPaths {
		changed[paths.ResolveUnder(root, rel)] = true
	}
	return changed, nil
}

// PathsFromDiff extracts the changed file paths from unified diff text.
// Renames contribute both sides; deletions contribute the old path.
func PathsFromDiff(diffText string) ([]string, error) {
	if strings.TrimSpace(diffText) == "" {
		return nil, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff([]byte(diffText))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var result []string
	add := func(p string) {
		p = cleanDiffPath(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		result = append(result, p)
	}

	for _, fd := range fileDiffs {
		add(fd.NewName)
		if fd.OrigName != fd.NewName {
			add(fd.OrigName)
		}
	}
	return result, nil
}

// cleanDiffPath strips the a/ or b/ prefix git puts on diff paths.
func cleanDiffPath(p string) string {
	if p == "" || p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

// git runs a git subcommand in root and returns its stdout.
func git(root string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = root

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", err
		}
		return "", fmt.Errorf("git %s: %s: %w", args[0], msg, err)
	}
	return stdout.String(), nil
}
