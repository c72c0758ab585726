package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNoRemote is returned by RemoteURL when the named remote is not configured.
var ErrNoRemote = errors.New("remote not configured")

// Object is a history object with the first path it was seen at.
// Path is empty for commits and trees reached without a name.
type Object struct {
	ID   string
	Path string
}

// ObjectInfo is the type and size metadata of a single object.
type ObjectInfo struct {
	ID   string
	Type string
	Size int64
}

// FileChange is one entry of a numstat diff.
type FileChange struct {
	Path    string
	Added   int
	Deleted int
	Binary  bool
}

// Lines returns the total number of changed lines. Binary files count zero.
func (f FileChange) Lines() int {
	if f.Binary {
		return 0
	}
	return f.Added + f.Deleted
}

// Client is the set of repository queries the checks depend on.
type Client interface {
	IsRepository(ctx context.Context) bool
	TrackedFiles(ctx context.Context) ([]string, error)
	HistoryObjects(ctx context.Context, limit int) ([]Object, bool, error)
	RangeObjects(ctx context.Context, base, target string, limit int) ([]Object, bool, error)
	ObjectInfo(ctx context.Context, ids []string) (map[string]ObjectInfo, error)
	DiffNumstat(ctx context.Context, base, target string) ([]FileChange, error)
	DiffBlobs(ctx context.Context, base, target string) ([]Object, error)
	CurrentBranch(ctx context.Context) (string, error)
	IsClean(ctx context.Context) (bool, error)
	RemoteURL(ctx context.Context, name string) (string, error)
}

// Git answers Client queries by invoking the git binary in a working copy.
type Git struct {
	dir    string
	runner ProcessRunner
}

// NewGit creates a git client rooted at dir.
func NewGit(dir string, runner ProcessRunner) *Git {
	return &Git{dir: dir, runner: runner}
}

func (g *Git) command(args ...string) Command {
	return Command{Name: "git", Args: args, Dir: g.dir}
}

// output runs git and returns stdout, treating a non-zero exit as an error.
func (g *Git) output(ctx context.Context, args ...string) ([]byte, error) {
	cmd := g.command(args...)
	res, err := g.runner.Run(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &ExitError{
			Command: cmd.String(),
			Code:    res.ExitCode,
			Stderr:  strings.TrimSpace(string(res.Stderr)),
		}
	}
	return res.Stdout, nil
}

// IsRepository reports whether dir is inside a git work tree. A missing git
// binary counts as not a repository.
func (g *Git) IsRepository(ctx context.Context) bool {
	out, err := g.output(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "true"
}

// TrackedFiles lists every path in the index, relative to dir.
func (g *Git) TrackedFiles(ctx context.Context) ([]string, error) {
	out, err := g.output(ctx, "ls-files", "-z")
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}
	return splitNUL(out), nil
}

// HistoryObjects enumerates objects reachable from any ref, reading at most
// limit entries.
func (g *Git) HistoryObjects(ctx context.Context, limit int) ([]Object, bool, error) {
	lines, truncated, err := g.runner.RunLines(ctx, g.command("rev-list", "--objects", "--all"), limit)
	if err != nil {
		return nil, false, fmt.Errorf("enumerate history objects: %w", err)
	}
	return parseObjectLines(lines), truncated, nil
}

// RangeObjects enumerates objects reachable from target but not from base.
func (g *Git) RangeObjects(ctx context.Context, base, target string, limit int) ([]Object, bool, error) {
	lines, truncated, err := g.runner.RunLines(ctx, g.command("rev-list", "--objects", base+".."+target), limit)
	if err != nil {
		return nil, false, fmt.Errorf("enumerate objects in %s..%s: %w", base, target, err)
	}
	return parseObjectLines(lines), truncated, nil
}

// ObjectInfo fetches type and size for ids in one cat-file batch. Missing
// objects are absent from the returned map.
func (g *Git) ObjectInfo(ctx context.Context, ids []string) (map[string]ObjectInfo, error) {
	infos := make(map[string]ObjectInfo, len(ids))
	if len(ids) == 0 {
		return infos, nil
	}

	cmd := g.command("cat-file", "--batch-check=%(objectname) %(objecttype) %(objectsize)")
	cmd.Stdin = []byte(strings.Join(ids, "\n") + "\n")

	res, err := g.runner.Run(ctx, cmd)
	if err != nil {
		return nil, fmt.Errorf("read object sizes: %w", err)
	}
	if res.ExitCode != 0 {
		return nil, fmt.Errorf("read object sizes: %w", &ExitError{
			Command: cmd.String(),
			Code:    res.ExitCode,
			Stderr:  strings.TrimSpace(string(res.Stderr)),
		})
	}

	for _, line := range strings.Split(string(res.Stdout), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		size, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			continue
		}
		infos[fields[0]] = ObjectInfo{ID: fields[0], Type: fields[1], Size: size}
	}
	return infos, nil
}

// DiffNumstat returns per-file line statistics for base...target.
func (g *Git) DiffNumstat(ctx context.Context, base, target string) ([]FileChange, error) {
	out, err := g.output(ctx, "diff", "--numstat", "-z", "--no-renames", base+"..."+target)
	if err != nil {
		return nil, fmt.Errorf("diff %s...%s: %w", base, target, err)
	}
	return parseNumstat(out), nil
}

// DiffBlobs returns the post-image blobs of files added, modified or retyped
// in base...target.
func (g *Git) DiffBlobs(ctx context.Context, base, target string) ([]Object, error) {
	out, err := g.output(ctx, "diff", "--raw", "-z", "--no-renames", "--no-abbrev", base+"..."+target)
	if err != nil {
		return nil, fmt.Errorf("diff %s...%s: %w", base, target, err)
	}
	return parseRaw(out), nil
}

// CurrentBranch returns the checked-out branch name, empty on a detached HEAD.
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.output(ctx, "branch", "--show-current")
	if err != nil {
		return "", fmt.Errorf("current branch: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsClean reports whether the working tree has no staged, unstaged or
// untracked changes.
func (g *Git) IsClean(ctx context.Context) (bool, error) {
	out, err := g.output(ctx, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("worktree status: %w", err)
	}
	return len(bytes.TrimSpace(out)) == 0, nil
}

// RemoteURL returns the fetch URL of the named remote.
func (g *Git) RemoteURL(ctx context.Context, name string) (string, error) {
	out, err := g.output(ctx, "remote", "get-url", name)
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", ErrNoRemote, name)
		}
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

func splitNUL(out []byte) []string {
	var paths []string
	for _, p := range strings.Split(string(out), "\x00") {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// parseObjectLines parses "<id> [<path>]" lines, keeping the first non-empty
// path seen for each id.
func parseObjectLines(lines []string) []Object {
	index := make(map[string]int, len(lines))
	objects := make([]Object, 0, len(lines))
	for _, line := range lines {
		id, path, _ := strings.Cut(line, " ")
		if id == "" {
			continue
		}
		if i, ok := index[id]; ok {
			if objects[i].Path == "" {
				objects[i].Path = path
			}
			continue
		}
		index[id] = len(objects)
		objects = append(objects, Object{ID: id, Path: path})
	}
	return objects
}

// parseNumstat parses `git diff --numstat -z` output. Without rename
// detection every record is "<added>\t<deleted>\t<path>\0".
func parseNumstat(out []byte) []FileChange {
	var changes []FileChange
	for _, rec := range strings.Split(string(out), "\x00") {
		if rec == "" {
			continue
		}
		parts := strings.SplitN(strings.TrimLeft(rec, "\n"), "\t", 3)
		if len(parts) != 3 {
			continue
		}
		change := FileChange{Path: parts[2]}
		if parts[0] == "-" || parts[1] == "-" {
			change.Binary = true
		} else {
			change.Added, _ = strconv.Atoi(parts[0])
			change.Deleted, _ = strconv.Atoi(parts[1])
		}
		changes = append(changes, change)
	}
	return changes
}

// parseRaw parses `git diff --raw -z` output, which alternates
// ":<srcmode> <dstmode> <src> <dst> <status>" headers with paths.
func parseRaw(out []byte) []Object {
	var blobs []Object
	fields := strings.Split(string(out), "\x00")
	for i := 0; i+1 < len(fields); i += 2 {
		header := strings.Fields(strings.TrimPrefix(strings.TrimLeft(fields[i], "\n"), ":"))
		if len(header) != 5 {
			continue
		}
		dstMode, dstID, status := header[1], header[3], header[4]
		switch status[0] {
		case 'A', 'M', 'T':
		default:
			continue
		}
		if dstMode == "160000" || strings.Trim(dstID, "0") == "" {
			continue
		}
		blobs = append(blobs, Object{ID: dstID, Path: fields[i+1]})
	}
	return blobs
}
