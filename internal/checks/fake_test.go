package checks

import (
	"context"

	"github.com/felixgeelhaar/repo-preflight/internal/vcs"
)

type fakeGit struct {
	repo bool

	tracked    []string
	trackedErr error

	history          []vcs.Object
	historyTruncated bool
	historyErr       error
	historyLimit     int

	rangeObjects   []vcs.Object
	rangeTruncated bool
	rangeErr       error

	infos   map[string]vcs.ObjectInfo
	infoErr error

	numstat    []vcs.FileChange
	numstatErr error

	blobs    []vcs.Object
	blobsErr error

	branch    string
	branchErr error

	clean    bool
	cleanErr error

	remote    string
	remoteErr error

	diffCalls []string
}

var _ vcs.Client = (*fakeGit)(nil)

func (f *fakeGit) IsRepository(context.Context) bool { return f.repo }

func (f *fakeGit) TrackedFiles(context.Context) ([]string, error) {
	return f.tracked, f.trackedErr
}

func (f *fakeGit) HistoryObjects(_ context.Context, limit int) ([]vcs.Object, bool, error) {
	f.historyLimit = limit
	return f.history, f.historyTruncated, f.historyErr
}

func (f *fakeGit) RangeObjects(_ context.Context, base, target string, _ int) ([]vcs.Object, bool, error) {
	f.diffCalls = append(f.diffCalls, base+".."+target)
	return f.rangeObjects, f.rangeTruncated, f.rangeErr
}

func (f *fakeGit) ObjectInfo(_ context.Context, ids []string) (map[string]vcs.ObjectInfo, error) {
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	out := make(map[string]vcs.ObjectInfo)
	for _, id := range ids {
		if info, ok := f.infos[id]; ok {
			out[id] = info
		}
	}
	return out, nil
}

func (f *fakeGit) DiffNumstat(_ context.Context, base, target string) ([]vcs.FileChange, error) {
	f.diffCalls = append(f.diffCalls, base+"..."+target)
	return f.numstat, f.numstatErr
}

func (f *fakeGit) DiffBlobs(_ context.Context, base, target string) ([]vcs.Object, error) {
	f.diffCalls = append(f.diffCalls, base+"..."+target)
	return f.blobs, f.blobsErr
}

func (f *fakeGit) CurrentBranch(context.Context) (string, error) { return f.branch, f.branchErr }

func (f *fakeGit) IsClean(context.Context) (bool, error) { return f.clean, f.cleanErr }

func (f *fakeGit) RemoteURL(context.Context, string) (string, error) { return f.remote, f.remoteErr }

type fakeScanner struct {
	code int
	err  error
}

func (s fakeScanner) Scan(context.Context, string) (int, error) { return s.code, s.err }

func blob(id string, size int64) vcs.ObjectInfo {
	return vcs.ObjectInfo{ID: id, Type: "blob", Size: size}
}

func run(t *Target, id string) CheckResult {
	c, ok := Default().Lookup(id)
	if !ok {
		panic("unknown check " + id)
	}
	return c.Run(context.Background(), t)
}
