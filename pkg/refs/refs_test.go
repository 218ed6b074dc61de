package refs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/odvcencio/gitcore/pkg/errs"
	"github.com/odvcencio/gitcore/pkg/hash"
)

func setup(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "refs", "heads"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return NewStore(dir)
}

func TestPutGetHashReference(t *testing.T) {
	s := setup(t)
	h := hash.Compute([]byte("commit"))
	if err := s.Put(Reference{Name: "refs/heads/main", Hash: h}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ref, err := s.Get("refs/heads/main")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ref.IsSymbolic() || ref.Hash != h {
		t.Errorf("Get = %+v, want hash ref %s", ref, h)
	}
}

func TestPutGetSymbolicReference(t *testing.T) {
	s := setup(t)
	if err := s.Put(Reference{Name: "HEAD", Symbolic: "refs/heads/master"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ref, err := s.Get("HEAD")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ref.IsSymbolic() || ref.Symbolic != "refs/heads/master" {
		t.Errorf("Get = %+v, want symbolic ref to refs/heads/master", ref)
	}
}

func TestGetMissing(t *testing.T) {
	s := setup(t)
	if _, err := s.Get("refs/heads/nope"); !errors.Is(err, errs.ErrMissing) {
		t.Errorf("expected ErrMissing, got %v", err)
	}
}

func TestResolveTwoHops(t *testing.T) {
	s := setup(t)
	h := hash.Compute([]byte("target"))
	if err := s.Put(Reference{Name: "refs/heads/master", Hash: h}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(Reference{Name: "HEAD", Symbolic: "refs/heads/master"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ref, err := s.Resolve("HEAD")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if ref.IsSymbolic() || ref.Hash != h {
		t.Errorf("Resolve(HEAD) = %+v, want direct hash %s", ref, h)
	}
}

func TestResolveDetectsCycle(t *testing.T) {
	s := setup(t)
	if err := s.Put(Reference{Name: "refs/heads/a", Symbolic: "refs/heads/b"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(Reference{Name: "refs/heads/b", Symbolic: "refs/heads/a"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := s.Resolve("refs/heads/a"); !errors.Is(err, errs.ErrCycleDetected) {
		t.Errorf("expected ErrCycleDetected, got %v", err)
	}
}

func TestResolveTooDeep(t *testing.T) {
	s := setup(t)
	const chainLen = 12
	for i := 0; i < chainLen; i++ {
		name := refName(i)
		next := refName(i + 1)
		if err := s.Put(Reference{Name: name, Symbolic: next}); err != nil {
			t.Fatalf("Put %s: %v", name, err)
		}
	}
	h := hash.Compute([]byte("end"))
	if err := s.Put(Reference{Name: refName(chainLen), Hash: h}); err != nil {
		t.Fatalf("Put terminal: %v", err)
	}
	if _, err := s.Resolve(refName(0)); !errors.Is(err, errs.ErrTooDeep) {
		t.Errorf("expected ErrTooDeep, got %v", err)
	}
}

func refName(i int) string {
	return "refs/chain/" + string(rune('a'+i))
}

func TestDeleteRemovesLooseOnly(t *testing.T) {
	s := setup(t)
	h := hash.Compute([]byte("x"))
	if err := s.Put(Reference{Name: "refs/tags/v1", Hash: h}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete("refs/tags/v1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("refs/tags/v1"); !errors.Is(err, errs.ErrMissing) {
		t.Errorf("expected ErrMissing after delete, got %v", err)
	}
}

func TestPutConcurrentNoLingeringLock(t *testing.T) {
	s := setup(t)
	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			defer wg.Done()
			h := hash.Compute([]byte(fmt.Sprintf("commit-%d", i)))
			if err := s.Put(Reference{Name: "refs/heads/main", Hash: h}); err != nil {
				t.Errorf("Put: %v", err)
			}
		}()
	}
	wg.Wait()

	if _, err := s.Get("refs/heads/main"); err != nil {
		t.Fatalf("Get after concurrent Put: %v", err)
	}
	lockPath := filepath.Join(s.root, "refs", "heads", "main.lock")
	if _, statErr := os.Stat(lockPath); !os.IsNotExist(statErr) {
		t.Fatalf("expected no lingering lockfile at %q, stat err=%v", lockPath, statErr)
	}
}

func TestPutFailsWhenLockHeld(t *testing.T) {
	s := setup(t)
	target := filepath.Join(s.root, "refs", "heads", "main")
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	lockPath := target + ".lock"
	lockFile, err := os.OpenFile(lockPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		t.Fatalf("seed lock: %v", err)
	}
	defer lockFile.Close()
	defer os.Remove(lockPath)

	h := hash.Compute([]byte("blocked"))
	if err := s.Put(Reference{Name: "refs/heads/main", Hash: h}); err == nil {
		t.Fatal("expected Put to fail while lockfile is held")
	}
}

func TestListLooseWinsOverPacked(t *testing.T) {
	s := setup(t)
	packedHash := hash.Compute([]byte("packed"))
	looseHash := hash.Compute([]byte("loose"))

	if err := s.WritePackedRefs(map[string]hash.Hash{
		"refs/heads/main":    packedHash,
		"refs/heads/feature": packedHash,
	}); err != nil {
		t.Fatalf("WritePackedRefs: %v", err)
	}
	if err := s.Put(Reference{Name: "refs/heads/main", Hash: looseHash}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	refs, err := s.List("refs/heads")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	byName := make(map[string]Reference)
	for _, r := range refs {
		byName[r.Name] = r
	}
	if byName["refs/heads/main"].Hash != looseHash {
		t.Errorf("loose ref did not win: %+v", byName["refs/heads/main"])
	}
	if byName["refs/heads/feature"].Hash != packedHash {
		t.Errorf("packed-only ref missing: %+v", byName["refs/heads/feature"])
	}
}
