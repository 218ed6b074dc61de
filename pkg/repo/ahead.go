package repo

import (
	"path"

	"github.com/odvcencio/gitcore/pkg/hash"
)

// CountTillAncestor performs the §4.10 breadth-first commit walk from
// from, following parents, stopping as soon as ancestor is dequeued.
// Returns the number of commits visited strictly between from (inclusive)
// and ancestor (exclusive), or -1 if ancestor is not reachable.
//
// Object read failures during the walk are treated as "ancestor not
// reachable" (-1) rather than surfaced, per spec §7's propagation policy
// for traversal operations.
func (r *Repo) CountTillAncestor(from, ancestor hash.Hash) int {
	queue := []hash.Hash{from}
	seen := map[hash.Hash]bool{from: true}
	count := 0

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur == ancestor {
			return count
		}
		count++

		commit, err := r.Store.ReadCommit(cur)
		if err != nil {
			continue
		}
		for _, p := range commit.Parents {
			if seen[p] {
				continue
			}
			seen[p] = true
			queue = append(queue, p)
		}
	}
	return -1
}

// NumChangesToPush resolves the current branch's upstream via
// branch.<name>.remote + branch.<name>.merge, maps it to
// refs/remotes/<remote>/<branch>, and returns how many commits the local
// branch is ahead of it (0 if either side is missing, or the hashes are
// equal).
func (r *Repo) NumChangesToPush() (int, error) {
	branchName, onBranch, err := r.CurrentBranch()
	if err != nil {
		return 0, err
	}
	if !onBranch {
		return 0, nil
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return 0, err
	}
	branchCfg, ok := cfg.Branch(branchName)
	if !ok {
		return 0, nil
	}

	localHash, err := r.ResolveRef("refs/heads/" + branchName)
	if err != nil {
		return 0, nil
	}

	upstreamName := "refs/remotes/" + branchCfg.Remote + "/" + path.Base(branchCfg.Merge)
	upstreamHash, err := r.ResolveRef(upstreamName)
	if err != nil {
		return 0, nil
	}

	if localHash == upstreamHash {
		return 0, nil
	}

	count := r.CountTillAncestor(localHash, upstreamHash)
	if count < 0 {
		return 0, nil
	}
	return count, nil
}
