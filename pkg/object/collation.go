package object

import "sort"

// collationKey returns the string tree entries are compared by: a directory
// name is treated as if it carried a trailing slash, so "foo" (file) sorts
// before "foo.txt" while "foo" (dir) sorts after it, since '.' < '/' —
// matching Git's tree entry ordering.
func collationKey(name string, isDir bool) string {
	if isDir {
		return name + "/"
	}
	return name
}

// compareNames orders two tree entry names under the §4.4 collation rule.
func compareNames(aName string, aIsDir bool, bName string, bIsDir bool) int {
	ak := collationKey(aName, aIsDir)
	bk := collationKey(bName, bIsDir)
	switch {
	case ak < bk:
		return -1
	case ak > bk:
		return 1
	default:
		return 0
	}
}

// SortLeaves sorts leaves in place by the §4.4 tree collation order.
func SortLeaves(leaves []TreeLeaf) {
	sort.Slice(leaves, func(i, j int) bool {
		return compareNames(
			leaves[i].Name, leaves[i].Mode == ModeDir,
			leaves[j].Name, leaves[j].Mode == ModeDir,
		) < 0
	})
}
