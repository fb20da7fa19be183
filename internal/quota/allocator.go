package quota

import "github.com/neberku/neberku-backend/internal/domain"

// Allocation decides which incoming files are approved against the package's
// event-wide ceilings. Files past the ceiling are still stored, just unapproved.
type Allocation struct {
	postApproved bool
	remaining    map[domain.MediaType]int
}

// Allocate computes the remaining package allotment per kind.
// approved holds the event's already-approved media counts; a nil package ceiling is unlimited.
func Allocate(pkg *domain.Package, approved Counts, postApproved bool) Allocation {
	a := Allocation{
		postApproved: postApproved,
		remaining:    make(map[domain.MediaType]int, len(domain.MediaTypes)),
	}
	for _, t := range domain.MediaTypes {
		limit := pkg.Cap(t)
		if limit == nil {
			continue
		}
		a.remaining[t] = max(0, *limit-approved.Of(t))
	}
	return a
}

// Remaining allotment for a kind; the bool is true when the package has no ceiling
func (a Allocation) Remaining(t domain.MediaType) (int, bool) {
	n, capped := a.remaining[t]
	return n, !capped
}

// Approve reports whether the index-th incoming file of kind t (zero-based, upload order)
// is stored approved
func (a Allocation) Approve(t domain.MediaType, index int) bool {
	if !a.postApproved {
		return false
	}
	n, unlimited := a.Remaining(t)
	return unlimited || index < n
}
