package feed

import "jobfeed-engine/internal/domain"

// IDSet is the set of posting ids seen during one feed session.
type IDSet map[int64]struct{}

func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Add(id int64) { s[id] = struct{}{} }

// Accept keeps postings whose id is positive and unseen and that carry primary details,
// in input order, and records each kept id in seen. Rejected postings
// leave seen untouched.
func Accept(seen IDSet, in []domain.JobPosting) []domain.JobPosting {
	out := make([]domain.JobPosting, 0, len(in))
	for _, p := range in {
		if p.ID <= 0 || seen.Has(p.ID) || !p.HasPrimaryDetails() {
			continue
		}
		seen.Add(p.ID)
		out = append(out, p)
	}
	return out
}
