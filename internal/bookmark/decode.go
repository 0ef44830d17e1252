package bookmark

import (
	"encoding/json"
	"fmt"

	"jobfeed-engine/internal/domain"
)

type entry struct {
	key   string
	value []byte
}

type skippedEntry struct {
	key string
	err error
}

// decodeEntries keeps the entries that decode into a posting matching their
// key, preserving order, and reports the rest.
func decodeEntries(entries []entry) ([]domain.JobPosting, []skippedEntry) {
	jobs := make([]domain.JobPosting, 0, len(entries))
	var skipped []skippedEntry
	for _, e := range entries {
		job, err := decodeEntry(e.key, e.value)
		if err != nil {
			skipped = append(skipped, skippedEntry{key: e.key, err: err})
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, skipped
}

func decodeEntry(key string, value []byte) (domain.JobPosting, error) {
	var job domain.JobPosting
	if err := json.Unmarshal(value, &job); err != nil {
		return domain.JobPosting{}, err
	}
	if job.Key() != key {
		return domain.JobPosting{}, fmt.Errorf("entry id %d does not match key", job.ID)
	}
	return job, nil
}
