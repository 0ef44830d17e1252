package bookmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeEntries(t *testing.T) {
	entries := []entry{
		{key: "job_1", value: []byte(`{"id":1,"title":"a"}`)},
		{key: "job_2", value: []byte(`garbage`)},
		{key: "job_3", value: []byte(`{"id":3,"title":"c"}`)},
		{key: "job_4", value: []byte(`{"id":5}`)},
	}

	jobs, skipped := decodeEntries(entries)

	if assert.Len(t, jobs, 2) {
		assert.Equal(t, int64(1), jobs[0].ID)
		assert.Equal(t, int64(3), jobs[1].ID)
	}
	if assert.Len(t, skipped, 2) {
		assert.Equal(t, "job_2", skipped[0].key)
		assert.Equal(t, "job_4", skipped[1].key)
	}
}

func TestDecodeEntries_Empty(t *testing.T) {
	jobs, skipped := decodeEntries(nil)
	assert.Empty(t, jobs)
	assert.Empty(t, skipped)
}
