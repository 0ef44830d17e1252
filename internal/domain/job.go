package domain

import (
	"strconv"
	"strings"
)

// JobPosting is one listing as returned by the jobs API. It is stored
// verbatim when bookmarked and never mutated after decode.
type JobPosting struct {
	ID                int64              `json:"id"`
	Title             string             `json:"title"`
	CompanyName       string             `json:"company_name,omitempty"`
	PrimaryDetails    *PrimaryDetails    `json:"primary_details,omitempty"`
	Creatives         []Creative         `json:"creatives,omitempty"`
	WhatsAppNo        string             `json:"whatsapp_no,omitempty"`
	JobTags           []JobTag           `json:"job_tags,omitempty"`
	JobHours          string             `json:"job_hours,omitempty"`
	JobCategory       string             `json:"job_category,omitempty"`
	JobRole           string             `json:"job_role,omitempty"`
	ContactPreference *ContactPreference `json:"contact_preference,omitempty"`
	CreatedOn         string             `json:"created_on,omitempty"`
}

type PrimaryDetails struct {
	Place         string `json:"Place,omitempty"`
	JobType       string `json:"Job_Type,omitempty"`
	Salary        string `json:"Salary,omitempty"`
	Description   string `json:"Description,omitempty"`
	Experience    string `json:"Experience,omitempty"`
	Qualification string `json:"Qualification,omitempty"`
	FeesCharged   string `json:"Fees_Charged,omitempty"`
}

type Creative struct {
	File         string `json:"file"`
	ThumbURL     string `json:"thumb_url,omitempty"`
	CreativeType int    `json:"creative_type,omitempty"`
}

type JobTag struct {
	Value     string `json:"value"`
	BgColor   string `json:"bg_color,omitempty"`
	TextColor string `json:"text_color,omitempty"`
}

type ContactPreference struct {
	Preference             int    `json:"preference,omitempty"`
	PreferredCallStartTime string `json:"preferred_call_start_time,omitempty"`
	PreferredCallEndTime   string `json:"preferred_call_end_time,omitempty"`
}

// HasPrimaryDetails reports whether the posting carries a non-empty
// primary_details payload. Postings without one are never shown.
func (j JobPosting) HasPrimaryDetails() bool {
	p := j.PrimaryDetails
	if p == nil {
		return false
	}
	for _, s := range []string{p.Place, p.JobType, p.Salary, p.Description, p.Experience, p.Qualification, p.FeesCharged} {
		if strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// MediaURL is the first creative's file, or "".
func (j JobPosting) MediaURL() string {
	if len(j.Creatives) == 0 {
		return ""
	}
	return strings.TrimSpace(j.Creatives[0].File)
}

// PrimaryTag is the first job tag's value, or "".
func (j JobPosting) PrimaryTag() string {
	if len(j.JobTags) == 0 {
		return ""
	}
	return strings.TrimSpace(j.JobTags[0].Value)
}

// Key is the bookmark key for the posting.
func (j JobPosting) Key() string { return BookmarkKey(j.ID) }

// BookmarkKeyPrefix namespaces bookmark entries in the key-value store.
const BookmarkKeyPrefix = "job_"

func BookmarkKey(id int64) string {
	return BookmarkKeyPrefix + strconv.FormatInt(id, 10)
}

// IDFromBookmarkKey is the inverse of BookmarkKey.
func IDFromBookmarkKey(key string) (int64, bool) {
	rest, ok := strings.CutPrefix(key, BookmarkKeyPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
