// Package view maps postings onto display records. Every function here is
// pure: no fetches, no store access.
package view

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"jobfeed-engine/internal/domain"
)

// Display fallbacks for absent fields.
const (
	NoTitle       = "Untitled"
	NotAvailable  = "N/A"
	NotDisclosed  = "Not Disclosed"
	NoDescription = "No description available."
)

// CardModel is one row of the feed or bookmark list.
type CardModel struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Place    string `json:"place"`
	JobType  string `json:"job_type"`
	Salary   string `json:"salary"`
	Tag      string `json:"tag"`
	MediaURL string `json:"media_url,omitempty"`
}

// DetailModel is the read-only detail screen.
type DetailModel struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	Place         string `json:"place"`
	JobType       string `json:"job_type"`
	Salary        string `json:"salary"`
	Description   string `json:"description"`
	Experience    string `json:"experience"`
	Qualification string `json:"qualification"`
	Fees          string `json:"fees"`
	Category      string `json:"category"`
	Role          string `json:"role"`
	Hours         string `json:"hours"`
	Tag           string `json:"tag"`
	CallWindow    string `json:"call_window"`
	Phone         string `json:"phone"`
	CanDial       bool   `json:"can_dial"`
	MediaURL      string `json:"media_url,omitempty"`
}

func Card(job domain.JobPosting) CardModel {
	pd := primary(job)
	return CardModel{
		ID:       job.ID,
		Title:    or(job.Title, NoTitle),
		Place:    or(pd.Place, NotAvailable),
		JobType:  or(pd.JobType, NotAvailable),
		Salary:   or(pd.Salary, NotDisclosed),
		Tag:      or(job.PrimaryTag(), NotAvailable),
		MediaURL: job.MediaURL(),
	}
}

func Cards(jobs []domain.JobPosting) []CardModel {
	out := make([]CardModel, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, Card(j))
	}
	return out
}

func Detail(job domain.JobPosting) DetailModel {
	pd := primary(job)
	phone := NormalizePhone(job.WhatsAppNo)
	return DetailModel{
		ID:            job.ID,
		Title:         or(job.Title, NoTitle),
		Company:       or(job.CompanyName, NotAvailable),
		Place:         or(pd.Place, NotAvailable),
		JobType:       or(pd.JobType, NotAvailable),
		Salary:        or(pd.Salary, NotDisclosed),
		Description:   or(PlainText(pd.Description), NoDescription),
		Experience:    or(pd.Experience, NotAvailable),
		Qualification: or(pd.Qualification, NotAvailable),
		Fees:          or(pd.FeesCharged, NotAvailable),
		Category:      or(job.JobCategory, NotAvailable),
		Role:          or(job.JobRole, NotAvailable),
		Hours:         or(job.JobHours, NotAvailable),
		Tag:           or(job.PrimaryTag(), NotAvailable),
		CallWindow:    callWindow(job.ContactPreference),
		Phone:         phone,
		CanDial:       phone != "",
		MediaURL:      job.MediaURL(),
	}
}

// PlainText flattens an HTML fragment to whitespace-normalized text.
// Input without markup comes back trimmed.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsAny(s, "<&") {
		return strings.Join(strings.Fields(s), " ")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.Join(strings.Fields(s), " ")
	}
	doc.Find("script,style").Remove()
	// block boundaries become spaces so words do not run together
	for _, n := range doc.Find("br,p,li,div,tr,h1,h2,h3,h4").Nodes {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: " "})
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

func callWindow(cp *domain.ContactPreference) string {
	if cp == nil {
		return NotAvailable
	}
	start := strings.TrimSpace(cp.PreferredCallStartTime)
	end := strings.TrimSpace(cp.PreferredCallEndTime)
	switch {
	case start != "" && end != "":
		return start + " - " + end
	case start != "":
		return "from " + start
	case end != "":
		return "until " + end
	default:
		return NotAvailable
	}
}

func primary(job domain.JobPosting) domain.PrimaryDetails {
	if job.PrimaryDetails == nil {
		return domain.PrimaryDetails{}
	}
	return *job.PrimaryDetails
}

func or(s, fallback string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return fallback
}
