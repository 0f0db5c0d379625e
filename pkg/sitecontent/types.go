package sitecontent

import (
	"fmt"
	"strings"
	"time"
)

// Collection names used by the association site.
const (
	CollectionArticles      = "articles"
	CollectionVideos        = "videos"
	CollectionNewsletters   = "newsletters"
	CollectionVendors       = "vendors"
	CollectionAdvertisers   = "advertisers"
	CollectionAnnouncements = "announcements"
	CollectionDocuments     = "documents"
	CollectionMessages      = "messages"
)

// Announcement priorities. Unrecognized values sort after all of these.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityNormal = "normal"
)

// Document is a single persisted record in a named collection. ID,
// CreatedAt and UpdatedAt are store-owned: values supplied by callers in
// create/update payloads are discarded.
type Document struct {
	ID         string         `json:"id"`
	Collection string         `json:"collection"`
	Fields     map[string]any `json:"fields"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// Clone returns a deep-enough copy for handing out of a repository: the
// fields map is copied one level deep, matching the store's shallow-merge
// semantics.
func (d *Document) Clone() *Document {
	c := *d
	c.Fields = make(map[string]any, len(d.Fields))
	for k, v := range d.Fields {
		c.Fields[k] = v
	}
	return &c
}

// Record is a typed view over one collection's documents. Validate is
// called before create; it reports ErrValidation-wrapped errors.
type Record interface {
	Validate() error
}

// Meta carries the store-owned attributes shared by every typed record.
// Its keys are stripped from outgoing field payloads.
type Meta struct {
	ID        string    `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// reservedFieldKeys are owned by the store and never accepted from callers.
var reservedFieldKeys = []string{"id", "created_at", "updated_at", "collection"}

// Article is a news article authored in the back office.
type Article struct {
	Meta
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt,omitempty"`
	Body     string `json:"body,omitempty"`
	CoverURL string `json:"cover_url,omitempty"`
	Author   string `json:"author,omitempty"`
}

func (a Article) Validate() error {
	return requireFields(map[string]string{"title": a.Title})
}

// Video is an embedded YouTube video entry.
type Video struct {
	Meta
	Title      string `json:"title"`
	Excerpt    string `json:"excerpt,omitempty"`
	YouTubeURL string `json:"youtube_url"`
	Duration   string `json:"duration,omitempty"`
}

func (v Video) Validate() error {
	return requireFields(map[string]string{"title": v.Title, "youtube_url": v.YouTubeURL})
}

// Newsletter is one published issue of the association newsletter.
type Newsletter struct {
	Meta
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
	Issue   string `json:"issue"`
	FileURL string `json:"file_url,omitempty"`
}

func (n Newsletter) Validate() error {
	return requireFields(map[string]string{"title": n.Title, "issue": n.Issue})
}

// Vendor is a local business listed in the vendor directory.
type Vendor struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`
}

func (v Vendor) Validate() error {
	return requireFields(map[string]string{"name": v.Name})
}

// Advertiser is a paying advertiser with a banner placement.
type Advertiser struct {
	Meta
	Name      string `json:"name"`
	Website   string `json:"website,omitempty"`
	BannerURL string `json:"banner_url,omitempty"`
	Contact   string `json:"contact,omitempty"`
}

func (a Advertiser) Validate() error {
	return requireFields(map[string]string{"name": a.Name})
}

// Announcement is a prioritized notice shown on the home page.
type Announcement struct {
	Meta
	Title    string `json:"title"`
	Body     string `json:"body,omitempty"`
	Priority string `json:"priority,omitempty"`
}

func (a Announcement) Validate() error {
	return requireFields(map[string]string{"title": a.Title})
}

// SiteDocument is an uploaded file (minutes, statutes, forms) served
// through the document viewer.
type SiteDocument struct {
	Meta
	Title       string `json:"title"`
	FileURL     string `json:"file_url"`
	ContentType string `json:"content_type,omitempty"`
	SizeBytes   int64  `json:"size_bytes,omitempty"`
}

func (d SiteDocument) Validate() error {
	return requireFields(map[string]string{"title": d.Title, "file_url": d.FileURL})
}

// ContactMessage is a persisted contact or complaint form submission.
type ContactMessage struct {
	Meta
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

func (m ContactMessage) Validate() error {
	return requireFields(map[string]string{"name": m.Name, "email": m.Email, "body": m.Body})
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, name)
		}
	}
	return nil
}
