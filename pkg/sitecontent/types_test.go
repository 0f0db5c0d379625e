package sitecontent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
)

func TestRecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		record  sitecontent.Record
		wantErr bool
	}{
		{"article with title", sitecontent.Article{Title: "ok"}, false},
		{"article without title", sitecontent.Article{Body: "body only"}, true},
		{"article with blank title", sitecontent.Article{Title: "   "}, true},
		{"video complete", sitecontent.Video{Title: "t", YouTubeURL: "https://youtu.be/x"}, false},
		{"video without url", sitecontent.Video{Title: "t"}, true},
		{"newsletter complete", sitecontent.Newsletter{Title: "t", Issue: "42"}, false},
		{"newsletter without issue", sitecontent.Newsletter{Title: "t"}, true},
		{"vendor with name", sitecontent.Vendor{Name: "Boulangerie"}, false},
		{"vendor without name", sitecontent.Vendor{Description: "d"}, true},
		{"advertiser with name", sitecontent.Advertiser{Name: "Acme"}, false},
		{"announcement with title", sitecontent.Announcement{Title: "t"}, false},
		{"site document complete", sitecontent.SiteDocument{Title: "t", FileURL: "https://e/x.pdf"}, false},
		{"site document without url", sitecontent.SiteDocument{Title: "t"}, true},
		{"contact message complete", sitecontent.ContactMessage{Name: "n", Email: "e@x", Body: "b"}, false},
		{"contact message without body", sitecontent.ContactMessage{Name: "n", Email: "e@x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, sitecontent.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDocumentClone(t *testing.T) {
	doc := &sitecontent.Document{
		ID:         "d1",
		Collection: sitecontent.CollectionArticles,
		Fields:     map[string]any{"title": "original"},
	}

	clone := doc.Clone()
	clone.Fields["title"] = "mutated"

	assert.Equal(t, "original", doc.Fields["title"])
	assert.Equal(t, doc.ID, clone.ID)
}
