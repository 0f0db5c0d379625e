package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amicale-dev/site-content/pkg/sitecontent"
	"github.com/amicale-dev/site-content/pkg/sitecontent/api"
	"github.com/amicale-dev/site-content/pkg/sitecontent/notify"
	"github.com/amicale-dev/site-content/pkg/sitecontent/repo/memory"
	memorystorage "github.com/amicale-dev/site-content/pkg/sitecontent/storage/memory"
)

const testSecret = "test-secret"

type testEnv struct {
	server   *httptest.Server
	repo     *memory.Repository
	recorder *notify.Recorder
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := memory.New()
	recorder := &notify.Recorder{}
	srv := api.NewServer(api.Options{
		Repo:             repo,
		Blob:             memorystorage.New(),
		Sender:           recorder,
		JWTSecret:        testSecret,
		UploadFolder:     "uploads",
		ContactRecipient: "office@example.com",
	})

	tokenAuth := jwtauth.New("HS256", []byte(testSecret), nil)
	_, token, err := tokenAuth.Encode(map[string]interface{}{"uid": "admin-1"})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, repo: repo, recorder: recorder, token: token}
}

func (e *testEnv) request(t *testing.T, method, path string, body io.Reader, authed bool) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (e *testEnv) createDoc(t *testing.T, collection string, fields map[string]any) sitecontent.Document {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	resp := e.request(t, http.MethodPost, "/api/admin/"+collection, bytes.NewReader(raw), true)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[sitecontent.Document](t, resp)
}

func TestAdminCRUD(t *testing.T) {
	env := newTestEnv(t)

	t.Run("create mints id and timestamps", func(t *testing.T) {
		doc := env.createDoc(t, "articles", map[string]any{"title": "Fibre rollout", "id": "ignored"})
		assert.NotEmpty(t, doc.ID)
		assert.NotEqual(t, "ignored", doc.ID)
		assert.False(t, doc.CreatedAt.IsZero())
		assert.True(t, doc.CreatedAt.Equal(doc.UpdatedAt))
	})

	t.Run("get and update", func(t *testing.T) {
		doc := env.createDoc(t, "articles", map[string]any{"title": "Draft", "body": "text"})

		resp := env.request(t, http.MethodGet, "/api/admin/articles/"+doc.ID, nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		got := decodeBody[sitecontent.Document](t, resp)
		assert.Equal(t, "Draft", got.Fields["title"])

		resp = env.request(t, http.MethodPut, "/api/admin/articles/"+doc.ID,
			strings.NewReader(`{"title":"Final"}`), true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		updated := decodeBody[sitecontent.Document](t, resp)
		assert.Equal(t, "Final", updated.Fields["title"])
		assert.Equal(t, "text", updated.Fields["body"])
		assert.True(t, updated.UpdatedAt.After(doc.CreatedAt) || updated.UpdatedAt.Equal(doc.CreatedAt))
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		doc := env.createDoc(t, "articles", map[string]any{"title": "ephemeral"})

		resp := env.request(t, http.MethodDelete, "/api/admin/articles/"+doc.ID, nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeBody[map[string]bool](t, resp)["deleted"])

		resp = env.request(t, http.MethodDelete, "/api/admin/articles/"+doc.ID, nil, true)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.False(t, decodeBody[map[string]bool](t, resp)["deleted"])
	})

	t.Run("missing document", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/admin/articles/nope", nil, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown collection", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/admin/secrets/", nil, true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("empty body rejected", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/admin/articles", strings.NewReader(`{}`), true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid json rejected", func(t *testing.T) {
		resp := env.request(t, http.MethodPost, "/api/admin/articles", strings.NewReader(`{broken`), true)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodGet, "/api/admin/articles/", nil, false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, env.server.URL+"/api/admin/articles/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer not-a-token")
	badResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer badResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, badResp.StatusCode)
}

func TestGetResources(t *testing.T) {
	env := newTestEnv(t)
	env.createDoc(t, "articles", map[string]any{"title": "Garden party", "body": "Saturday at noon."})
	env.createDoc(t, "videos", map[string]any{"title": "AGM recording", "youtube_url": "https://youtu.be/x"})
	env.createDoc(t, "newsletters", map[string]any{"title": "Spring issue", "issue": "12"})

	t.Run("all categories", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/resources", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, resp.Header.Get("X-Degraded-Sources"))

		result := decodeBody[struct {
			Items []map[string]any `json:"items"`
		}](t, resp)
		assert.Len(t, result.Items, 3)
	})

	t.Run("category filter", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/resources?category=video", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decodeBody[struct {
			Items []map[string]any `json:"items"`
		}](t, resp)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "AGM recording", result.Items[0]["title"])
	})

	t.Run("search query", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/resources?q=garden", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		result := decodeBody[struct {
			Items []map[string]any `json:"items"`
		}](t, resp)
		require.Len(t, result.Items, 1)
		assert.Equal(t, "Garden party", result.Items[0]["title"])
	})
}

func TestListAnnouncements(t *testing.T) {
	env := newTestEnv(t)
	env.createDoc(t, "announcements", map[string]any{"title": "water cut", "priority": "normal"})
	env.createDoc(t, "announcements", map[string]any{"title": "gas leak", "priority": "high"})

	resp := env.request(t, http.MethodGet, "/api/announcements", nil, false)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	items := decodeBody[[]sitecontent.Announcement](t, resp)
	require.Len(t, items, 2)
	assert.Equal(t, "gas leak", items[0].Title)
	assert.Equal(t, "water cut", items[1].Title)
}

func TestSubmitContact(t *testing.T) {
	env := newTestEnv(t)

	t.Run("persists and notifies", func(t *testing.T) {
		body := `{"name":"Jean","email":"jean@example.com","message":"Bonjour"}`
		resp := env.request(t, http.MethodPost, "/api/contact", strings.NewReader(body), false)
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		msg := decodeBody[sitecontent.ContactMessage](t, resp)
		assert.NotEmpty(t, msg.ID)
		assert.Equal(t, "Jean", msg.Name)

		sent := env.recorder.Messages()
		require.Len(t, sent, 1)
		assert.Equal(t, notify.TemplateContact, sent[0].Template)
		assert.Equal(t, "office@example.com", sent[0].Recipient)
		assert.Equal(t, "Bonjour", sent[0].Vars["message"])
	})

	t.Run("missing fields rejected before any send", func(t *testing.T) {
		before := len(env.recorder.Messages())
		resp := env.request(t, http.MethodPost, "/api/contact",
			strings.NewReader(`{"email":"jean@example.com","message":"no name"}`), false)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Len(t, env.recorder.Messages(), before)
	})

	t.Run("complaint carries the subject", func(t *testing.T) {
		body := `{"name":"Jean","email":"jean@example.com","subject":"Noise","message":"Again last night."}`
		resp := env.request(t, http.MethodPost, "/api/complaints", strings.NewReader(body), false)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()

		sent := env.recorder.Messages()
		last := sent[len(sent)-1]
		assert.Equal(t, notify.TemplateComplaint, last.Template)
		assert.Equal(t, "Noise", last.Vars["subject"])
	})
}

func TestSubmitComplaintWithoutSubject(t *testing.T) {
	env := newTestEnv(t)

	body := `{"name":"Jean","email":"jean@example.com","message":"No subject supplied."}`
	resp := env.request(t, http.MethodPost, "/api/complaints", strings.NewReader(body), false)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	errResp := decodeBody[api.ErrorResponse](t, resp)
	assert.False(t, errResp.Retriable)
	assert.Contains(t, errResp.Error, "subject")

	// The malformed submission was neither stored nor sent, so a
	// corrected retry starts clean.
	docs, err := env.repo.ListDocuments(context.Background(), sitecontent.CollectionMessages)
	require.NoError(t, err)
	assert.Empty(t, docs)
	assert.Empty(t, env.recorder.Messages())
}

func TestSubmitContactDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	env.recorder.Err = assert.AnError

	body := `{"name":"Jean","email":"jean@example.com","message":"Bonjour"}`
	resp := env.request(t, http.MethodPost, "/api/contact", strings.NewReader(body), false)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	errResp := decodeBody[api.ErrorResponse](t, resp)
	assert.True(t, errResp.Retriable)
}

func TestResolvePreviewEndpoint(t *testing.T) {
	env := newTestEnv(t)

	t.Run("pdf", func(t *testing.T) {
		resp := env.request(t, http.MethodGet,
			"/api/preview?content_type=application/pdf&url=https://e/x.pdf", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeBody[api.PreviewResponse](t, resp)
		assert.Equal(t, "pdf", string(out.Target.Strategy))
		assert.Equal(t, "embed", string(out.Surface.Kind))
		assert.Equal(t, "https://e/x.pdf", out.Surface.DownloadURL)
	})

	t.Run("unknown type is download, not an error", func(t *testing.T) {
		resp := env.request(t, http.MethodGet,
			"/api/preview?content_type=video/mp4&url=https://e/x.mp4", nil, false)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		out := decodeBody[api.PreviewResponse](t, resp)
		assert.Equal(t, "download", string(out.Surface.Kind))
	})

	t.Run("missing url", func(t *testing.T) {
		resp := env.request(t, http.MethodGet, "/api/preview?content_type=application/pdf", nil, false)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestUploadEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="minutes.pdf"`)
	header.Set("Content-Type", "application/pdf")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("pdf bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/uploads", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+env.token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	result := decodeBody[struct {
		URL         string `json:"url"`
		Key         string `json:"key"`
		Size        int64  `json:"size"`
		ContentType string `json:"content_type"`
	}](t, resp)

	assert.True(t, strings.HasPrefix(result.Key, "uploads/"))
	assert.NotContains(t, result.Key, " ")
	assert.NotEqual(t, "uploads/minutes.pdf", result.Key)
	assert.NotEmpty(t, result.URL)
	assert.Equal(t, int64(len("pdf bytes")), result.Size)
	assert.Equal(t, "application/pdf", result.ContentType)
}

func TestUploadRequiresToken(t *testing.T) {
	env := newTestEnv(t)

	resp := env.request(t, http.MethodPost, "/api/uploads", nil, false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDegradedReadsStillAnswer(t *testing.T) {
	recorder := &notify.Recorder{}
	srv := api.NewServer(api.Options{
		Repo:      downRepo{},
		Blob:      memorystorage.New(),
		Sender:    recorder,
		JWTSecret: testSecret,
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/resources")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Degraded-Sources"))

	result := decodeBody[struct {
		Items           []map[string]any `json:"items"`
		DegradedSources []string         `json:"degraded_sources"`
	}](t, resp)
	assert.Empty(t, result.Items)
	assert.Len(t, result.DegradedSources, 3)
}

// downRepo simulates a completely unreachable document database.
type downRepo struct{}

func (downRepo) ListDocuments(ctx context.Context, collection string) ([]*sitecontent.Document, error) {
	return nil, sitecontent.ErrStoreUnavailable
}

func (downRepo) GetDocument(ctx context.Context, collection, id string) (*sitecontent.Document, error) {
	return nil, sitecontent.ErrStoreUnavailable
}

func (downRepo) CreateDocument(ctx context.Context, doc *sitecontent.Document) error {
	return sitecontent.ErrStoreUnavailable
}

func (downRepo) UpdateDocument(ctx context.Context, doc *sitecontent.Document) error {
	return sitecontent.ErrStoreUnavailable
}

func (downRepo) DeleteDocument(ctx context.Context, collection, id string) (bool, error) {
	return false, sitecontent.ErrStoreUnavailable
}
