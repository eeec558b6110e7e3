package modrinth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/karmakrafts/modship/internal/errors"
	"github.com/karmakrafts/modship/internal/testutil"
)

// fakeAPI answers project lookups and version creation.
func fakeAPI(t *testing.T, createStatus int) *testutil.Recorder {
	t.Helper()
	return testutil.NewRecorder(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v2/project/mymod":
			_, _ = w.Write([]byte(`{"id":"AABBCCDD","slug":"mymod"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/v2/project/almost-unified":
			_, _ = w.Write([]byte(`{"id":"sdaSaQEz","slug":"almost-unified"}`))
		case r.Method == http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPost && r.URL.Path == "/v2/version":
			w.WriteHeader(createStatus)
			if createStatus < 300 {
				_, _ = w.Write([]byte(`{"id":"IIJJKKLL"}`))
			} else {
				_, _ = w.Write([]byte(`{"error":"invalid_input"}`))
			}
		default:
			w.WriteHeader(http.StatusTeapot)
		}
	})
}

func parseForm(t *testing.T, req testutil.Request) (VersionData, map[string][]byte) {
	t.Helper()
	_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
	require.NoError(t, err)

	mr := multipart.NewReader(bytes.NewReader(req.Body), params["boundary"])
	parts := map[string][]byte{}
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b, err := io.ReadAll(p)
		require.NoError(t, err)
		parts[p.FormName()] = b
	}

	var data VersionData
	require.NoError(t, json.Unmarshal(parts["data"], &data))
	return data, parts
}

func TestPublish_CreatesVersion(t *testing.T) {
	api := fakeAPI(t, http.StatusOK)
	rel := testutil.NewRelease(t)

	p := New(Options{Endpoint: api.URL, Token: "mrp_secret"})
	id, err := p.Publish(context.Background(), rel)
	require.NoError(t, err)
	assert.Equal(t, "IIJJKKLL", id)

	assert.Equal(t, []string{
		"GET /v2/project/mymod",
		"GET /v2/project/almost-unified",
		"POST /v2/version",
	}, api.Paths())

	reqs := api.Requests()
	for _, r := range reqs {
		assert.Equal(t, "mrp_secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
	}

	data, parts := parseForm(t, reqs[2])
	assert.Equal(t, "1.4.0.57", data.VersionNumber)
	assert.Equal(t, rel.Changelog, data.Changelog)
	assert.Equal(t, []string{"1.20.1"}, data.GameVersions)
	assert.Equal(t, []string{"forge"}, data.Loaders)
	assert.Equal(t, "release", data.VersionType)
	assert.Equal(t, "AABBCCDD", data.ProjectID)
	assert.Equal(t, []Dependency{{ProjectID: "sdaSaQEz", DependencyType: "required"}}, data.Dependencies)
	assert.Equal(t, "file", data.PrimaryFile)
	assert.NotEmpty(t, parts["file"])
}

func TestPublish_UploadRejected(t *testing.T) {
	api := fakeAPI(t, http.StatusBadRequest)

	_, err := New(Options{Endpoint: api.URL, Token: "t"}).Publish(context.Background(), testutil.NewRelease(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrUploadRejected)
	assert.Equal(t, "UploadRejected", oerrors.Kind(err))
}

func TestPublish_AuthError(t *testing.T) {
	api := fakeAPI(t, http.StatusUnauthorized)

	_, err := New(Options{Endpoint: api.URL, Token: "bad"}).Publish(context.Background(), testutil.NewRelease(t))
	assert.ErrorIs(t, err, oerrors.ErrAuth)

	var ce *oerrors.ChannelError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ChannelName, ce.Channel)
}

func TestPublish_UnknownCompanion(t *testing.T) {
	api := fakeAPI(t, http.StatusOK)
	rel := testutil.NewRelease(t)
	rel.Project.Companion = "missing"

	_, err := New(Options{Endpoint: api.URL, Token: "t"}).Publish(context.Background(), rel)
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrUploadRejected)
	assert.Contains(t, err.Error(), `"missing"`)
	assert.NotContains(t, api.Paths(), "POST /v2/version")
}

func TestPublish_RequiresCompanion(t *testing.T) {
	api := fakeAPI(t, http.StatusOK)
	rel := testutil.NewRelease(t)
	rel.Project.Companion = ""

	_, err := New(Options{Endpoint: api.URL, Token: "t"}).Publish(context.Background(), rel)
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrUploadRejected)
	assert.Contains(t, err.Error(), "companion")
	assert.Empty(t, api.Requests())
}

func TestNew_Defaults(t *testing.T) {
	p := New(Options{})
	assert.Equal(t, DefaultEndpoint, p.opts.Endpoint)
	assert.Equal(t, []string{"forge"}, p.opts.Loaders)
	assert.Equal(t, "release", p.opts.VersionType)
	assert.Equal(t, []string{"CI_MODRINTH_TOKEN"}, RequiredEnv())
}
