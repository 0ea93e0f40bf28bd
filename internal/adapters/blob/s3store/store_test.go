package s3store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 atiende PUT/DELETE path-style y guarda lo recibido.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	types   map[string]string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(req.URL.Path, "/pets/")
	resp := &http.Response{StatusCode: http.StatusOK, Header: http.Header{}, Body: io.NopCloser(bytes.NewReader(nil)), Request: req}
	switch req.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = string(body)
		f.types[key] = req.Header.Get("Content-Type")
		resp.Header.Set("ETag", `"etag"`)
	case http.MethodDelete:
		delete(f.objects, key)
		resp.StatusCode = http.StatusNoContent
	default:
		resp.StatusCode = http.StatusNotImplemented
	}
	return resp, nil
}

func newTestStore(t *testing.T, publicBase string) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string]string{}, types: map[string]string{}}
	st, err := New(context.Background(), Config{
		Bucket:          "pets",
		Endpoint:        "https://s3.test.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
		PublicBaseURL:   publicBase,
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
	})
	require.NoError(t, err)
	return st, fake
}

func TestStore_PutAndDelete(t *testing.T) {
	st, fake := newTestStore(t, "")
	ctx := context.Background()

	info, err := st.Put(ctx, "images/a.png", strings.NewReader("png-bytes"), 9, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "images/a.png", info.Key)
	assert.Equal(t, "image/png", fake.types["images/a.png"])
	assert.Contains(t, fake.objects["images/a.png"], "png-bytes")

	require.NoError(t, st.Delete(ctx, "images/a.png"))
	_, ok := fake.objects["images/a.png"]
	assert.False(t, ok)
}

func TestStore_URL(t *testing.T) {
	st, _ := newTestStore(t, "")
	u, err := st.URL(context.Background(), "images/a.png")
	require.NoError(t, err)
	assert.Contains(t, u, "https://s3.test.local/pets/images/a.png")
	assert.Contains(t, u, "X-Amz-Signature=")

	public, _ := newTestStore(t, "https://cdn.example.com/")
	u, err = public.URL(context.Background(), "images/a.png")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/images/a.png", u)
}
