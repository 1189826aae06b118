package puter

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackedBody struct {
	io.Reader
	closed bool
}

func (b *trackedBody) Close() error {
	b.closed = true
	return nil
}

func TestStream_YieldsFragmentsAndSkipsEmpty(t *testing.T) {
	body := strings.Join([]string{
		`{"type":"text","text":"Hel"}`,
		``,
		`{"type":"text","text":""}`,
		`{"type":"text","text":"lo"}`,
	}, "\n")

	stream := newStream(io.NopCloser(strings.NewReader(body)))
	defer stream.Close()

	first, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "Hel", first.Text)

	second, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "lo", second.Text)

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)

	// EOF is sticky.
	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_SSEFramingAndDoneMarker(t *testing.T) {
	body := strings.Join([]string{
		`data: {"choices":[{"delta":{"content":"a"}}]}`,
		`data: {"choices":[{"delta":{"content":"b"}}]}`,
		`data: [DONE]`,
		`{"text":"never reached"}`,
	}, "\n")

	stream := newStream(io.NopCloser(strings.NewReader(body)))
	defer stream.Close()

	first, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", first.Text)

	second, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "b", second.Text)

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStream_EarlyCloseReleasesBody(t *testing.T) {
	body := &trackedBody{Reader: strings.NewReader(
		`{"text":"first"}` + "\n" + `{"text":"second"}` + "\n",
	)}

	stream := newStream(body)
	first, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "first", first.Text)

	require.NoError(t, stream.Close())
	assert.True(t, body.closed, "underlying body must be closed without draining")
}

func TestStreamMessages_EndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req driverRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req.Args["stream"])

		flusher := w.(http.Flusher)
		for _, chunk := range []string{`{"text":"Hello"}`, `{"text":" world"}`} {
			io.WriteString(w, chunk+"\n")
			flusher.Flush()
		}
	}))
	defer server.Close()

	client := New(Config{APIBaseURL: server.URL, Token: "tok"})
	stream, err := client.Stream(context.Background(), "Hi", Options{})
	require.NoError(t, err)
	defer stream.Close()

	first, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, "Hello", first.Text)

	second, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, " world", second.Text)

	_, err = stream.Next()
	assert.ErrorIs(t, err, io.EOF)
}
