package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *HTTPClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("missing base URL", func(t *testing.T) {
		_, err := NewClient("  ")
		assert.ErrorIs(t, err, ErrBaseURLRequired)
	})

	t.Run("trims trailing slash", func(t *testing.T) {
		client, err := NewClient("http://backend.local/")
		require.NoError(t, err)
		assert.Equal(t, "http://backend.local", client.BaseURL())
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("http://backend.local")
		require.NoError(t, err)
		assert.Equal(t, 0, client.maxRetries)
		assert.Equal(t, 120*time.Second, client.httpClient.Timeout)
	})

	t.Run("options", func(t *testing.T) {
		client, err := NewClient("http://backend.local",
			WithTimeout(5*time.Second),
			WithMaxRetries(2),
			WithBaseBackoff(time.Millisecond),
		)
		require.NoError(t, err)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
		assert.Equal(t, 2, client.maxRetries)
		assert.Equal(t, time.Millisecond, client.baseBackoff)
	})

	t.Run("timeout leaves the caller's client alone", func(t *testing.T) {
		own := &http.Client{Timeout: time.Minute}
		client, err := NewClient("http://backend.local",
			WithHTTPClient(own),
			WithTimeout(5*time.Second),
		)
		require.NoError(t, err)
		assert.Equal(t, time.Minute, own.Timeout)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
		assert.NotSame(t, own, client.httpClient)
	})

	t.Run("nil HTTP client keeps the default", func(t *testing.T) {
		var client *HTTPClient
		var err error
		require.NotPanics(t, func() {
			client, err = NewClient("http://backend.local",
				WithHTTPClient(nil),
				WithTimeout(5*time.Second),
			)
		})
		require.NoError(t, err)
		require.NotNil(t, client.httpClient)
		assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	})
}

func TestTransform_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/transform", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req TransformRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://youtu.be/abc", req.URL)
		assert.Equal(t, "chill", req.EffectType)

		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("mp3-bytes"))
	})

	blob, err := client.Transform(context.Background(), TransformRequest{
		URL:        " https://youtu.be/abc ",
		EffectType: "chill",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), blob.Data)
	assert.Equal(t, "audio/mpeg", blob.ContentType)
	assert.Equal(t, ".mp3", blob.Extension())
}

func TestTransform_Validation(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	tests := []struct {
		name string
		req  TransformRequest
	}{
		{"missing url", TransformRequest{EffectType: "chill"}},
		{"malformed url", TransformRequest{URL: "not a url", EffectType: "chill"}},
		{"missing effect", TransformRequest{URL: "https://youtu.be/abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Transform(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}

	assert.Equal(t, int32(0), calls.Load(), "invalid requests must not reach the server")
}

func TestErrorMessagePassesThroughUnchanged(t *testing.T) {
	const message = "Failed to get audio URL: upstream said no"

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: message, Details: "Error occurred while processing the YouTube URL"})
	})

	calls := map[string]func() error{
		"transform": func() error {
			_, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "dark"})
			return err
		},
		"split": func() error {
			_, err := client.Split(context.Background(), SplitRequest{FileName: "a.wav", Audio: []byte("x"), StartTime: 0, EndTime: 1})
			return err
		},
		"mix": func() error {
			_, err := client.Mix(context.Background(), MixRequest{Tracks: []MixTrack{{FileName: "a.wav", Audio: []byte("x"), Volume: 100}}})
			return err
		},
		"health": func() error {
			_, err := client.Health(context.Background())
			return err
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.Equal(t, message, err.Error())

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "Error occurred while processing the YouTube URL", apiErr.Details)
			assert.ErrorIs(t, err, ErrRequestFailed)
		})
	}
}

func TestErrorWithoutJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})

	_, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "dark"})
	require.Error(t, err)
	assert.Equal(t, "Failed to process audio", err.Error())
	assert.ErrorIs(t, err, ErrServerError)
}

func TestSplit_Multipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/split", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "1.5", r.FormValue("start_time"))
		assert.Equal(t, "4", r.FormValue("end_time"))

		file, header, err := r.FormFile("audio_file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "song.wav", header.Filename)
		data, _ := io.ReadAll(file)
		assert.Equal(t, "wav-bytes", string(data))

		w.Header().Set("Content-Type", "audio/wav; charset=binary")
		_, _ = w.Write([]byte("clip"))
	})

	blob, err := client.Split(context.Background(), SplitRequest{
		FileName:  "song.wav",
		Audio:     []byte("wav-bytes"),
		StartTime: 1.5,
		EndTime:   4,
	})
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", blob.ContentType)
	assert.Equal(t, ".wav", blob.Extension())
}

func TestSplit_Validation(t *testing.T) {
	client, err := NewClient("http://backend.local")
	require.NoError(t, err)

	tests := []struct {
		name string
		req  SplitRequest
	}{
		{"no audio", SplitRequest{FileName: "a.wav", Audio: []byte{}, EndTime: 1}},
		{"negative start", SplitRequest{FileName: "a.wav", Audio: []byte("x"), StartTime: -1, EndTime: 1}},
		{"end before start", SplitRequest{FileName: "a.wav", Audio: []byte("x"), StartTime: 2, EndTime: 1}},
		{"empty selection", SplitRequest{FileName: "a.wav", Audio: []byte("x"), StartTime: 1, EndTime: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Split(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestMix_Multipart(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/mix", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "80", r.FormValue("volume_0"))
		assert.Equal(t, "0", r.FormValue("start_time_0"))
		assert.Equal(t, "0", r.FormValue("trim_length_0"))
		assert.Equal(t, "25", r.FormValue("volume_1"))
		assert.Equal(t, "2.25", r.FormValue("start_time_1"))
		assert.Equal(t, "10", r.FormValue("trim_length_1"))

		for field, want := range map[string]string{"track_0": "one", "track_1": "two"} {
			file, _, err := r.FormFile(field)
			require.NoError(t, err)
			data, _ := io.ReadAll(file)
			_ = file.Close()
			assert.Equal(t, want, string(data))
		}

		_, _ = w.Write([]byte("mixed"))
	})

	blob, err := client.Mix(context.Background(), MixRequest{Tracks: []MixTrack{
		{FileName: "one.wav", Audio: []byte("one"), Volume: 80},
		{FileName: "two.mp3", Audio: []byte("two"), Volume: 25, StartTime: 2.25, TrimLength: 10},
	}})
	require.NoError(t, err)
	assert.Equal(t, []byte("mixed"), blob.Data)
}

func TestMix_Validation(t *testing.T) {
	client, err := NewClient("http://backend.local")
	require.NoError(t, err)

	_, err = client.Mix(context.Background(), MixRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = client.Mix(context.Background(), MixRequest{Tracks: []MixTrack{
		{FileName: "a.wav", Audio: []byte("x"), Volume: 101},
	}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEmptyResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	_, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "cute"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestHealth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/health", r.URL.Path)
		_ = json.NewEncoder(w).Encode(HealthStatus{Status: "healthy", Message: "Service is running"})
	})

	status, err := client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "Service is running", status.Message)
}

func TestNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(errorResponse{Error: "Internal server error"})
	})

	_, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "cool"})
	require.Error(t, err)
	assert.Equal(t, "Internal server error", err.Error())
	assert.Equal(t, int32(1), calls.Load())
}

func TestRetry_TransientFailure(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}, WithMaxRetries(3), WithBaseBackoff(time.Millisecond))

	blob, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "happy"})
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), blob.Data)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRetry_NonRetryableStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}, WithMaxRetries(3), WithBaseBackoff(time.Millisecond))

	_, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "happy"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestContextCancelled(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Transform(ctx, TransformRequest{URL: "https://youtu.be/abc", EffectType: "melodic"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoggingTransport(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("audio"))
	}, WithLogger(logger))

	_, err := client.Transform(context.Background(), TransformRequest{URL: "https://youtu.be/abc", EffectType: "sleepy"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "backend request")
	assert.Contains(t, out, "path=/api/transform")
	assert.Contains(t, out, "status=200")
}

func TestAPIError_Describe(t *testing.T) {
	err := &APIError{StatusCode: 400, Message: "No URL provided", Details: "Request body must include a url field"}
	assert.Equal(t, "400: No URL provided (Request body must include a url field)", err.Describe())

	err.Details = ""
	assert.Equal(t, "400: No URL provided", err.Describe())
}
