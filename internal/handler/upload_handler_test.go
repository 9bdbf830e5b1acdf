package handler_test

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edubridge-kr/lms-api/internal/dto"
)

// pngBytes returns a minimal payload carrying the PNG magic number, enough
// for content sniffing to classify it as an image.
func pngBytes() []byte {
	return append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)
}

func TestUploadStoresImage(t *testing.T) {
	env := newTestEnv(t)
	env.seedLearner(t, "learner-1", "Jimin")

	status, resp := env.doUpload(t, "learner-1", "제출 스크린샷.png", pngBytes())
	require.Equal(t, http.StatusOK, status)
	require.True(t, resp.Success)

	var uploaded dto.UploadResponse
	decodeData(t, resp.Data, &uploaded)
	require.Contains(t, uploaded.URL, "https://cdn.example.test/")
	require.Equal(t, "image", uploaded.MimeType)
	require.NotEmpty(t, uploaded.Checksum)
}

func TestUploadRejectsDisallowedType(t *testing.T) {
	env := newTestEnv(t)
	env.seedLearner(t, "learner-1", "Jimin")

	status, resp := env.doUpload(t, "learner-1", "notes.txt", []byte("plain text payload"))
	require.Equal(t, http.StatusUnsupportedMediaType, status)
	require.False(t, resp.Success)
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	env := newTestEnv(t)
	env.seedLearner(t, "learner-1", "Jimin")

	oversized := append(pngBytes(), bytes.Repeat([]byte{0}, 1024*1024)...)
	status, _ := env.doUpload(t, "learner-1", "huge.png", oversized)
	require.Equal(t, http.StatusRequestEntityTooLarge, status)
}

func TestUploadRequiresAuthentication(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.doUpload(t, "", "anon.png", pngBytes())
	require.Equal(t, http.StatusUnauthorized, status)
}
