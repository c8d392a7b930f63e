package e2e

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func TestRegisterMedia_ValidationFailure(t *testing.T) {
	ta := setupApp(t)

	// missing mediaType
	body := fmt.Sprintf(`{"projectId": "%s", "kind": "uploaded"}`, uuid.New().String())
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/media/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestRegisterGeneratedMedia_RequiresProvider(t *testing.T) {
	ta := setupApp(t)

	body := fmt.Sprintf(`{"projectId": "%s", "kind": "generated", "mediaType": "video"}`, uuid.New().String())
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/media/", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusInternalServerError)
}

func TestUploadAndServeBlob(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("projectId", projectID)
	mw.WriteField("mediaType", "image")
	fw, err := mw.CreateFormFile("file", "poster.png")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, "/api/media/upload", &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+generateToken(t, ta))

	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)

	item := parseJSON(t, resp)
	url, _ := item["url"].(string)
	if url == "" {
		t.Fatal("expected blob URL in response")
	}

	// Blob endpoint is public; it serves the playable bytes
	blobResp, err := doRequest(ta.app, http.MethodGet, url, "", nil)
	if err != nil {
		t.Fatalf("blob fetch failed: %v", err)
	}
	assertStatus(t, blobResp, http.StatusOK)
	if got := readBody(t, blobResp); got != "png-bytes" {
		t.Errorf("blob bytes mismatch: %q", got)
	}
}

func TestDeleteMedia_CascadesKeyframes(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)
	kfID := kf["id"].(string)

	resp, err := doAuthRequest(t, ta, http.MethodDelete, "/api/media/"+mediaID, "")
	if err != nil {
		t.Fatalf("delete media failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNoContent)

	resp, err = doAuthRequest(t, ta, http.MethodGet, "/api/keyframes/"+kfID, "")
	if err != nil {
		t.Fatalf("get keyframe failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}
