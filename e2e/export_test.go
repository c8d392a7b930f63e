package e2e

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func startTestExport(t *testing.T, ta *testApp, projectID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"projectId": "%s", "aspectRatio": "16:9"}`, projectID)
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/export/start", body)
	if err != nil {
		t.Fatalf("export start failed: %v", err)
	}
	assertStatus(t, resp, http.StatusAccepted)

	result := parseJSON(t, resp)
	if result["status"] != "queued" {
		t.Errorf("expected status 'queued', got %v", result["status"])
	}
	return result["jobId"].(string)
}

func TestExportStart_QueuesJob(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)
	createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)

	jobID := startTestExport(t, ta, projectID)

	resp, err := doAuthRequest(t, ta, http.MethodGet, "/api/export/status/"+jobID, "")
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	status := parseJSON(t, resp)
	if status["status"] != "queued" {
		t.Errorf("expected queued, got %v", status["status"])
	}
	if status["progress"].(float64) != 0 {
		t.Errorf("expected progress 0, got %v", status["progress"])
	}
}

func TestExportStart_InvalidAspectRatio(t *testing.T) {
	ta := setupApp(t)

	body := fmt.Sprintf(`{"projectId": "%s", "aspectRatio": "4:3"}`, uuid.New().String())
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/export/start", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestExportStatus_UnknownJob(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta, http.MethodGet, "/api/export/status/"+uuid.New().String(), "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestExportResult_BeforeCompletion(t *testing.T) {
	ta := setupApp(t)
	jobID := startTestExport(t, ta, uuid.New().String())

	resp, err := doAuthRequest(t, ta, http.MethodGet, "/api/export/result/"+jobID, "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusBadRequest)
}

func TestExportCancel_QueuedOnly(t *testing.T) {
	ta := setupApp(t)
	jobID := startTestExport(t, ta, uuid.New().String())

	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/export/cancel/"+jobID, "")
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if result["status"] != "canceled" {
		t.Errorf("expected canceled, got %v", result["status"])
	}

	// A second cancel hits a job that is no longer queued
	resp, err = doAuthRequest(t, ta, http.MethodPost, "/api/export/cancel/"+jobID, "")
	if err != nil {
		t.Fatalf("second cancel failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
}
