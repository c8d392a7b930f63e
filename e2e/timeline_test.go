package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
)

func createTestTrack(t *testing.T, ta *testApp, projectID string) string {
	t.Helper()
	body := fmt.Sprintf(`{"projectId": "%s", "type": "video", "label": "Main"}`, projectID)
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/tracks", body)
	if err != nil {
		t.Fatalf("create track failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	return parseJSON(t, resp)["id"].(string)
}

func registerTestMedia(t *testing.T, ta *testApp, projectID string, durationMs int64) string {
	t.Helper()
	body := fmt.Sprintf(`{
		"projectId": "%s",
		"kind": "uploaded",
		"mediaType": "video",
		"url": "https://cdn.example.com/clip.mp4",
		"durationMs": %d
	}`, projectID, durationMs)
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/media/", body)
	if err != nil {
		t.Fatalf("register media failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	return parseJSON(t, resp)["id"].(string)
}

func createTestKeyframe(t *testing.T, ta *testApp, trackID, mediaID string, timestamp, duration int64) map[string]interface{} {
	t.Helper()
	body := fmt.Sprintf(`{
		"trackId": "%s",
		"timestamp": %d,
		"duration": %d,
		"dataType": "video",
		"mediaId": "%s"
	}`, trackID, timestamp, duration, mediaID)
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes", body)
	if err != nil {
		t.Fatalf("create keyframe failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)
	return parseJSON(t, resp)
}

func TestTrackLifecycle(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()

	trackID := createTestTrack(t, ta, projectID)

	resp, err := doAuthRequest(t, ta, http.MethodGet, "/api/projects/"+projectID+"/tracks", "")
	if err != nil {
		t.Fatalf("list tracks failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	resp, err = doAuthRequest(t, ta, http.MethodPatch, "/api/tracks/"+trackID, `{"label": "Renamed"}`)
	if err != nil {
		t.Fatalf("update track failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["label"]; got != "Renamed" {
		t.Errorf("expected label 'Renamed', got %v", got)
	}

	resp, err = doAuthRequest(t, ta, http.MethodDelete, "/api/tracks/"+trackID, "")
	if err != nil {
		t.Fatalf("delete track failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNoContent)

	resp, err = doAuthRequest(t, ta, http.MethodGet, "/api/tracks/"+trackID, "")
	if err != nil {
		t.Fatalf("get track failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestCreateKeyframe_ClampsDurationToNatural(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 50000)
	if got := kf["duration"].(float64); got != 10000 {
		t.Errorf("expected duration clamped to 10000, got %v", got)
	}
}

func TestCreateKeyframe_OverlapConflict(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)

	body := fmt.Sprintf(`{
		"trackId": "%s",
		"timestamp": 3000,
		"duration": 5000,
		"dataType": "video",
		"mediaId": "%s"
	}`, trackID, mediaID)
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes", body)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)
}

func TestMoveKeyframe_CommitsClampedPosition(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)
	kfID := kf["id"].(string)

	// 1000px over 20000ms: 100px = 2000ms
	body := `{"deltaPx": 100, "trackWidthPx": 1000, "timelineMs": 20000}`
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes/"+kfID+"/move", body)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["timestamp"].(float64); got != 2000 {
		t.Errorf("expected timestamp 2000, got %v", got)
	}
}

func TestMoveKeyframe_FromInteractiveIsNoOp(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)
	kfID := kf["id"].(string)

	body := `{"deltaPx": 100, "trackWidthPx": 1000, "timelineMs": 20000, "fromInteractive": true}`
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes/"+kfID+"/move", body)
	if err != nil {
		t.Fatalf("move failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["timestamp"].(float64); got != 0 {
		t.Errorf("expected untouched timestamp 0, got %v", got)
	}
}

func TestResizeKeyframe_SnapsToGrid(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)
	kfID := kf["id"].(string)

	// +37px = +740ms -> 5740 -> snaps to 5700
	body := `{"deltaPx": 37, "trackWidthPx": 1000, "timelineMs": 20000}`
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes/"+kfID+"/resize", body)
	if err != nil {
		t.Fatalf("resize failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := parseJSON(t, resp)["duration"].(float64); got != 5700 {
		t.Errorf("expected duration 5700, got %v", got)
	}
}

func TestDuplicateKeyframe_LeavesOriginalUntouched(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)
	kfID := kf["id"].(string)

	body := `{"deltaPx": 300, "trackWidthPx": 1000, "timelineMs": 20000}`
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes/"+kfID+"/duplicate", body)
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	assertStatus(t, resp, http.StatusCreated)

	dup := parseJSON(t, resp)
	if dup["id"] == kfID {
		t.Error("duplicate must get a new id")
	}
	if got := dup["timestamp"].(float64); got != 6000 {
		t.Errorf("expected duplicate at 6000, got %v", got)
	}

	resp, err = doAuthRequest(t, ta, http.MethodGet, "/api/keyframes/"+kfID, "")
	if err != nil {
		t.Fatalf("get original failed: %v", err)
	}
	if got := parseJSON(t, resp)["timestamp"].(float64); got != 0 {
		t.Errorf("original moved to %v, expected 0", got)
	}
}

func TestDuplicateKeyframe_RejectsLandingOnOriginal(t *testing.T) {
	ta := setupApp(t)
	projectID := uuid.New().String()
	trackID := createTestTrack(t, ta, projectID)
	mediaID := registerTestMedia(t, ta, projectID, 10000)

	kf := createTestKeyframe(t, ta, trackID, mediaID, 0, 5000)
	kfID := kf["id"].(string)

	// 10px on a 1000px/20000ms row is 200ms: the ghost comes to rest at
	// [200, 5200), still inside the original's interval.
	body := `{"deltaPx": 10, "trackWidthPx": 1000, "timelineMs": 20000}`
	resp, err := doAuthRequest(t, ta, http.MethodPost, "/api/keyframes/"+kfID+"/duplicate", body)
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	assertStatus(t, resp, http.StatusConflict)

	resp, err = doAuthRequest(t, ta, http.MethodGet, "/api/tracks/"+trackID+"/keyframes", "")
	if err != nil {
		t.Fatalf("list keyframes failed: %v", err)
	}
	var keyframes []map[string]interface{}
	if err := json.Unmarshal([]byte(readBody(t, resp)), &keyframes); err != nil {
		t.Fatalf("failed to parse keyframe list: %v", err)
	}
	if len(keyframes) != 1 {
		t.Errorf("expected the track to keep a single keyframe, got %d", len(keyframes))
	}
}

func TestRuler(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta, http.MethodGet, "/api/timeline/ruler?duration=60&zoom=1&viewportWidth=1200", "")
	if err != nil {
		t.Fatalf("ruler failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	result := parseJSON(t, resp)
	if got := result["majorInterval"].(float64); got != 5 {
		t.Errorf("expected major interval 5s, got %v", got)
	}
	if got := result["minorInterval"].(float64); got != 1 {
		t.Errorf("expected minor interval 1s, got %v", got)
	}
	ticks, ok := result["ticks"].([]interface{})
	if !ok || len(ticks) == 0 {
		t.Fatal("expected non-empty ticks")
	}
}
