package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cutreel/api/internal/config"
	"github.com/cutreel/api/internal/model"
)

func TestPixelforgeStatusMapping(t *testing.T) {
	tests := []struct {
		wire       string
		body       string
		wantStatus model.MediaStatus
		wantVideo  string
	}{
		{"queued", `{"id":"j1","status":"queued"}`, model.MediaStatusPending, ""},
		{"processing", `{"id":"j1","status":"processing"}`, model.MediaStatusRunning, ""},
		{"done", `{"id":"j1","status":"done","output":{"video_url":"https://pf/out.mp4"}}`, model.MediaStatusCompleted, "https://pf/out.mp4"},
		{"error", `{"id":"j1","status":"error","error":"gpu on fire"}`, model.MediaStatusFailed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.wire, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/tasks/j1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewPixelforgeClient(&config.PixelforgeConfig{BaseURL: srv.URL, APIKey: "k"})
			status, output, err := c.Poll(context.Background(), "j1")
			if err != nil {
				t.Fatalf("Poll: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if tt.wantVideo != "" && (output == nil || output.VideoURL != tt.wantVideo) {
				t.Errorf("output = %+v, want video %s", output, tt.wantVideo)
			}
		})
	}
}

func TestPixelforgeUnknownStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"j1","status":"melting"}`)
	}))
	defer srv.Close()

	c := NewPixelforgeClient(&config.PixelforgeConfig{BaseURL: srv.URL, APIKey: "k"})
	if _, _, err := c.Poll(context.Background(), "j1"); err == nil {
		t.Error("expected error for unknown wire status")
	}
}

func TestVoxaStateMapping(t *testing.T) {
	tests := []struct {
		state      int
		body       string
		wantStatus model.MediaStatus
		wantURL    string
	}{
		{0, `{"ref":"r1","state":0}`, model.MediaStatusPending, ""},
		{1, `{"ref":"r1","state":1}`, model.MediaStatusRunning, ""},
		{2, `{"ref":"r1","state":2,"audio_url":"https://voxa/out.mp3"}`, model.MediaStatusCompleted, "https://voxa/out.mp3"},
		{3, `{"ref":"r1","state":3,"message":"bad prompt"}`, model.MediaStatusFailed, ""},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("state_%d", tt.state), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/jobs/r1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := NewVoxaClient(&config.VoxaConfig{BaseURL: srv.URL, APIKey: "k"})
			status, output, err := c.Poll(context.Background(), "r1")
			if err != nil {
				t.Fatalf("Poll: %v", err)
			}
			if status != tt.wantStatus {
				t.Errorf("status = %s, want %s", status, tt.wantStatus)
			}
			if tt.wantURL != "" && (output == nil || output.URL != tt.wantURL) {
				t.Errorf("output = %+v, want url %s", output, tt.wantURL)
			}
		})
	}
}

func TestRegistryLookup(t *testing.T) {
	pf := NewPixelforgeClient(&config.PixelforgeConfig{})
	vx := NewVoxaClient(&config.VoxaConfig{})
	r := NewRegistry(pf, vx)

	if p, err := r.Lookup("pixelforge"); err != nil || p != Poller(pf) {
		t.Errorf("Lookup(pixelforge) = %v, %v", p, err)
	}
	if p, err := r.Lookup("voxa"); err != nil || p != Poller(vx) {
		t.Errorf("Lookup(voxa) = %v, %v", p, err)
	}
	if _, err := r.Lookup("suno"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
