// ABOUTME: Tests for the HTTP provider client
// ABOUTME: Covers auth, endpoint payloads, and bounded video polling
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestGenerateScriptSendsAuth(t *testing.T) {
	var gotAuth, gotTheme string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/scripts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		gotTheme = req["theme"]
		fmt.Fprint(w, `{"title":"Ocean Meditation","full_text":"Breathe.","segments":[{"text":"Breathe.","start_second":0,"end_second":5}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk-test")
	scr, err := c.GenerateScript(context.Background(), "Ocean")
	if err != nil {
		t.Fatalf("generate script failed: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected auth header: %q", gotAuth)
	}
	if gotTheme != "Ocean" {
		t.Errorf("unexpected theme: %q", gotTheme)
	}
	if scr.Title != "Ocean Meditation" || len(scr.Segments) != 1 {
		t.Errorf("unexpected script: %+v", scr)
	}
}

func TestGenerateSpeechDefaultsMime(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"payload":"AAAA"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	speech, err := c.GenerateSpeech(context.Background(), "Breathe.", "Kore")
	if err != nil {
		t.Fatalf("generate speech failed: %v", err)
	}
	if speech.MimeType != "audio/pcm;rate=24000" {
		t.Errorf("expected default mimetype, got %q", speech.MimeType)
	}
}

func TestGenerateVideoPollsToCompletion(t *testing.T) {
	var polls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/videos":
			fmt.Fprint(w, `{"operation_id":"op-1"}`)
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/v1/videos/"):
			if polls.Add(1) < 3 {
				fmt.Fprint(w, `{"done":false}`)
			} else {
				fmt.Fprint(w, `{"done":true,"video_ref":"vid-42"}`)
			}
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithPolling(time.Millisecond, 10))
	ref, err := c.GenerateVideo(context.Background(), "waves", "img-1")
	if err != nil {
		t.Fatalf("generate video failed: %v", err)
	}
	if ref != "vid-42" {
		t.Errorf("unexpected video ref: %q", ref)
	}
	if n := polls.Load(); n != 3 {
		t.Errorf("expected 3 polls, got %d", n)
	}
}

func TestGenerateVideoPollBudgetExceeded(t *testing.T) {
	var polls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"operation_id":"op-1"}`)
			return
		}
		polls.Add(1)
		fmt.Fprint(w, `{"done":false}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithPolling(time.Millisecond, 4))
	if _, err := c.GenerateVideo(context.Background(), "waves", ""); err == nil {
		t.Fatal("expected error when poll budget is exhausted")
	}
	if n := polls.Load(); n != 4 {
		t.Errorf("expected exactly 4 polls, got %d", n)
	}
}

func TestGenerateVideoReportsOperationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"operation_id":"op-1"}`)
			return
		}
		fmt.Fprint(w, `{"done":false,"error":"model refused"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", WithPolling(time.Millisecond, 10))
	_, err := c.GenerateVideo(context.Background(), "waves", "")
	if err == nil || !strings.Contains(err.Error(), "model refused") {
		t.Errorf("expected operation error surfaced, got %v", err)
	}
}

func TestGenerateVideoHonorsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			fmt.Fprint(w, `{"operation_id":"op-1"}`)
			return
		}
		fmt.Fprint(w, `{"done":false}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewClient(srv.URL, "", WithPolling(time.Hour, 10))

	errCh := make(chan error, 1)
	go func() {
		_, err := c.GenerateVideo(ctx, "waves", "")
		errCh <- err
	}()
	cancel()

	select {
	case err := <-errCh:
		if err == nil || !strings.Contains(err.Error(), context.Canceled.Error()) {
			t.Errorf("expected cancellation error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("cancellation did not stop the poll loop")
	}
}

func TestErrorStatusIncludesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.GenerateImage(context.Background(), "waves", "1024", "16:9")
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("expected status and body in error, got %v", err)
	}
}

func TestTranscribeEncodesAudio(t *testing.T) {
	var gotAudio string
	var gotRate float64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		json.NewDecoder(r.Body).Decode(&req)
		gotAudio, _ = req["audio"].(string)
		gotRate, _ = req["sample_rate"].(float64)
		fmt.Fprint(w, `{"text":"pause"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	text, err := c.Transcribe(context.Background(), []byte{1, 2, 3, 4}, 16000)
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if text != "pause" {
		t.Errorf("unexpected transcript: %q", text)
	}
	if gotAudio != "AQIDBA==" {
		t.Errorf("unexpected audio payload: %q", gotAudio)
	}
	if int(gotRate) != 16000 {
		t.Errorf("unexpected sample rate: %v", gotRate)
	}
}
