package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/onnwee/nbody-core/internal/config"
)

func TestPushSnapshot_NoopWithoutWebhookURL(t *testing.T) {
	config.ResetForTest()
	os.Unsetenv("SIM_WEBHOOK_URL")
	config.Load()

	client := &http.Client{}
	if err := PushSnapshot(context.Background(), client, []byte("payload"), nil); err != nil {
		t.Fatalf("expected no-op when no webhook configured, got %v", err)
	}
}

func TestPushSnapshot_SucceedsOnFirstAttempt(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	config.ResetForTest()
	os.Setenv("SIM_WEBHOOK_URL", ts.URL)
	os.Setenv("SIM_WEBHOOK_RETRY_BASE_MS", "1")
	os.Setenv("SIM_WEBHOOK_MAX_RETRIES", "3")
	t.Cleanup(func() {
		os.Unsetenv("SIM_WEBHOOK_URL")
		os.Unsetenv("SIM_WEBHOOK_RETRY_BASE_MS")
		os.Unsetenv("SIM_WEBHOOK_MAX_RETRIES")
	})
	config.Load()

	client := &http.Client{}
	if err := PushSnapshot(context.Background(), client, []byte("payload"), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestPushSnapshot_RetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	config.ResetForTest()
	os.Setenv("SIM_WEBHOOK_URL", ts.URL)
	os.Setenv("SIM_WEBHOOK_RETRY_BASE_MS", "1")
	os.Setenv("SIM_WEBHOOK_MAX_RETRIES", "5")
	t.Cleanup(func() {
		os.Unsetenv("SIM_WEBHOOK_URL")
		os.Unsetenv("SIM_WEBHOOK_RETRY_BASE_MS")
		os.Unsetenv("SIM_WEBHOOK_MAX_RETRIES")
	})
	config.Load()

	var observed []AttemptInfo
	client := &http.Client{}
	err := PushSnapshot(context.Background(), client, []byte("payload"), func(info AttemptInfo) {
		observed = append(observed, info)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
	if len(observed) != 3 {
		t.Fatalf("expected 3 observed attempts, got %d", len(observed))
	}
}

func TestPushSnapshot_DoesNotRetryOn4xx(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	config.ResetForTest()
	os.Setenv("SIM_WEBHOOK_URL", ts.URL)
	os.Setenv("SIM_WEBHOOK_RETRY_BASE_MS", "1")
	os.Setenv("SIM_WEBHOOK_MAX_RETRIES", "3")
	t.Cleanup(func() {
		os.Unsetenv("SIM_WEBHOOK_URL")
		os.Unsetenv("SIM_WEBHOOK_RETRY_BASE_MS")
		os.Unsetenv("SIM_WEBHOOK_MAX_RETRIES")
	})
	config.Load()

	client := &http.Client{}
	err := PushSnapshot(context.Background(), client, []byte("payload"), nil)
	if err == nil {
		t.Fatal("expected an error for a permanent 4xx failure")
	}
	if attempts != 1 {
		t.Fatalf("expected exactly 1 attempt for a non-retryable status, got %d", attempts)
	}
}

func TestPushSnapshot_GivesUpAfterMaxRetries(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	config.ResetForTest()
	os.Setenv("SIM_WEBHOOK_URL", ts.URL)
	os.Setenv("SIM_WEBHOOK_RETRY_BASE_MS", "1")
	os.Setenv("SIM_WEBHOOK_MAX_RETRIES", "2")
	t.Cleanup(func() {
		os.Unsetenv("SIM_WEBHOOK_URL")
		os.Unsetenv("SIM_WEBHOOK_RETRY_BASE_MS")
		os.Unsetenv("SIM_WEBHOOK_MAX_RETRIES")
	})
	config.Load()

	client := &http.Client{}
	err := PushSnapshot(context.Background(), client, []byte("payload"), nil)
	if err == nil {
		t.Fatal("expected an error after exhausting retries")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}
