package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestNotifier(webhookURL string) *Notifier {
	n := New(webhookURL, "1234", "http://1.2.3.4:8080/?key=secret", 5*time.Second)
	n.retryDelay = time.Millisecond
	return n
}

func decodePayload(t *testing.T, body io.Reader) webhookPayload {
	t.Helper()
	var p webhookPayload
	if err := json.NewDecoder(body).Decode(&p); err != nil {
		t.Fatalf("decode webhook payload: %v", err)
	}
	return p
}

func TestSendArticle(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		got = decodePayload(t, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	err := n.SendArticle(context.Background(), ArticleEvent{
		Title:         "Breaking Market News",
		URL:           "https://example.com/breaking-market-news/",
		Value:         4.15,
		TodayCount:    3,
		DailyTarget:   8,
		MonthlyCount:  42,
		MonthlyTarget: 240,
		MonthlyEarned: 174.30,
		Streak:        5,
	})
	if err != nil {
		t.Fatalf("SendArticle failed: %v", err)
	}

	for _, want := range []string{
		"ARTICLE PUBLISHED",
		"Breaking Market News",
		"https://example.com/breaking-market-news/",
		"+ $4.15",
		"$174.30",
		"**3 / 8** Articles",
		"Streak: 5 Days",
		"5 More To Daily Goal",
		"**42 / 240** Articles",
		"<@1234>",
	} {
		if !strings.Contains(got.Content, want) {
			t.Errorf("message missing %q:\n%s", want, got.Content)
		}
	}

	if len(got.Components) != 1 || len(got.Components[0].Components) != 1 {
		t.Fatalf("expected one link button, got %+v", got.Components)
	}
	button := got.Components[0].Components[0]
	if button.Style != 5 || button.URL != "http://1.2.3.4:8080/?key=secret" {
		t.Errorf("unexpected button: %+v", button)
	}
}

func TestSendArticle_GoalReached(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodePayload(t, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	err := n.SendArticle(context.Background(), ArticleEvent{
		Title: "T", URL: "https://example.com/t/", Value: 4.15,
		TodayCount: 8, DailyTarget: 8, MonthlyTarget: 240, Streak: 1,
	})
	if err != nil {
		t.Fatalf("SendArticle failed: %v", err)
	}
	if !strings.Contains(got.Content, "Daily Goal Reached") {
		t.Errorf("expected goal-reached line:\n%s", got.Content)
	}
	if !strings.Contains(got.Content, "Streak: 1 Day**") {
		t.Errorf("expected singular day wording:\n%s", got.Content)
	}
}

func TestSendArticle_NoButtonWithoutDashboardURL(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodePayload(t, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := New(server.URL, "", "", 5*time.Second)
	n.retryDelay = time.Millisecond
	err := n.SendArticle(context.Background(), ArticleEvent{
		Title: "T", URL: "https://example.com/t/", DailyTarget: 8, MonthlyTarget: 240,
	})
	if err != nil {
		t.Fatalf("SendArticle failed: %v", err)
	}
	if len(got.Components) != 0 {
		t.Errorf("expected no components, got %+v", got.Components)
	}
	if strings.Contains(got.Content, "<@") {
		t.Errorf("expected no mention without a user ID:\n%s", got.Content)
	}
}

func TestSendErrorAlert(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodePayload(t, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	if err := n.SendErrorAlert(context.Background(), "connection refused", 3); err != nil {
		t.Fatalf("SendErrorAlert failed: %v", err)
	}
	if !strings.Contains(got.Content, "failed **3** consecutive times") {
		t.Errorf("expected failure count:\n%s", got.Content)
	}
	if !strings.Contains(got.Content, "connection refused") {
		t.Errorf("expected error message:\n%s", got.Content)
	}
}

func TestSendErrorAlert_TruncatesLongErrors(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodePayload(t, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	long := strings.Repeat("x", 2000)
	if err := n.SendErrorAlert(context.Background(), long, 3); err != nil {
		t.Fatalf("SendErrorAlert failed: %v", err)
	}
	if strings.Contains(got.Content, strings.Repeat("x", 501)) {
		t.Error("error message should be truncated to 500 characters")
	}
}

func TestSendStartup(t *testing.T) {
	var got webhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = decodePayload(t, r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	if err := n.SendStartup(context.Background(), "Poll interval: 180s"); err != nil {
		t.Fatalf("SendStartup failed: %v", err)
	}
	if !strings.Contains(got.Content, "ONLINE") || !strings.Contains(got.Content, "Poll interval: 180s") {
		t.Errorf("unexpected startup message:\n%s", got.Content)
	}
}

func TestSend_RetriesOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"retry_after": 0.01}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	if err := n.SendErrorAlert(context.Background(), "boom", 3); err != nil {
		t.Fatalf("expected success after rate limit retry, got: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
}

func TestSend_RetriesOnServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	if err := n.SendErrorAlert(context.Background(), "boom", 3); err != nil {
		t.Fatalf("expected success on third attempt, got: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestSend_FailsAfterMaxRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	n := newTestNotifier(server.URL)
	if err := n.SendErrorAlert(context.Background(), "boom", 3); err == nil {
		t.Fatal("expected delivery failure, got nil")
	}
	if attempts != maxRetries {
		t.Errorf("expected %d attempts, got %d", maxRetries, attempts)
	}
}
