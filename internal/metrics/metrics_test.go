package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollector_Handler(t *testing.T) {
	c := New()
	c.GameStarted()
	c.Answer(true)
	c.Answer(true)
	c.Answer(false)
	c.GameOver("wrong_answer", 3)
	c.SessionOpened()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	out := string(body)

	for _, want := range []string{
		"birds_games_started_total 1",
		`birds_answers_total{result="correct"} 2`,
		`birds_answers_total{result="incorrect"} 1`,
		`birds_game_overs_total{reason="wrong_answer"} 1`,
		"birds_level_reached_count 1",
		"birds_active_sessions 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollector_NilIsSafe(t *testing.T) {
	var c *Collector
	c.GameStarted()
	c.Answer(true)
	c.GameOver("time_up", 1)
	c.SessionOpened()
	c.SessionClosed()

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Errorf("nil collector handler status = %d, want 404", rec.Code)
	}
}
