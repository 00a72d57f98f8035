package steam

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DomDom3333/GameFinder/internal/gamedata"
)

func newStubServer(t *testing.T, details, reviews string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/api/appdetails":
			fmt.Fprint(w, details)
		case len(r.URL.Path) > len("/appreviews/") && r.URL.Path[:len("/appreviews/")] == "/appreviews/":
			fmt.Fprint(w, reviews)
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

const validDetails = `{"550":{"success":true,"data":{
	"name":"Left 4 Dead 2",
	"type":"game",
	"short_description":"Co-op zombie shooter",
	"supported_languages":"English<strong>*</strong>, French<br>German",
	"categories":[{"id":1,"description":"Multi-player"},{"id":9,"description":"Co-op"}],
	"genres":[{"description":"Action"}],
	"developers":["Valve"],
	"publishers":["Valve"]
}}}`

const validReviews = `{"query_summary":{"review_score":9,"review_score_desc":"Overwhelmingly Positive","total_positive":700000,"total_negative":20000,"total_reviews":720000}}`

func TestFetchValidGame(t *testing.T) {
	server := newStubServer(t, validDetails, validReviews)
	client := NewClient(server.URL, time.Second)

	data, err := client.Fetch(context.Background(), "550")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if data.Name != "Left 4 Dead 2" {
		t.Fatalf("unexpected name: %q", data.Name)
	}
	if data.SupportedLanguages != "English*, FrenchGerman" {
		t.Fatalf("expected HTML stripped, got %q", data.SupportedLanguages)
	}
	if data.ReviewSummary == nil || data.ReviewSummary.ReviewScore != 9 {
		t.Fatalf("expected review summary attached, got %+v", data.ReviewSummary)
	}
}

func TestFetchRejectsNonGame(t *testing.T) {
	details := `{"123":{"success":true,"data":{"name":"Soundtrack","type":"music","categories":[{"id":1,"description":"Multi-player"}]}}}`
	server := newStubServer(t, details, validReviews)
	client := NewClient(server.URL, time.Second)

	if _, err := client.Fetch(context.Background(), "123"); err != gamedata.ErrNotAvailable {
		t.Fatalf("expected ErrNotAvailable for non-game type, got %v", err)
	}
}

func TestFetchRejectsSinglePlayer(t *testing.T) {
	details := `{"123":{"success":true,"data":{"name":"Solo Quest","type":"game","categories":[{"id":2,"description":"Single-player"}]}}}`
	server := newStubServer(t, details, validReviews)
	client := NewClient(server.URL, time.Second)

	if _, err := client.Fetch(context.Background(), "123"); err != gamedata.ErrNotAvailable {
		t.Fatalf("expected ErrNotAvailable without the multiplayer category, got %v", err)
	}
}

func TestFetchUnsuccessfulEnvelope(t *testing.T) {
	server := newStubServer(t, `{"123":{"success":false}}`, validReviews)
	client := NewClient(server.URL, time.Second)

	if _, err := client.Fetch(context.Background(), "123"); err != gamedata.ErrNotAvailable {
		t.Fatalf("expected ErrNotAvailable on success=false, got %v", err)
	}
}

func TestFetchUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()
	client := NewClient(server.URL, time.Second)

	if _, err := client.Fetch(context.Background(), "123"); err == nil || err == gamedata.ErrNotAvailable {
		t.Fatalf("expected a transport error, got %v", err)
	}
}

func TestFetchMalformedPayload(t *testing.T) {
	server := newStubServer(t, `not json`, validReviews)
	client := NewClient(server.URL, time.Second)

	if _, err := client.Fetch(context.Background(), "123"); err == nil {
		t.Fatalf("expected decode error")
	}
}
