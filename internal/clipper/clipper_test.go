package clipper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"recipe-planner/internal/recipe"
)

// --- Mocks ---

type MockRecipeSaver struct {
	SavedRecipe *recipe.LocalRecipe
	SavedSteps  []recipe.Step
	ShouldError bool
}

func (m *MockRecipeSaver) Insert(ctx context.Context, rec recipe.LocalRecipe, steps []recipe.Step) (*recipe.LocalRecipe, error) {
	if m.ShouldError {
		return nil, fmt.Errorf("mock store error")
	}
	rec.ID = "saved-id"
	m.SavedRecipe = &rec
	m.SavedSteps = steps
	return m.SavedRecipe, nil
}

type MockTextGenerator struct {
	Prompt      string
	Response    string
	ShouldError bool
}

func (m *MockTextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.Prompt = prompt
	if m.ShouldError {
		return "", fmt.Errorf("mock ai error")
	}
	return m.Response, nil
}

// --- Tests ---

func TestFetchAndCleanHTML(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		html := `
		<html>
		<head><style>.x { color: red; }</style></head>
		<body>
			<nav>Menu links</nav>
			<script>alert("tracking")</script>
			<div class="ads">Buy things</div>
			<h1>Tarte aux pommes</h1>
			<p>Peel the apples.</p>
			<footer>Copyright</footer>
		</body>
		</html>`
		fmt.Fprint(w, html)
	}))
	defer ts.Close()

	c := NewClipper(&MockRecipeSaver{}, &MockTextGenerator{})
	content, err := c.fetchAndCleanHTML(ts.URL)
	if err != nil {
		t.Fatalf("fetchAndCleanHTML failed: %v", err)
	}

	if !strings.Contains(content, "Tarte aux pommes") || !strings.Contains(content, "Peel the apples.") {
		t.Errorf("expected recipe content, got %q", content)
	}
	for _, noise := range []string{"Menu links", "tracking", "Buy things", "Copyright", "color: red"} {
		if strings.Contains(content, noise) {
			t.Errorf("noise %q survived cleaning", noise)
		}
	}
}

func TestClipURL(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Tarte aux pommes</h1></body></html>`)
	}))
	defer ts.Close()

	saver := &MockRecipeSaver{}
	gen := &MockTextGenerator{Response: `{
		"title": "Tarte aux pommes",
		"ingredients": ["4 pommes", "1 pate brisee"],
		"steps": ["Eplucher les pommes", "Cuire 40 minutes"],
		"prep_time": "50 mins",
		"servings": "6 people"
	}`}

	c := NewClipper(saver, gen)
	saved, err := c.ClipURL(context.Background(), ts.URL, "user-1")
	if err != nil {
		t.Fatalf("ClipURL failed: %v", err)
	}

	if saved.Title != "Tarte aux pommes" {
		t.Errorf("unexpected title %q", saved.Title)
	}
	if saved.CreatedBy != "user-1" {
		t.Errorf("expected author user-1, got %q", saved.CreatedBy)
	}
	if saved.TotalTime != 50 {
		t.Errorf("expected 50 minutes, got %d", saved.TotalTime)
	}
	if saved.Yield == nil || *saved.Yield != 6 {
		t.Errorf("expected yield 6, got %v", saved.Yield)
	}
	if len(saver.SavedSteps) != 2 || saver.SavedSteps[0].StepNumber != 1 || saver.SavedSteps[1].StepNumber != 2 {
		t.Errorf("steps not numbered in order: %+v", saver.SavedSteps)
	}
	if !strings.Contains(gen.Prompt, "Tarte aux pommes") {
		t.Error("page content missing from the extraction prompt")
	}
}

func TestClipURLBadAIResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>recipe</body></html>`)
	}))
	defer ts.Close()

	c := NewClipper(&MockRecipeSaver{}, &MockTextGenerator{Response: "```json not json```"})
	if _, err := c.ClipURL(context.Background(), ts.URL, "user-1"); err == nil {
		t.Fatal("expected error for unparsable AI output")
	}
}

func TestClipURLFetchFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	c := NewClipper(&MockRecipeSaver{}, &MockTextGenerator{})
	if _, err := c.ClipURL(context.Background(), ts.URL, "user-1"); err == nil {
		t.Fatal("expected error for a failing page fetch")
	}
}

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"30 mins", 30},
		{"1 h", 60},
		{"2 hours", 120},
		{"45", 45},
		{"", 0},
		{"soonish", 0},
	}
	for _, tc := range cases {
		if got := parseMinutes(tc.in); got != tc.want {
			t.Errorf("parseMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
