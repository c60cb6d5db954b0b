package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/dayplan/internal/domain"
	"github.com/alexanderramin/dayplan/internal/llm"
	"github.com/alexanderramin/dayplan/internal/service"
)

type stubPlanner struct {
	result  *domain.GenerationResult
	savedTo string
	text    string
}

func (p *stubPlanner) Plan(_ context.Context, text string) (*domain.GenerationResult, error) {
	p.text = text
	return p.result, nil
}

func (p *stubPlanner) PlanAndSave(_ context.Context, userID, text string) (*service.PlanOutcome, error) {
	p.savedTo, p.text = userID, text
	saved := make([]domain.EventBlob, len(p.result.Events))
	return &service.PlanOutcome{Result: p.result, Saved: saved, Published: 1}, nil
}

func testApp(interactive bool) (*App, *stubPlanner) {
	planner := &stubPlanner{result: &domain.GenerationResult{
		Events: []domain.Event{
			{Title: "Gym", Date: "2025-03-15", StartTime: "18:00", EndTime: "19:00"},
		},
		Summary: "Generated 1 event(s) using OpenAI (gpt-4o-mini)",
		Source:  domain.SourceOpenAI,
	}}
	return &App{
		Planner:       planner,
		Providers:     llm.DescribeProviders(llm.DefaultConfig()),
		IsInteractive: func() bool { return interactive },
	}, planner
}

func execute(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestPlanCmd_JSONWhenNotInteractive(t *testing.T) {
	app, planner := testApp(false)

	out, err := execute(t, app, "plan", "gym", "at", "6pm")
	require.NoError(t, err)
	assert.Equal(t, "gym at 6pm", planner.text)

	var got planOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "openai", got.Source)
	require.Len(t, got.Events, 1)
	assert.Equal(t, "Gym", got.Events[0].Title)
	assert.Zero(t, got.Saved)
}

func TestPlanCmd_TableWhenInteractive(t *testing.T) {
	app, _ := testApp(true)

	out, err := execute(t, app, "plan", "gym at 6pm")
	require.NoError(t, err)
	assert.Contains(t, out, "18:00-19:00")
	assert.Contains(t, out, "Generated 1 event(s) using OpenAI")
}

func TestPlanCmd_JSONFlagOverridesTerminal(t *testing.T) {
	app, _ := testApp(true)

	out, err := execute(t, app, "plan", "--json", "gym")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)))
}

func TestPlanCmd_SaveTo(t *testing.T) {
	app, planner := testApp(true)

	out, err := execute(t, app, "plan", "--save-to", "user-1", "gym")
	require.NoError(t, err)
	assert.Equal(t, "user-1", planner.savedTo)
	assert.Contains(t, out, "Saved 1 event(s) for user user-1, published 1 to CalDAV")
}

func TestPlanCmd_RequiresText(t *testing.T) {
	app, _ := testApp(false)

	_, err := execute(t, app, "plan")
	assert.Error(t, err)
}

func TestProvidersCmd(t *testing.T) {
	app, _ := testApp(false)

	out, err := execute(t, app, "providers")
	require.NoError(t, err)

	var got []providerOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"openai", "gemini", "ollama"}, []string{got[0].Kind, got[1].Kind, got[2].Kind})
	assert.False(t, got[0].Eligible)
	assert.True(t, got[2].Eligible)

	app.IsInteractive = func() bool { return true }
	out, err = execute(t, app, "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "fallback")
}

func TestProvidersCmd_ChecksLocalDaemon(t *testing.T) {
	app, _ := testApp(false)
	checks := 0
	app.CheckLocal = func(context.Context) bool {
		checks++
		return false
	}

	out, err := execute(t, app, "providers")
	require.NoError(t, err)
	assert.Equal(t, 1, checks)

	var got []providerOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	assert.Nil(t, got[0].Reachable)
	require.NotNil(t, got[2].Reachable)
	assert.False(t, *got[2].Reachable)
	assert.Nil(t, app.Providers[2].Reachable, "configured providers are not mutated")

	app.IsInteractive = func() bool { return true }
	out, err = execute(t, app, "providers")
	require.NoError(t, err)
	assert.Contains(t, out, "unreachable")
}

// offlineEnv points configuration at a temp database with every network
// backend disabled, so generation always takes the rule-based path.
func offlineEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "dayplan.db")
	t.Setenv("DAYPLAN_DB", dbPath)
	t.Setenv("DAYPLAN_CONFIG", "")
	t.Setenv("DAYPLAN_OLLAMA_ENABLED", "false")
	t.Setenv("DAYPLAN_LOG_LEVEL", "error")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("DAYPLAN_CALDAV_URL", "")
	return dbPath
}

func TestRoot_BootstrapsFromEnvironment(t *testing.T) {
	dbPath := offlineEnv(t)
	app := &App{}
	t.Cleanup(func() { _ = app.Close() })

	out, err := execute(t, app, "plan", "lunch at 1pm")
	require.NoError(t, err)

	var got planOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "fallback", got.Source)
	assert.NotEmpty(t, got.Events)
	assert.FileExists(t, dbPath)
	assert.NotNil(t, app.Handler)
	assert.Nil(t, app.CheckLocal)
}

func TestRoot_ProvidersReportsLiveDaemon(t *testing.T) {
	offlineEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			_, _ = w.Write([]byte(`{"models":[]}`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()
	t.Setenv("DAYPLAN_OLLAMA_ENABLED", "true")
	t.Setenv("OLLAMA_BASE_URL", srv.URL)
	app := &App{}
	t.Cleanup(func() { _ = app.Close() })

	out, err := execute(t, app, "providers")
	require.NoError(t, err)

	var got []providerOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 3)
	require.NotNil(t, got[2].Reachable)
	assert.True(t, *got[2].Reachable)
}

func TestRoot_InvalidConfigFails(t *testing.T) {
	offlineEnv(t)
	t.Setenv("DAYPLAN_REQUEST_TIMEOUT_MS", "soon")

	_, err := execute(t, &App{}, "providers")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAYPLAN_REQUEST_TIMEOUT_MS")
}

func TestServeCmd_StopsWhenContextEnds(t *testing.T) {
	offlineEnv(t)
	app := &App{}
	t.Cleanup(func() { _ = app.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"serve", "--listen", "127.0.0.1:0"})

	assert.NoError(t, root.ExecuteContext(ctx))
}
