package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureRegistered_Idempotent(t *testing.T) {
	EnsureRegistered()
	EnsureRegistered()
	assert.NotNil(t, getMetrics())
}

func TestRecorders(t *testing.T) {
	// Recording must never panic; values are scraped below.
	SetJournalSessions(3)
	RecordSessionSave(12 * time.Millisecond)
	RecordSessionLoad(4 * time.Millisecond)
	RecordDraw()
	RecordSamplerReset()
	RecordGeneration(2 * time.Second)
	RecordGenerationError("unavailable")

	recorder := httptest.NewRecorder()
	Handler().ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	assert.Contains(t, body, "journal_sessions 3")
	assert.Contains(t, body, "sampler_draws_total")
	assert.Contains(t, body, "sampler_resets_total")
	assert.Contains(t, body, `generation_errors_total{reason="unavailable"}`)
}
