package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/config"
)

func TestNew_DisabledReturnsNil(t *testing.T) {
	m := New(config.MetricsConfig{Enabled: false})
	assert.Nil(t, m)
}

func TestNilMetrics_RecordMethodsDoNotPanic(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordNode("initial_discovery", time.Millisecond, nil)
		m.RecordLLMCall("openai", "chat", time.Millisecond, nil)
		m.RecordHTTPRequest("/chat/message", "POST", "200", time.Millisecond)
	})
}

func TestNew_EnabledExposesHandler(t *testing.T) {
	m := New(config.MetricsConfig{Enabled: true})
	require.NotNil(t, m)

	m.RecordNode("initial_discovery", 10*time.Millisecond, nil)
	m.RecordLLMCall("openai", "chat", 50*time.Millisecond, assert.AnError)
	m.RecordHTTPRequest("/chat/message", "POST", "200", 5*time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "pathway_graph_node_executions_total")
	assert.Contains(t, rec.Body.String(), "pathway_llm_errors_total")
}

func TestNilMetrics_HandlerReturns404(t *testing.T) {
	var m *Metrics
	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, req)
	assert.Equal(t, 404, rec.Code)
}
