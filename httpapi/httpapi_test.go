package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/builtin"
	"quantatomai/feature-engine/specbuilder"
)

type widget struct {
	Price float64 `json:"price"`
}

func decodeWidgets(body []byte) ([]widget, error) {
	var out []widget
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func buildWidgetSpec() *specbuilder.Builder[widget] {
	b := specbuilder.Of[widget]()
	specbuilder.Required(b, func(w widget) float64 { return w.Price }, builtin.NewMinMaxScaler("price_scaled"))
	return b
}

func newTestPipeline() *Pipeline[widget] {
	return NewPipeline(decodeWidgets, buildWidgetSpec, builder.NewNamedMap())
}

func TestHealthEndpointReportsOK(t *testing.T) {
	r := newTestPipeline().Router()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestExtractEndpointReturnsNamesValuesAndSettings(t *testing.T) {
	r := newTestPipeline().Router()
	body := `[{"price": 10}, {"price": 20}, {"price": 30}]`
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp extractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"price_scaled"}, resp.Names)
	require.Len(t, resp.Values, 3)
	assert.Equal(t, 0.0, resp.Values[0]["price_scaled"])
	assert.Equal(t, 1.0, resp.Values[2]["price_scaled"])
	assert.NotEmpty(t, resp.Settings)
}

func TestExtractEndpointRejectsMalformedBody(t *testing.T) {
	r := newTestPipeline().Router()
	req := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReplayEndpointReusesPostedSettings(t *testing.T) {
	r := newTestPipeline().Router()
	extractReq := httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`[{"price": 10}, {"price": 30}]`))
	extractRec := httptest.NewRecorder()
	r.ServeHTTP(extractRec, extractReq)
	require.Equal(t, http.StatusOK, extractRec.Code)

	var extracted extractResponse
	require.NoError(t, json.Unmarshal(extractRec.Body.Bytes(), &extracted))

	replayBody, err := json.Marshal(map[string]json.RawMessage{
		"records":  json.RawMessage(`[{"price": 20}]`),
		"settings": extracted.Settings,
	})
	require.NoError(t, err)

	replayReq := httptest.NewRequest(http.MethodPost, "/replay", strings.NewReader(string(replayBody)))
	replayRec := httptest.NewRecorder()
	r.ServeHTTP(replayRec, replayReq)
	require.Equal(t, http.StatusOK, replayRec.Code)

	var replayed extractResponse
	require.NoError(t, json.Unmarshal(replayRec.Body.Bytes(), &replayed))
	require.Len(t, replayed.Values, 1)
	assert.Equal(t, 0.5, replayed.Values[0]["price_scaled"])
}
