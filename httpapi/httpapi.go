// Package httpapi exposes a spec over HTTP: POST /extract runs the full
// prepare/reduce/present/emit pipeline over a posted record batch and
// returns feature names, values and a replayable settings document;
// POST /replay re-emits feature values from a posted settings document
// without re-reducing. Routing style (gin.Default(), a /health check,
// POST handlers) follows src/main.go.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/collection"
	"quantatomai/feature-engine/extractor"
	"quantatomai/feature-engine/settingscodec"
	"quantatomai/feature-engine/specbuilder"
)

// Pipeline binds a spec builder factory, a record decoder and an output
// builder prototype into a servable HTTP surface for record type T.
type Pipeline[T any] struct {
	decode func([]byte) ([]T, error)
	build  func() *specbuilder.Builder[T]
	proto  builder.Builder[map[string]float64]
}

// NewPipeline constructs a Pipeline. build must return an equivalent,
// freshly-declared spec builder on every call (the same declarations,
// since Go values aren't safely reusable once Build has validated them).
func NewPipeline[T any](decode func([]byte) ([]T, error), build func() *specbuilder.Builder[T], proto builder.Builder[map[string]float64]) *Pipeline[T] {
	return &Pipeline[T]{decode: decode, build: build, proto: proto}
}

// Router builds the gin engine exposing /health, /extract and /replay.
func (p *Pipeline[T]) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.POST("/extract", p.handleExtract)
	r.POST("/replay", p.handleReplay)
	return r
}

type extractResponse struct {
	Names    []string             `json:"names"`
	Values   []map[string]float64 `json:"values"`
	Settings json.RawMessage      `json:"settings"`
}

func (p *Pipeline[T]) handleExtract(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := p.decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, err := specbuilder.Extract(p.build(), collection.Of(records))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	resp, err := p.respond(ex)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

type replayRequest struct {
	Records  json.RawMessage `json:"records"`
	Settings json.RawMessage `json:"settings"`
}

func (p *Pipeline[T]) handleReplay(c *gin.Context) {
	var req replayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	records, err := p.decode(req.Records)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	settings, err := settingscodec.Decode(req.Settings)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ex, err := specbuilder.ExtractWithSettings(p.build(), collection.Of(records), settings)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	resp, err := p.respond(ex)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (p *Pipeline[T]) respond(ex *extractor.Extractor[T]) (extractResponse, error) {
	names, err := ex.FeatureNames()
	if err != nil {
		return extractResponse{}, err
	}
	values, err := extractor.FeatureValues(ex, p.proto)
	if err != nil {
		return extractResponse{}, err
	}
	settings, err := ex.FeatureSettings()
	if err != nil {
		return extractResponse{}, err
	}
	encoded, err := settingscodec.Encode(settings)
	if err != nil {
		return extractResponse{}, err
	}
	return extractResponse{Names: names, Values: values.Items(), Settings: encoded}, nil
}
