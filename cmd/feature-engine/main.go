// Command feature-engine runs a small demo extraction over in-memory
// sample records, then serves the same spec over HTTP. Wiring style
// (initRedis-like env-driven config, gin router, logged startup) follows
// src/main.go; the progress bar over the demo dataset follows
// pipeline/1_DATA_MINER/internal/app/processor.go's mpb usage.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"quantatomai/feature-engine/arena"
	"quantatomai/feature-engine/auditlog"
	"quantatomai/feature-engine/builder"
	"quantatomai/feature-engine/builtin"
	"quantatomai/feature-engine/collection"
	"quantatomai/feature-engine/eventing"
	"quantatomai/feature-engine/extractor"
	"quantatomai/feature-engine/groupconfig"
	"quantatomai/feature-engine/httpapi"
	"quantatomai/feature-engine/multispec"
	"quantatomai/feature-engine/optional"
	"quantatomai/feature-engine/settingscodec"
	"quantatomai/feature-engine/settingsstore"
	"quantatomai/feature-engine/specbuilder"
	"quantatomai/feature-engine/telemetry"
)

// purchaseEvent is the demo record type: one customer purchase.
type purchaseEvent struct {
	Amount   float64                  `json:"amount"`
	Category string                   `json:"category"`
	Discount optional.Option[float64] `json:"-"`
}

// purchaseEventWire is purchaseEvent's JSON wire shape: Discount is a
// plain nullable float since optional.Option has no JSON codec of its own.
type purchaseEventWire struct {
	Amount   float64  `json:"amount"`
	Category string   `json:"category"`
	Discount *float64 `json:"discount"`
}

// decodePurchases parses a JSON array of purchaseEventWire into
// purchaseEvent, for use as httpapi.Pipeline's record decoder.
func decodePurchases(body []byte) ([]purchaseEvent, error) {
	var wire []purchaseEventWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	out := make([]purchaseEvent, len(wire))
	for i, w := range wire {
		discount := optional.None[float64]()
		if w.Discount != nil {
			discount = optional.Some(*w.Discount)
		}
		out[i] = purchaseEvent{Amount: w.Amount, Category: w.Category, Discount: discount}
	}
	return out, nil
}

func buildSpec() *specbuilder.Builder[purchaseEvent] {
	b := specbuilder.Of[purchaseEvent]()
	specbuilder.Required(b, func(e purchaseEvent) float64 { return e.Amount }, builtin.NewMinMaxScaler("amount_scaled"))
	specbuilder.Optional(b, func(e purchaseEvent) optional.Option[float64] { return e.Discount },
		optional.Some(0.0), builtin.NewStandardScaler("discount_standardized"))
	specbuilder.Required(b, func(e purchaseEvent) string { return e.Category }, builtin.NewOneHotEncoder("category"))
	return b
}

func samplePurchases() []purchaseEvent {
	return []purchaseEvent{
		{Amount: 19.99, Category: "books", Discount: optional.Some(1.0)},
		{Amount: 249.50, Category: "electronics", Discount: optional.None[float64]()},
		{Amount: 8.75, Category: "books", Discount: optional.Some(0.5)},
		{Amount: 1200.00, Category: "electronics", Discount: optional.None[float64]()},
		{Amount: 42.00, Category: "garden", Discount: optional.Some(2.0)},
	}
}

func runDemo(ctx context.Context, store settingsstore.Store, audit *auditlog.Logger) {
	runID := uuid.New()
	audit.Log(runID, auditlog.EventRunStarted, "demo extraction over sample purchases")

	ctx, endSpan := telemetry.Span(ctx, telemetry.PhasePrepare, len(samplePurchases()))
	defer endSpan()

	progress := mpb.New(mpb.WithWidth(60))
	records := samplePurchases()
	bar := progress.AddBar(int64(len(records)),
		mpb.PrependDecorators(decor.Name("extracting demo purchases: "), decor.Percentage(decor.WCSyncSpace)),
		mpb.AppendDecorators(decor.OnComplete(decor.AverageETA(decor.ET_STYLE_GO), "done!")),
	)

	ex, err := specbuilder.Extract(buildSpec(), collection.Of(records))
	if err != nil {
		audit.Log(runID, auditlog.EventRunFailed, err.Error())
		log.Fatalf("demo extraction failed: %v", err)
	}
	for range records {
		time.Sleep(10 * time.Millisecond)
		bar.Increment()
	}
	progress.Wait()

	names, err := ex.FeatureNames()
	if err != nil {
		audit.Log(runID, auditlog.EventRunFailed, err.Error())
		log.Fatalf("feature names failed: %v", err)
	}
	log.Printf("demo feature names: %v", names)

	settings, err := ex.FeatureSettings()
	if err != nil {
		log.Fatalf("feature settings failed: %v", err)
	}
	data, err := settingscodec.Encode(settings)
	if err != nil {
		log.Fatalf("encode settings failed: %v", err)
	}
	if err := store.Save(ctx, "demo-purchases", data); err != nil {
		log.Printf("warning: could not persist demo settings: %v", err)
	}

	audit.Log(runID, auditlog.EventRunCompleted, "demo extraction complete")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		dim, err := ex.FeatureDimension()
		if err != nil {
			log.Printf("warning: could not resolve feature dimension for eventing: %v", err)
			return
		}
		publisher := eventing.NewPublisher(strings.Split(brokers, ","), "feature-engine.runs")
		defer publisher.Close()
		notification := eventing.Notification{
			RunID:     runID,
			Event:     string(auditlog.EventRunCompleted),
			Dimension: dim,
			Timestamp: time.Now(),
		}
		if err := publisher.Publish(ctx, notification); err != nil {
			log.Printf("warning: could not publish run notification: %v", err)
		}
	}
}

// groupMappingDoc assigns the demo spec's two numeric transformers to the
// "numeric" group and its categorical transformer to "categorical"
// (spec.md §4.8 "Group mapping"), as a CUE document validated by
// groupconfig.
const groupMappingDoc = `
groups: ["numeric", "categorical"]
assignments: {
	amount_scaled:          "numeric"
	discount_standardized:  "numeric"
	category:               "categorical"
}
`

// runGroupedDemo routes the demo spec's declared transformers into
// "numeric" and "categorical" output groups via a single shared extraction
// (spec.md §3 "Multi-spec & multi-extractor"), logging each group's feature
// names and vectors separately.
func runGroupedDemo() {
	cfg, err := groupconfig.Parse(groupMappingDoc)
	if err != nil {
		log.Printf("warning: group mapping config invalid, skipping grouped demo: %v", err)
		return
	}

	fs, err := buildSpec().Build()
	if err != nil {
		log.Printf("warning: could not build spec for grouped demo: %v", err)
		return
	}
	ms, err := multispec.New(fs, cfg.GroupFunc("categorical"))
	if err != nil {
		log.Printf("warning: could not route grouped demo: %v", err)
		return
	}

	records := samplePurchases()
	ex := extractor.New(fs, collection.Of(records))
	pool := arena.New()

	me, err := multispec.NewMultiExtractor[purchaseEvent, []float64](ex, ms)
	if err != nil {
		log.Printf("warning: could not build multi-extractor: %v", err)
		return
	}

	for _, g := range ms.Groups() {
		names, err := me.FeatureNames(g)
		if err != nil {
			log.Printf("warning: group %q names failed: %v", g, err)
			continue
		}
		values, err := me.FeatureValues(g, builder.NewDenseFromArena(pool))
		if err != nil {
			log.Printf("warning: group %q values failed: %v", g, err)
			continue
		}
		log.Printf("group %q feature names: %v", g, names)
		for _, v := range values.Items() {
			log.Printf("group %q vector: %v", g, v)
		}
	}
}

func main() {
	bboltPath := os.Getenv("FEATURE_ENGINE_SETTINGS_DB")
	if bboltPath == "" {
		bboltPath = "feature-engine-settings.db"
	}
	store, err := settingsstore.NewBboltStore(bboltPath)
	if err != nil {
		log.Fatalf("failed to open settings store: %v", err)
	}
	defer store.Close()
	breaker := settingsstore.NewCircuitBreaker(store, 5, 30*time.Second)

	audit := auditlog.New(1000)
	defer audit.Close()

	runDemo(context.Background(), breaker, audit)
	runGroupedDemo()

	proto := builder.NewNamedMap()
	pipeline := httpapi.NewPipeline(decodePurchases, buildSpec, proto)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("feature-engine demo API starting on :%s", port)
	if err := pipeline.Router().Run(":" + port); err != nil {
		log.Fatalf("failed to run router: %v", err)
	}
}
