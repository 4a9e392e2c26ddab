package eventing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewPublisherCloseWithoutUseIsClean(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "feature-engine.runs")
	assert.NoError(t, p.Close())
}

func TestNotificationCarriesRunMetadata(t *testing.T) {
	runID := uuid.New()
	n := Notification{RunID: runID, Event: "RUN_COMPLETED", Dimension: 4}
	assert.Equal(t, runID, n.RunID)
	assert.Equal(t, "RUN_COMPLETED", n.Event)
	assert.Equal(t, 4, n.Dimension)
}
