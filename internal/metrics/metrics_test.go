package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/stats", "200"))

	RecordAPIRequest("GET", "/stats", "200", 5*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/stats", "200")))
}

func TestRecordCorpusMutation(t *testing.T) {
	added := testutil.ToFloat64(CorpusPostsAdded)
	dropped := testutil.ToFloat64(CorpusPostsDropped)

	RecordCorpusMutation(42, 5, 2)

	assert.Equal(t, 42.0, testutil.ToFloat64(CorpusPosts))
	assert.Equal(t, added+5, testutil.ToFloat64(CorpusPostsAdded))
	assert.Equal(t, dropped+2, testutil.ToFloat64(CorpusPostsDropped))
}

func TestRecordPersist(t *testing.T) {
	before := testutil.ToFloat64(CorpusPersistErrors)

	RecordPersist(time.Millisecond, nil)
	RecordPersist(time.Millisecond, errors.New("disk full"))

	assert.Equal(t, before+1, testutil.ToFloat64(CorpusPersistErrors))
}

func TestRecordIngestion(t *testing.T) {
	failures := testutil.ToFloat64(IngestionRuns.WithLabelValues("failure"))
	skipped := testutil.ToFloat64(IngestionRecords.WithLabelValues("skipped"))

	RecordIngestion(0, 0, 0, errors.New("timeout"))
	RecordIngestion(10, 3, 1, nil)

	assert.Equal(t, failures+1, testutil.ToFloat64(IngestionRuns.WithLabelValues("failure")))
	assert.Equal(t, skipped+3, testutil.ToFloat64(IngestionRecords.WithLabelValues("skipped")))
	assert.Greater(t, testutil.ToFloat64(IngestionLastSuccess), 0.0)
}

func TestRecordTraining(t *testing.T) {
	RecordTraining(17, nil)
	assert.Equal(t, 17.0, testutil.ToFloat64(TemplateLibrarySize))
}
