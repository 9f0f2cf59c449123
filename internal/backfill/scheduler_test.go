package backfill

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealscope/enrich-cli/internal/config"
	"github.com/mealscope/enrich-cli/internal/model"
)

// fakeEmbedder returns a fixed vector, optionally failing for chosen texts.
type fakeEmbedder struct {
	mu     sync.Mutex
	calls  int
	failOn map[string]bool
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failOn[text]
	f.mu.Unlock()
	if fail {
		return nil, errors.New("invalid input")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// recordingWriter counts writes per item id.
type recordingWriter struct {
	mu     sync.Mutex
	writes map[string]int
	failOn map[string]bool
}

func newRecordingWriter() *recordingWriter {
	return &recordingWriter{writes: map[string]int{}}
}

func (w *recordingWriter) UpsertEmbedding(ctx context.Context, itemID string, vec []float32) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.failOn[itemID] {
		return errors.New("write failed")
	}
	w.writes[itemID]++
	return nil
}

func missingItems(n int) []model.CatalogItem {
	items := make([]model.CatalogItem, n)
	for i := range items {
		items[i] = model.CatalogItem{
			ID:   fmt.Sprintf("food-%04d", i),
			Name: fmt.Sprintf("食品%04d", i),
		}
	}
	return items
}

func fastConfig() config.BackfillConfig {
	return config.BackfillConfig{MaxProcess: 100, BatchSize: 10, PaceMillis: 1}
}

func TestRunHonorsMaxProcessCap(t *testing.T) {
	writer := newRecordingWriter()
	s := NewScheduler(&fakeEmbedder{}, writer, fastConfig())

	progress := s.Run(context.Background(), missingItems(250), 0)

	assert.Equal(t, 250, progress.TotalEligible)
	assert.Equal(t, 100, progress.Attempted)
	assert.Equal(t, 100, progress.Succeeded)
	assert.Zero(t, progress.Failed)
	assert.Equal(t, 150, progress.Remaining)
	assert.NotEmpty(t, progress.ContinueHint)
	assert.NotEmpty(t, progress.RunID)
	assert.Len(t, writer.writes, 100)
}

func TestRunMaxProcessOverride(t *testing.T) {
	writer := newRecordingWriter()
	s := NewScheduler(&fakeEmbedder{}, writer, fastConfig())

	progress := s.Run(context.Background(), missingItems(30), 12)

	assert.Equal(t, 12, progress.Attempted)
	assert.Equal(t, 18, progress.Remaining)
}

func TestRunOverrideClampedToCeiling(t *testing.T) {
	writer := newRecordingWriter()
	s := NewScheduler(&fakeEmbedder{}, writer, fastConfig())

	progress := s.Run(context.Background(), missingItems(600), 9999)

	assert.Equal(t, MaxProcessCeiling, progress.Attempted)
	assert.Equal(t, 100, progress.Remaining)
}

func TestRunIsolatesPerItemFailures(t *testing.T) {
	embedder := &fakeEmbedder{failOn: map[string]bool{
		"食品0003": true,
		"食品0007": true,
	}}
	writer := newRecordingWriter()
	s := NewScheduler(embedder, writer, fastConfig())

	progress := s.Run(context.Background(), missingItems(10), 0)

	assert.Equal(t, 10, progress.Attempted)
	assert.Equal(t, 8, progress.Succeeded)
	assert.Equal(t, 2, progress.Failed)
	assert.Equal(t, progress.Attempted, progress.Succeeded+progress.Failed)
	assert.Zero(t, progress.Remaining)
	assert.Empty(t, progress.ContinueHint)

	// Failed items must not have been written.
	assert.NotContains(t, writer.writes, "food-0003")
	assert.NotContains(t, writer.writes, "food-0007")
	assert.Len(t, writer.writes, 8)
}

func TestRunCountsWriteFailures(t *testing.T) {
	writer := newRecordingWriter()
	writer.failOn = map[string]bool{"food-0001": true}
	s := NewScheduler(&fakeEmbedder{}, writer, fastConfig())

	progress := s.Run(context.Background(), missingItems(4), 0)

	assert.Equal(t, 3, progress.Succeeded)
	assert.Equal(t, 1, progress.Failed)
}

func TestRunWritesEachItemExactlyOnce(t *testing.T) {
	writer := newRecordingWriter()
	s := NewScheduler(&fakeEmbedder{}, writer, fastConfig())

	s.Run(context.Background(), missingItems(37), 0)

	require.Len(t, writer.writes, 37)
	for id, n := range writer.writes {
		assert.Equal(t, 1, n, "item %s written %d times", id, n)
	}
}

func TestRunEmptyWorkSet(t *testing.T) {
	writer := newRecordingWriter()
	s := NewScheduler(&fakeEmbedder{}, writer, fastConfig())

	progress := s.Run(context.Background(), nil, 0)

	assert.Zero(t, progress.TotalEligible)
	assert.Zero(t, progress.Attempted)
	assert.Zero(t, progress.Remaining)
	assert.NotEmpty(t, progress.RunID)
	assert.True(t, progress.Complete())
}

func TestClampMaxProcess(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{-1, DefaultMaxProcess},
		{0, DefaultMaxProcess},
		{1, 1},
		{100, 100},
		{500, 500},
		{501, MaxProcessCeiling},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, clampMaxProcess(tt.in), "clampMaxProcess(%d)", tt.in)
	}
}
