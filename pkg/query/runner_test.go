package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/df07/go-collision-volumes/pkg/core"
	"github.com/df07/go-collision-volumes/pkg/volume"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

// levelLogger keeps error lines apart from the rest
type levelLogger struct {
	recordingLogger
	errors []string
}

func (l *levelLogger) Errorf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}

func sphereRow(n int) []Query {
	var queries []Query
	for i := 0; i < n; i++ {
		a := volume.NewSphere(core.NewVec3(float64(i)*3, 0, 0), 1)
		b := volume.NewSphere(core.NewVec3(float64(i)*3+1.5, 0, 0), 1)
		if i%2 == 1 {
			b.SetCenter(core.NewVec3(float64(i)*3, 5, 0))
		}
		queries = append(queries, Query{Name: fmt.Sprintf("pair-%d", i), Kind: Overlap, A: a, B: b})
	}
	return queries
}

func TestRunner_OrderedResults(t *testing.T) {
	queries := sphereRow(50)
	logger := &recordingLogger{}

	results, stats, err := NewRunner(queries, 4, logger).Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != len(queries) {
		t.Fatalf("Expected %d results, got %d", len(queries), len(results))
	}

	for i, r := range results {
		if r.Index != i || r.Name != queries[i].Name {
			t.Errorf("Result %d out of order: index %d, name %s", i, r.Index, r.Name)
		}
		if expected := i%2 == 0; r.Hit != expected {
			t.Errorf("Result %d: expected hit=%v, got %v", i, expected, r.Hit)
		}
	}

	if stats.Total != 50 || stats.Hits != 25 || stats.PerKind[Overlap] != 50 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if stats.Workers != 4 {
		t.Errorf("Expected 4 workers, got %d", stats.Workers)
	}
	if rate := stats.HitRate(); rate != 0.5 {
		t.Errorf("Expected hit rate 0.5, got %f", rate)
	}
	if len(logger.lines) == 0 || !strings.Contains(logger.lines[len(logger.lines)-1], "25 hits") {
		t.Errorf("Expected a summary log line, got %v", logger.lines)
	}
}

func TestRunner_CountsErrors(t *testing.T) {
	queries := []Query{
		{Name: "bad", Kind: Overlap, A: volume.NewSphere(core.Vec3{}, 1)},
		{Name: "good", Kind: Contains, A: volume.NewSphere(core.Vec3{}, 1)},
	}
	logger := &recordingLogger{}

	results, stats, err := NewRunner(queries, 1, logger).Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !errors.Is(results[0].Err, ErrMissingVolume) {
		t.Errorf("Expected ErrMissingVolume, got %v", results[0].Err)
	}
	if !results[1].Hit {
		t.Error("Expected the origin to be inside the sphere")
	}
	if stats.Errors != 1 || stats.Hits != 1 {
		t.Errorf("Expected 1 error and 1 hit, got %+v", stats)
	}

	found := false
	for _, line := range logger.lines {
		if strings.Contains(line, "bad") {
			found = true
		}
	}
	if !found {
		t.Error("Expected the failing query to be logged")
	}
}

func TestRunner_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, stats, err := NewRunner(sphereRow(10), 2, nil).Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(results) != 0 || stats.Total != 0 {
		t.Errorf("Expected no results from a cancelled run, got %d", len(results))
	}
}

func TestRunner_Empty(t *testing.T) {
	results, stats, err := NewRunner(nil, 0, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(results) != 0 || stats.Total != 0 {
		t.Errorf("Expected nothing, got %d results", len(results))
	}
	if stats.Workers < 1 {
		t.Errorf("Expected at least one worker, got %d", stats.Workers)
	}
}

func TestRunner_ReportsErrorsThroughErrorLogger(t *testing.T) {
	queries := []Query{
		{Name: "bad", Kind: Cull, A: volume.NewSphere(core.Vec3{}, 1), B: volume.NewSphere(core.Vec3{}, 1)},
		{Name: "good", Kind: Contains, A: volume.NewSphere(core.Vec3{}, 1)},
	}
	logger := &levelLogger{}

	if _, _, err := NewRunner(queries, 1, logger).Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(logger.errors) != 1 || !strings.Contains(logger.errors[0], "bad") {
		t.Errorf("Expected one error line for the failing query, got %v", logger.errors)
	}
	for _, line := range logger.lines {
		if strings.Contains(line, "bad") {
			t.Errorf("Expected the failure only on the error channel, got %q", line)
		}
	}
}
