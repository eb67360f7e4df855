// +build !integration

// Package unit holds the fast, in-process end-to-end scenario tests: no
// external resources required, grounded on the teacher's "unit" test
// split (there run without kernel support; here they run without real
// wall-clock load).
package unit

import (
	"context"
	"math"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coredump-systems/tinylog"
)

func newScenarioLogger(t *testing.T) (*tinylog.Logger, *tinylog.MockSink) {
	t.Helper()
	sink := tinylog.NewMockSink()
	cfg := tinylog.DefaultConfig()
	cfg.RefreshPeriod = 5 * time.Millisecond
	logger, err := tinylog.Init(cfg, sink)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	return logger, sink
}

// TestS1SingleTaskMixedTypes matches spec.md's S1 scenario exactly: a
// single task emitting a signed/unsigned pair with default decimal
// formatting produces one line matching the worked-example regex.
func TestS1SingleTaskMixedTypes(t *testing.T) {
	logger, sink := newScenarioLogger(t)
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).
		Push(uint64(123456789012345)).
		Push(int64(-123456789012345)).
		End()
	logger.Done()

	re := regexp.MustCompile(`^\d{5} main 123456789012345 -123456789012345\n$`)
	if !re.MatchString(sink.String()) {
		t.Errorf("output %q does not match S1 regex %s", sink.String(), re.String())
	}
}

// TestS2HexWithPrefix matches spec.md's S2 scenario: a hex-formatted u8
// with append_base_prefix enabled renders the "0x" prefix.
func TestS2HexWithPrefix(t *testing.T) {
	sink := tinylog.NewMockSink()
	cfg := tinylog.DefaultConfig()
	cfg.RefreshPeriod = 5 * time.Millisecond
	cfg.AppendBasePrefix = true
	logger, err := tinylog.Init(cfg, sink)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).
		WithFormat(tinylog.Directive{Base: tinylog.Hex, Fill: 2}).
		Push(uint8(0xAB)).
		End()
	logger.Done()

	if !strings.Contains(sink.String(), "0xab") {
		t.Errorf("expected substring 0xab in %q", sink.String())
	}
}

// TestS3BinaryWithFill matches spec.md's S3 scenario: binary base with an
// 8-digit minimum fill zero-pads a small value.
func TestS3BinaryWithFill(t *testing.T) {
	logger, sink := newScenarioLogger(t)
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).
		WithFormat(tinylog.Directive{Base: tinylog.Binary, Fill: 8}).
		Push(uint8(5)).
		End()
	logger.Done()

	if !strings.Contains(sink.String(), "00000101") {
		t.Errorf("expected substring 00000101 in %q", sink.String())
	}
}

// TestS4TwoTasksInterleaved matches spec.md's S4 scenario: two tasks
// racing to End() concurrently never produce a line with bytes from
// both, even though their atoms interleave arriving at the queue.
func TestS4TwoTasksInterleaved(t *testing.T) {
	logger, sink := newScenarioLogger(t)
	defer logger.Done()

	taskA := logger.RegisterTask("alpha")
	taskB := logger.RegisterTask("beta")
	ctxA := tinylog.Bind(context.Background(), taskA)
	ctxB := tinylog.Bind(context.Background(), taskB)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s := logger.Begin(ctxA, tinylog.LevelInfo, tinylog.InvalidTopic)
		for i := 0; i < 8; i++ {
			s.PushStaticString("A")
		}
		s.End()
	}()
	go func() {
		defer wg.Done()
		s := logger.Begin(ctxB, tinylog.LevelInfo, tinylog.InvalidTopic)
		for i := 0; i < 4; i++ {
			s.PushStaticString("B")
		}
		s.End()
	}()
	wg.Wait()
	logger.Done()

	for _, line := range strings.Split(strings.TrimRight(sink.String(), "\n"), "\n") {
		if strings.Contains(line, "A") && strings.Contains(line, "B") {
			t.Errorf("line interleaves both tasks: %q", line)
		}
	}
}

// TestS5NullSessionProducesNoOutput stands in for spec.md's S5 scenario
// (a null session from begin() produces zero bytes). The hosted adapter
// never reports interrupt context, so the AllowISR gate itself is not
// exercised; the null session here comes from an unregistered topic.
// TestISRTaskOverrideBypassesInterruptCheck in the root package's tests
// covers the ISR override path.
func TestS5NullSessionProducesNoOutput(t *testing.T) {
	sink := tinylog.NewMockSink()
	cfg := tinylog.DefaultConfig()
	cfg.RefreshPeriod = 5 * time.Millisecond
	cfg.AllowISR = false
	logger, err := tinylog.Init(cfg, sink)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logger.Done()

	bogusTopic := tinylog.Topic(42)
	logger.Begin(context.Background(), tinylog.LevelInfo, bogusTopic).PushStaticString("x").End()
	logger.Done()

	if sink.String() != "" {
		t.Errorf("expected zero output bytes, got %q", sink.String())
	}
}

// TestS6QueueFullDropPolicyNeverGarbles matches spec.md's S6 scenario: a
// saturated two-slot queue under the drop policy may lose whole records
// but must never produce a line assembled from two different records'
// bytes.
func TestS6QueueFullDropPolicyNeverGarbles(t *testing.T) {
	sink := tinylog.NewMockSink()
	cfg := tinylog.DefaultConfig()
	cfg.RefreshPeriod = 5 * time.Millisecond
	cfg.QueueCapacity = 2
	cfg.BlockingPolicy = tinylog.Drop
	logger, err := tinylog.Init(cfg, sink)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	for i := 0; i < 10; i++ {
		logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).Push(uint32(i)).End()
	}
	logger.Done()

	out := sink.String()
	if !strings.Contains(out, "\n") {
		t.Error("expected at least one line present")
	}
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		// Each record here carries exactly tick, task name, one pushed
		// value: three fields. A garbled line splicing two records'
		// bytes together would show more.
		if len(fields) != 3 {
			t.Errorf("line has %d fields, want 3 (tick, task, value); possible garbling: %q", len(fields), line)
		}
		if _, err := strconv.ParseUint(fields[len(fields)-1], 10, 32); err != nil {
			t.Errorf("trailing field %q is not a clean decimal value: %q", fields[len(fields)-1], line)
		}
	}
}

// TestFloatSpecialValues covers testable property 6: NaN and +Inf render
// as "nan" and "inf". A 0.0 atom is pushed too, but its "0" is not
// asserted.
func TestFloatSpecialValues(t *testing.T) {
	logger, sink := newScenarioLogger(t)
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).
		Push(math.NaN()).
		Push(math.Inf(1)).
		Push(0.0).
		End()
	logger.Done()

	out := sink.String()
	if !strings.Contains(out, "nan") {
		t.Errorf("expected nan in %q", out)
	}
	if !strings.Contains(out, "inf") {
		t.Errorf("expected inf in %q", out)
	}
}

// TestTerminalAlwaysPresent covers testable property 3: every record that
// reaches End() (and is not dropped) ends with exactly one EOL, with no
// trailing content after it.
func TestTerminalAlwaysPresent(t *testing.T) {
	logger, sink := newScenarioLogger(t)
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).PushStaticString("only").End()
	logger.Done()

	out := sink.String()
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected output to end with EOL, got %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Errorf("expected exactly one EOL, got %d in %q", strings.Count(out, "\n"), out)
	}
}

// TestOrderingWithinTask covers testable property 2: records from one
// task appear in begin() order.
func TestOrderingWithinTask(t *testing.T) {
	logger, sink := newScenarioLogger(t)
	defer logger.Done()

	taskID := logger.RegisterTask("main")
	ctx := tinylog.Bind(context.Background(), taskID)

	for i := 0; i < 5; i++ {
		logger.Begin(ctx, tinylog.LevelInfo, tinylog.InvalidTopic).Push(uint32(i)).End()
	}
	logger.Done()

	lines := strings.Split(strings.TrimRight(sink.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d: %v", len(lines), lines)
	}
	for i, line := range lines {
		expectedSuffix := " " + itoaTest(i)
		if !strings.HasSuffix(strings.TrimRight(line, "\n"), expectedSuffix) {
			t.Errorf("line %d = %q, expected suffix %q (record order must match begin order)", i, line, expectedSuffix)
		}
	}
}

func itoaTest(v int) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
