package batch_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"mercator-hq/copycheck/internal/checkertest"
	"mercator-hq/copycheck/pkg/batch"
	"mercator-hq/copycheck/pkg/checker"
	"mercator-hq/copycheck/pkg/detect"
	"mercator-hq/copycheck/pkg/history"
	"mercator-hq/copycheck/pkg/prompt"
	"mercator-hq/copycheck/pkg/rules"
	"mercator-hq/copycheck/pkg/telemetry/logging"
	"mercator-hq/copycheck/pkg/verdict"
)

const ruleName = "商品コピーチェック"

type ruleMap map[string]*rules.Rule

func (m ruleMap) Rule(name string) (*rules.Rule, error) {
	if r, ok := m[name]; ok {
		return r, nil
	}
	return nil, &rules.NotFoundError{Name: name}
}

func testRules() ruleMap {
	return ruleMap{ruleName: {
		Name: ruleName,
		Body: "# 商品コピーチェック\n結論: OK または NG を出力してください。",
		References: map[string]rules.Reference{
			"最安":   {Keyword: "最安", Document: "最安表記は根拠が必要。"},
			"No.1": {Keyword: "No.1", Document: "No.1表記は調査概要の併記が必要。"},
		},
	}}
}

type recorder struct {
	mu      sync.Mutex
	rows    map[string]int
	batches []string
}

func (r *recorder) RecordRow(_, conclusion string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = map[string]int{}
	}
	r.rows[conclusion]++
}

func (r *recorder) RecordBatch(trigger, status string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, trigger+"/"+status)
}

func newProcessor(fake *checkertest.Fake, opts batch.Options) *batch.Processor {
	opts.Spec = batch.TextSpec{IDColumn: "商品コード"}
	return batch.NewProcessor(testRules(), detect.New(detect.Loose, nil), fake, opts)
}

func row(code, copy string) batch.Row {
	return batch.Row{{Column: "商品コード", Value: code}, {Column: "コピー", Value: copy}}
}

func TestProcess_Outcomes(t *testing.T) {
	fake := checkertest.NewFake().
		Reply("業界最安", "検出: 最安\n結論: NG\n根拠なし").
		Reply("曖昧", "判断できません").
		Fail("壊れ", &checker.RequestError{Kind: checker.KindStatus, StatusCode: 500, Message: "upstream failed"})

	p := newProcessor(fake, batch.Options{})
	rows := []batch.Row{
		row("A-1", "毎日の健康に"),
		row("A-2", "業界最安のサプリ"),
		row("", ""),
		row("A-4", ""),
		row("A-5", "壊れたデータ"),
		row("A-6", "曖昧な表現"),
	}

	outcomes, err := p.Process(context.Background(), rows, ruleName)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(outcomes) != len(rows) {
		t.Fatalf("len(outcomes) = %d, want %d", len(outcomes), len(rows))
	}

	want := []verdict.Conclusion{verdict.OK, verdict.NG, verdict.Skipped, verdict.NoData, verdict.Error, verdict.Unknown}
	for i, o := range outcomes {
		if o.Index != i {
			t.Errorf("outcomes[%d].Index = %d", i, o.Index)
		}
		if o.Conclusion != want[i] {
			t.Errorf("outcomes[%d].Conclusion = %s, want %s", i, o.Conclusion, want[i])
		}
	}

	if outcomes[2].Result != batch.SkippedMessage {
		t.Errorf("skipped result = %q", outcomes[2].Result)
	}
	if outcomes[3].Result != batch.NoDataMessage {
		t.Errorf("no data result = %q", outcomes[3].Result)
	}
	if !strings.HasPrefix(outcomes[4].Result, "エラー: ") || !strings.Contains(outcomes[4].Result, "upstream failed") {
		t.Errorf("error result = %q", outcomes[4].Result)
	}
	if got := outcomes[1].Keywords; len(got) != 1 || got[0] != "最安" {
		t.Errorf("keywords = %v, want [最安]", got)
	}
	if outcomes[0].Usage.Input != 10 || outcomes[0].Usage.Output != 5 {
		t.Errorf("usage = %+v", outcomes[0].Usage)
	}

	if n := len(fake.Calls()); n != 4 {
		t.Errorf("checker calls = %d, want 4 (blank and id-only rows skip the checker)", n)
	}
}

func TestProcess_DynamicPrompt(t *testing.T) {
	fake := checkertest.NewFake()
	p := newProcessor(fake, batch.Options{})

	_, err := p.Process(context.Background(), []batch.Row{row("A-1", "業界最安"), row("A-2", "やさしい")}, ruleName)
	if err != nil {
		t.Fatal(err)
	}

	for _, call := range fake.Calls() {
		switch {
		case strings.Contains(call.Content, "業界最安"):
			if !strings.Contains(call.Instructions, "### 最安") || strings.Contains(call.Instructions, "### No.1") {
				t.Errorf("instructions for detected row:\n%s", call.Instructions)
			}
			if call.Content != "商品コード: A-1\nコピー: 業界最安" {
				t.Errorf("content = %q", call.Content)
			}
		default:
			if !strings.Contains(call.Instructions, prompt.FallbackNote) {
				t.Errorf("instructions without keywords lack fallback note:\n%s", call.Instructions)
			}
		}
	}
}

func TestProcess_ConcurrentKeepsOrder(t *testing.T) {
	fake := checkertest.NewFake()
	for i := 0; i < 50; i++ {
		if i%3 == 0 {
			fake.Reply(fmt.Sprintf("item-%02d", i), "結論: NG")
		}
	}
	var finished atomic.Int64
	p := newProcessor(fake, batch.Options{
		Workers:          8,
		ProgressInterval: 10,
		OnRow:            func(done, total int) { finished.Add(1) },
	})

	rows := make([]batch.Row, 50)
	for i := range rows {
		rows[i] = row(fmt.Sprintf("A-%02d", i), fmt.Sprintf("item-%02d", i))
	}

	outcomes, err := p.Process(context.Background(), rows, ruleName)
	if err != nil {
		t.Fatal(err)
	}
	for i, o := range outcomes {
		want := verdict.OK
		if i%3 == 0 {
			want = verdict.NG
		}
		if o.Index != i || o.Conclusion != want {
			t.Errorf("outcomes[%d] = {Index:%d Conclusion:%s}, want {%d %s}", i, o.Index, o.Conclusion, i, want)
		}
	}
	if finished.Load() != 50 {
		t.Errorf("OnRow calls = %d, want 50", finished.Load())
	}
}

func TestProcess_CanceledContext(t *testing.T) {
	fake := checkertest.NewFake()
	rec := &recorder{}
	p := newProcessor(fake, batch.Options{Metrics: rec})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := p.Process(ctx, []batch.Row{row("A-1", "a"), row("", ""), row("A-3", "c")}, ruleName)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("len(outcomes) = %d, want 3", len(outcomes))
	}
	if outcomes[0].Conclusion != verdict.Error || outcomes[2].Conclusion != verdict.Error {
		t.Errorf("conclusions = %s, %s, want ERROR", outcomes[0].Conclusion, outcomes[2].Conclusion)
	}
	if outcomes[1].Conclusion != verdict.Skipped {
		t.Errorf("blank row conclusion = %s, want SKIPPED", outcomes[1].Conclusion)
	}
	if n := len(fake.Calls()); n != 0 {
		t.Errorf("checker calls = %d, want 0", n)
	}
	if len(rec.batches) != 1 || rec.batches[0] != "cli/canceled" {
		t.Errorf("batches = %v, want [cli/canceled]", rec.batches)
	}
}

func TestProcess_UnknownRule(t *testing.T) {
	p := newProcessor(checkertest.NewFake(), batch.Options{})

	outcomes, err := p.Process(context.Background(), []batch.Row{row("A-1", "a")}, "missing")
	var nf *rules.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("error = %v, want *rules.NotFoundError", err)
	}
	if outcomes != nil {
		t.Errorf("outcomes = %v, want nil", outcomes)
	}
}

func TestProcess_RecordsHistoryAndMetrics(t *testing.T) {
	store := history.NewMemoryStore()
	rec := &recorder{}
	fake := checkertest.NewFake().Reply("最安", "結論: NG")
	p := newProcessor(fake, batch.Options{History: store, Metrics: rec})

	ctx := logging.WithRunID(context.Background(), "run-42")
	ctx = logging.WithSource(ctx, "inbox/products.xlsx")
	ctx = batch.WithTrigger(ctx, batch.TriggerWatch)

	if _, err := p.Process(ctx, []batch.Row{row("A-1", "最安"), row("A-2", "ok"), row("", "")}, ruleName); err != nil {
		t.Fatal(err)
	}

	run, err := store.GetRun(context.Background(), "run-42")
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if run.Rule != ruleName || run.Source != "inbox/products.xlsx" || run.Trigger != batch.TriggerWatch {
		t.Errorf("run = %+v", run)
	}
	if run.Total != 3 || run.Counts[verdict.NG] != 1 || run.Counts[verdict.OK] != 1 || run.Counts[verdict.Skipped] != 1 {
		t.Errorf("Total = %d, Counts = %v", run.Total, run.Counts)
	}
	if len(run.Rows) != 3 || run.Rows[0].Keywords[0] != "最安" {
		t.Errorf("rows = %+v", run.Rows)
	}

	if rec.rows["NG"] != 1 || rec.rows["OK"] != 1 || rec.rows["SKIPPED"] != 1 {
		t.Errorf("row metrics = %v", rec.rows)
	}
	if len(rec.batches) != 1 || rec.batches[0] != "watch/completed" {
		t.Errorf("batch metrics = %v", rec.batches)
	}
}

type failingStore struct{ history.Store }

func (failingStore) SaveRun(context.Context, *history.Run) error {
	return errors.New("disk full")
}

func TestProcess_HistoryFailureDoesNotChangeResults(t *testing.T) {
	p := newProcessor(checkertest.NewFake(), batch.Options{History: failingStore{}})

	outcomes, err := p.Process(context.Background(), []batch.Row{row("A-1", "a")}, ruleName)
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	if outcomes[0].Conclusion != verdict.OK {
		t.Errorf("conclusion = %s, want OK", outcomes[0].Conclusion)
	}
}

func TestCheckText(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		p := newProcessor(checkertest.NewFake(), batch.Options{})
		if _, err := p.CheckText(context.Background(), ruleName, "  \n", prompt.ModeFull); !errors.Is(err, batch.ErrEmptyText) {
			t.Errorf("error = %v, want ErrEmptyText", err)
		}
	})

	t.Run("full mode sends every reference", func(t *testing.T) {
		fake := checkertest.NewFake().Reply("No.1", "結論: NG\n調査概要なし")
		store := history.NewMemoryStore()
		p := newProcessor(fake, batch.Options{History: store})

		res, err := p.CheckText(context.Background(), ruleName, "満足度No.1", prompt.ModeFull)
		if err != nil {
			t.Fatalf("CheckText() error = %v", err)
		}
		if res.Conclusion != verdict.NG || res.Mode != "full" || res.Model != "fake" {
			t.Errorf("result = %+v", res)
		}
		if len(res.Keywords) != 1 || res.Keywords[0] != "No.1" {
			t.Errorf("keywords = %v", res.Keywords)
		}
		calls := fake.Calls()
		if len(calls) != 1 || !strings.Contains(calls[0].Instructions, "### 最安") || !strings.Contains(calls[0].Instructions, "### No.1") {
			t.Errorf("full instructions missing references: %+v", calls)
		}
		if store.Size() != 1 {
			t.Errorf("history size = %d, want 1", store.Size())
		}
	})

	t.Run("checker failure is returned", func(t *testing.T) {
		fake := checkertest.NewFake().Fail("x", &checker.RequestError{Kind: checker.KindAuth, StatusCode: 401, Message: "bad key"})
		p := newProcessor(fake, batch.Options{})

		_, err := p.CheckText(context.Background(), ruleName, "x", prompt.ModeDynamic)
		var re *checker.RequestError
		if !errors.As(err, &re) || re.Kind != checker.KindAuth {
			t.Errorf("error = %v, want auth *checker.RequestError", err)
		}
	})

	t.Run("unknown rule", func(t *testing.T) {
		p := newProcessor(checkertest.NewFake(), batch.Options{})
		var nf *rules.NotFoundError
		if _, err := p.CheckText(context.Background(), "missing", "x", prompt.ModeDynamic); !errors.As(err, &nf) {
			t.Errorf("error = %v, want *rules.NotFoundError", err)
		}
	})
}
