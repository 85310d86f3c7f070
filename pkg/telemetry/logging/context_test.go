package logging

import (
	"context"
	"testing"
)

func TestContextKeys(t *testing.T) {
	ctx := context.Background()
	ctx = WithRunID(ctx, "run-123")
	ctx = WithRule(ctx, "rule-a")
	ctx = WithRow(ctx, 42)
	ctx = WithSource(ctx, "s3://bucket/input/a.xlsx")

	if got := GetRunID(ctx); got != "run-123" {
		t.Errorf("GetRunID() = %q, want run-123", got)
	}
	if got := GetRule(ctx); got != "rule-a" {
		t.Errorf("GetRule() = %q, want rule-a", got)
	}
	if got := GetRow(ctx); got != 42 {
		t.Errorf("GetRow() = %d, want 42", got)
	}
	if got := GetSource(ctx); got != "s3://bucket/input/a.xlsx" {
		t.Errorf("GetSource() = %q", got)
	}
}

func TestContextKeys_Empty(t *testing.T) {
	ctx := context.Background()

	if GetRunID(ctx) != "" || GetRule(ctx) != "" || GetSource(ctx) != "" || GetRow(ctx) != 0 {
		t.Error("expected zero values from empty context")
	}
	if attrs := contextAttrs(ctx); len(attrs) != 0 {
		t.Errorf("contextAttrs() = %v, want none", attrs)
	}
}

func TestContextAttrs_Order(t *testing.T) {
	ctx := WithRow(WithRunID(context.Background(), "r"), 3)

	attrs := contextAttrs(ctx)
	if len(attrs) != 2 {
		t.Fatalf("contextAttrs() returned %d attrs, want 2", len(attrs))
	}
	if attrs[0].Key != "run_id" || attrs[1].Key != "row" {
		t.Errorf("unexpected keys %q, %q", attrs[0].Key, attrs[1].Key)
	}
}

func TestContextOverwrite(t *testing.T) {
	ctx := WithRule(context.Background(), "first")
	ctx = WithRule(ctx, "second")

	if got := GetRule(ctx); got != "second" {
		t.Errorf("GetRule() = %q, want second", got)
	}
}
