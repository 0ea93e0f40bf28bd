package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf_FollowsWrapChain(t *testing.T) {
	base := New(KindConflict, "application already exists")
	wrapped := fmt.Errorf("apply: %w", base)

	if got := KindOf(wrapped); got != KindConflict {
		t.Fatalf("expected CONFLICT, got %s", got)
	}
	if got := MessageOf(wrapped); got != "application already exists" {
		t.Fatalf("unexpected message %q", got)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected errors.Is to match sentinel")
	}
}

func TestKindOf_UnclassifiedIsInternal(t *testing.T) {
	err := errors.New("pq: connection reset")
	if got := KindOf(err); got != KindInternal {
		t.Fatalf("expected INTERNAL, got %s", got)
	}
	if got := MessageOf(err); got != "internal error" {
		t.Fatalf("internal errors must not leak, got %q", got)
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindInvalidState, "cannot store", cause)
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause in chain")
	}
	if err.Error() != "cannot store: disk full" {
		t.Fatalf("unexpected Error() %q", err.Error())
	}
}
