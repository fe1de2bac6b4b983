// Package require holds small test assertion helpers in the style HQTS's
// teacher repo uses (github.com/marcopolo/simnet/internal/require):
// plain functions taking *testing.T, no fluent builder, no external
// dependency.
package require

import (
	"reflect"
	"testing"
)

func NoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
}

func Error(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
}

func Equal[T any](t *testing.T, want, got T) {
	t.Helper()
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("mismatch:\n  want: %#v\n  got:  %#v", want, got)
	}
}

func NotEqual[T any](t *testing.T, want, got T) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		t.Fatalf("expected values to differ, both were: %#v", want)
	}
}

func True(t *testing.T, v bool, msgAndArgs ...any) {
	t.Helper()
	if !v {
		t.Fatalf("expected true: %v", msgAndArgs)
	}
}

func False(t *testing.T, v bool, msgAndArgs ...any) {
	t.Helper()
	if v {
		t.Fatalf("expected false: %v", msgAndArgs)
	}
}

// InDelta asserts that want and got are within delta of each other.
func InDelta(t *testing.T, want, got, delta float64) {
	t.Helper()
	diff := want - got
	if diff < 0 {
		diff = -diff
	}
	if diff > delta {
		t.Fatalf("expected %v to be within %v of %v (diff %v)", got, delta, want, diff)
	}
}

func Nil(t *testing.T, v any) {
	t.Helper()
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		if rv.IsNil() {
			return
		}
	}
	t.Fatalf("expected nil, got: %#v", v)
}
