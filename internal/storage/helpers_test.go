package storage

import (
	"reflect"
	"testing"
)

// ok fails the test if an err is not nil.
func ok(tb testing.TB, err error) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("unexpected error: %s", err.Error())
	}
}

// equals fails the test if got is not equal to exp.
func equals(tb testing.TB, got, exp interface{}) {
	tb.Helper()
	if !reflect.DeepEqual(got, exp) {
		tb.Fatalf("\n\texp: %#v\n\tgot: %#v", exp, got)
	}
}

// notEquals fails the test if got equals exp.
func notEquals(tb testing.TB, got, exp interface{}) {
	tb.Helper()
	if reflect.DeepEqual(got, exp) {
		tb.Fatalf("\n\tunexpected: %#v", got)
	}
}
