package domain

import (
	"reflect"
	"testing"
)

func TestPageRequest(t *testing.T) {
	tests := []struct {
		page    PageRequest
		count   int64
		offset  int
		inRange bool
		hasNext bool
	}{
		{PageRequest{Page: 1, Size: 5}, 0, 0, true, false},
		{PageRequest{Page: 1, Size: 5}, 5, 0, true, false},
		{PageRequest{Page: 1, Size: 5}, 6, 0, true, true},
		{PageRequest{Page: 2, Size: 5}, 6, 5, true, false},
		{PageRequest{Page: 3, Size: 5}, 10, 10, false, false},
		{PageRequest{Page: 0, Size: 5}, 0, 0, true, false},
	}
	for _, tt := range tests {
		if got := tt.page.Offset(); got != tt.offset {
			t.Errorf("%+v Offset() = %d, want %d", tt.page, got, tt.offset)
		}
		if got := tt.page.InRange(tt.count); got != tt.inRange {
			t.Errorf("%+v InRange(%d) = %v, want %v", tt.page, tt.count, got, tt.inRange)
		}
		if got := tt.page.HasNext(tt.count); got != tt.hasNext {
			t.Errorf("%+v HasNext(%d) = %v, want %v", tt.page, tt.count, got, tt.hasNext)
		}
	}
}

func TestSearchTerms(t *testing.T) {
	got := SearchTerms(" go,rust  zig,,\tc ")
	want := []string{"go", "rust", "zig", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("SearchTerms = %q, want %q", got, want)
	}
	if got := SearchTerms(" , "); len(got) != 0 {
		t.Fatalf("SearchTerms of separators = %q", got)
	}
}
