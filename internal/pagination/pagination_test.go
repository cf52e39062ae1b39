package pagination

import (
	"reflect"
	"testing"
)

func TestTotalPages(t *testing.T) {
	cases := []struct {
		total, perPage, want int
	}{
		{23, 5, 5},
		{25, 5, 5},
		{26, 5, 6},
		{0, 5, 1}, // empty list still renders one page
		{4, 5, 1},
		{10, 0, 1},
	}
	for _, tc := range cases {
		if got := TotalPages(tc.total, tc.perPage); got != tc.want {
			t.Fatalf("TotalPages(%d,%d) = %d, want %d", tc.total, tc.perPage, got, tc.want)
		}
	}
}

func TestPaginate(t *testing.T) {
	list := make([]int, 23)
	for i := range list {
		list[i] = i + 1
	}

	p := Paginate(list, 1, 5)
	if !reflect.DeepEqual(p.Items, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("page 1: %v", p.Items)
	}
	if p.First != 0 || p.Last != 5 {
		t.Fatalf("page 1 bounds: %d..%d", p.First, p.Last)
	}

	p = Paginate(list, 5, 5)
	if !reflect.DeepEqual(p.Items, []int{21, 22, 23}) {
		t.Fatalf("last page must hold the 3 remaining items: %v", p.Items)
	}
	if p.First != 20 || p.Last != 23 {
		t.Fatalf("last page bounds: %d..%d", p.First, p.Last)
	}

	p = Paginate(list, 99, 5)
	if p.First != 20 {
		t.Fatalf("out-of-range page must clamp, got first=%d", p.First)
	}

	p = Paginate([]int{}, 1, 5)
	if len(p.Items) != 0 || p.First != 0 || p.Last != 0 {
		t.Fatalf("empty list: %+v", p)
	}
}

func TestWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 10, []int{1, 2, Ellipsis, 10}},
		{5, 10, []int{1, Ellipsis, 4, 5, 6, Ellipsis, 10}},
		{10, 10, []int{1, Ellipsis, 9, 10}},
		{2, 4, []int{1, 2, 3, 4}},
		{3, 4, []int{1, 2, 3, 4}},
		{2, 3, []int{1, 2, 3}},
	}
	for _, tc := range cases {
		if got := Window(tc.current, tc.total); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Window(%d,%d) = %v, want %v", tc.current, tc.total, got, tc.want)
		}
	}
}

func TestPerPage(t *testing.T) {
	cases := []struct {
		height, want int
	}{
		{1030, 7},
		{0, 5},      // clamps up
		{10000, 10}, // clamps down
		{1200, 8},
	}
	for _, tc := range cases {
		if got := PerPage(tc.height, 5, 10); got != tc.want {
			t.Fatalf("PerPage(%d) = %d, want %d", tc.height, got, tc.want)
		}
	}
}
