package shared

import "testing"

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)
	if p.Page != 1 || p.PerPage != 20 {
		t.Fatalf("defaults = page %d per_page %d", p.Page, p.PerPage)
	}
	if p.TotalPages != 3 {
		t.Fatalf("total pages = %d, want 3", p.TotalPages)
	}
}

func TestPaginationOffset(t *testing.T) {
	p := NewPagination(3, 25, 100)
	if got := p.Offset(); got != 50 {
		t.Fatalf("offset = %d, want 50", got)
	}
	if p.TotalPages != 4 {
		t.Fatalf("total pages = %d, want 4", p.TotalPages)
	}
}

func TestPaginationEmptySet(t *testing.T) {
	p := NewPagination(1, 20, 0)
	if p.TotalPages != 0 {
		t.Fatalf("total pages = %d, want 0", p.TotalPages)
	}
}
