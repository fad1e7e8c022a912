package models

import "testing"

func TestStringListValueAndScan(t *testing.T) {
	value, err := StringList{"a", "b"}.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != `["a","b"]` {
		t.Fatalf("value = %v, want JSON array", value)
	}

	var list StringList
	if err := list.Scan([]byte(`["x","y","z"]`)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(list) != 3 || list[0] != "x" || list[2] != "z" {
		t.Fatalf("scan = %v, want ordered [x y z]", list)
	}
}

func TestStringListNilValues(t *testing.T) {
	value, err := StringList(nil).Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}
	if value != "[]" {
		t.Fatalf("nil list value = %v, want []", value)
	}

	var list StringList
	if err := list.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("scan nil = %#v, want empty list", list)
	}

	if err := list.Scan("null"); err != nil {
		t.Fatalf("scan null: %v", err)
	}
	if list == nil {
		t.Fatal("scan null produced nil list")
	}
}

func TestStringListScanRejectsUnknownType(t *testing.T) {
	var list StringList
	if err := list.Scan(42); err == nil {
		t.Fatal("expected error scanning int")
	}
}
