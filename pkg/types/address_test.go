package types

import (
	"reflect"
	"testing"
)

func TestAddressSnapshotMissingRequired(t *testing.T) {
	addr := AddressSnapshot{FullName: "Rahim", City: "Dhaka", Country: " "}
	got := addr.MissingRequired()
	want := []string{"phone", "address_line_1", "country"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v got %v", want, got)
	}

	complete := AddressSnapshot{FullName: "Rahim", Phone: "017", AddressLine1: "House 1", City: "Dhaka", Country: "Bangladesh"}
	if missing := complete.MissingRequired(); len(missing) != 0 {
		t.Fatalf("expected no missing fields, got %v", missing)
	}
}

func TestAddressSnapshotLines(t *testing.T) {
	state := "Dhaka Division"
	addr := AddressSnapshot{FullName: "Rahim", Phone: "017", AddressLine1: "House 1", City: "Dhaka", State: &state, Country: "Bangladesh"}
	lines := addr.Lines()
	if lines[2] != "Dhaka, Dhaka Division" {
		t.Fatalf("unexpected city line %q", lines[2])
	}
	if lines[len(lines)-1] != "017" {
		t.Fatalf("expected phone last, got %q", lines[len(lines)-1])
	}
}

func TestJSONMapClone(t *testing.T) {
	src := JSONMap{"refund_id": "r1"}
	cp := src.Clone()
	cp["approved_amount"] = "800"
	if _, ok := src["approved_amount"]; ok {
		t.Fatal("clone must not alias the source map")
	}
}
