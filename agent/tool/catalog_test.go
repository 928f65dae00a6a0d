package tool

import (
	"testing"
)

func TestInfosFollowCatalogOrder(t *testing.T) {
	t.Parallel()

	got := Infos()
	if len(got) != 12 {
		t.Fatalf("expected 12 tool infos, got %d", len(got))
	}
	for i, info := range got {
		if info.Name != Names[i] {
			t.Fatalf("infos[%d] = %s, want %s", i, info.Name, Names[i])
		}
		if info.Desc == "" {
			t.Fatalf("tool %s has no description", info.Name)
		}
		if info.ParamsOneOf == nil {
			t.Fatalf("tool %s has no parameter schema", info.Name)
		}
	}
}

func TestMissingText(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"check_in_date": "Check in date is missing. Could you please provide it?",
		"guest_name":    "Guest name is missing. Could you please provide it?",
		"date":          "Date is missing. Could you please provide it?",
	}
	for field, want := range tests {
		if got := MissingText(field); got != want {
			t.Fatalf("MissingText(%q) = %q, want %q", field, got, want)
		}
	}
}

func TestArgs(t *testing.T) {
	t.Parallel()

	args, err := ParseArgs(`{"room_number": 101, "ticket_id": "#7", "name": "  Alice "}`)
	if err != nil {
		t.Fatalf("ParseArgs() error = %v", err)
	}
	if got := args.String("room_number"); got != "101" {
		t.Fatalf("room_number = %q, want 101", got)
	}
	if got := args.String("name"); got != "Alice" {
		t.Fatalf("name = %q, want Alice", got)
	}
	if id, ok, err := args.Int("ticket_id"); err != nil || !ok || id != 7 {
		t.Fatalf("ticket_id = %d, %v, %v", id, ok, err)
	}
	if _, ok, err := args.Int("absent"); ok || err != nil {
		t.Fatalf("absent ticket = %v, %v", ok, err)
	}
	for _, bad := range []any{"seven", -3, "-3", 1e20, -1e20} {
		if _, ok, err := (Args{"ticket_id": bad}).Int("ticket_id"); err == nil || ok {
			t.Fatalf("Int(%v) = ok %v, err %v, want error", bad, ok, err)
		}
	}
	if got := (Args{"n": 1e20}).String("n"); got != "100000000000000000000" {
		t.Fatalf("String(1e20) = %q", got)
	}

	empty, err := ParseArgs("")
	if err != nil || len(empty) != 0 {
		t.Fatalf("ParseArgs(\"\") = %v, %v", empty, err)
	}
	if _, err := ParseArgs("{not json"); err == nil {
		t.Fatal("expected decode error")
	}
}
