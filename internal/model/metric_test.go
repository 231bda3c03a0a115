package model

import (
	"encoding/json"
	"testing"
)

func TestTierText(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
		ok   bool
	}{
		{"Tier 1", Tier1, true},
		{"tier3", Tier3, true},
		{"4", Tier4, true},
		{"Unknown", TierUnknown, true},
		{"Tier 5", 0, false},
		{"gold", 0, false},
	}
	for _, tt := range tests {
		var got Tier
		err := got.UnmarshalText([]byte(tt.in))
		if (err == nil) != tt.ok {
			t.Errorf("UnmarshalText(%q): unexpected error state %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("UnmarshalText(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestTierJSONRoundTrip(t *testing.T) {
	in := map[Tier]int{Tier1: 3, Tier4: 1}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"Tier 1":3,"Tier 4":1}` {
		t.Errorf("unexpected encoding %s", data)
	}
	var out map[Tier]int
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out[Tier1] != 3 || out[Tier4] != 1 {
		t.Errorf("round trip lost counts: %v", out)
	}
}
