package profile

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeTolerantUint(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want uint32
	}{
		{name: "number", raw: `7`, want: 7},
		{name: "string", raw: `"7"`, want: 7},
		{name: "true", raw: `true`, want: 1},
		{name: "false", raw: `false`, want: 0},
		{name: "max", raw: `4294967295`, want: 4294967295},
		{name: "string zero", raw: `"0"`, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeTolerantUint(json.RawMessage(tc.raw))
			if err != nil {
				t.Fatalf("decode %s: %v", tc.raw, err)
			}
			if got != tc.want {
				t.Fatalf("decode %s: got %d, want %d", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDecodeTolerantUint_Rejects(t *testing.T) {
	for _, raw := range []string{`"abc"`, `-1`, `1.5`, `null`, `"4294967296"`, `4294967296`, `[1]`, `{"n":1}`, `" 7"`} {
		if _, err := decodeTolerantUint(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected %s to be rejected", raw)
		} else if raw != `null` && !errors.Is(err, ErrNotNumeric) {
			t.Fatalf("expected ErrNotNumeric for %s, got %v", raw, err)
		}
	}
}

func TestDecodeStrictUint_RejectsStringsAndBools(t *testing.T) {
	for _, raw := range []string{`"7"`, `true`, `-3`} {
		if _, err := decodeStrictUint(json.RawMessage(raw)); err == nil {
			t.Fatalf("expected strict decode to reject %s", raw)
		}
	}
	got, err := decodeStrictUint(json.RawMessage(`42`))
	if err != nil || got != 42 {
		t.Fatalf("strict decode 42: got %d, %v", got, err)
	}
}
