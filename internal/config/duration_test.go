package config

import (
	"encoding/json"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDurationYAMLForms(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{`"10s"`, 10 * time.Second},
		{`"2m"`, 2 * time.Minute},
		{`"1h30m"`, 90 * time.Minute},
		{`15`, 15 * time.Second},
		{`0.5`, 500 * time.Millisecond},
	}
	for _, tc := range cases {
		var d Duration
		if err := yaml.Unmarshal([]byte(tc.in), &d); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.in, err)
		}
		if d.Std() != tc.want {
			t.Fatalf("unmarshal %s: expected %s, got %s", tc.in, tc.want, d.Std())
		}
	}
}

func TestDurationJSONForms(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte(`"45s"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Std() != 45*time.Second {
		t.Fatalf("expected 45s, got %s", d.Std())
	}
	if err := json.Unmarshal([]byte(`3`), &d); err != nil {
		t.Fatalf("unmarshal bare number: %v", err)
	}
	if d.Std() != 3*time.Second {
		t.Fatalf("expected bare number as seconds, got %s", d.Std())
	}
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	if err := yaml.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Fatalf("expected error for unparseable duration")
	}
	if err := json.Unmarshal([]byte(`"later"`), &d); err == nil {
		t.Fatalf("expected error for unparseable json duration")
	}
}

func TestDurationMarshalRoundtrip(t *testing.T) {
	d := Duration(90 * time.Second)
	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"1m30s"` {
		t.Fatalf("expected \"1m30s\", got %s", data)
	}
	var back Duration
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("roundtrip: %v", err)
	}
	if back != d {
		t.Fatalf("roundtrip mismatch: %s vs %s", back, d)
	}
}
