package jsonutil

import (
	"strings"
	"testing"
)

type payload struct {
	Bucket string `json:"intent_bucket"`
	Score  int    `json:"propensity_score"`
}

func TestStripFences(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"  {\"a\": 1}  ", `{"a": 1}`},
		{"```{\"a\": 1}```", `{"a": 1}`},
	}
	for _, tc := range cases {
		if got := StripFences(tc.in); got != tc.want {
			t.Fatalf("StripFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestExtractPlainJSON(t *testing.T) {
	var p payload
	if err := Extract(`{"intent_bucket": "commercial", "propensity_score": 85}`, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Bucket != "commercial" || p.Score != 85 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestExtractFencedJSON(t *testing.T) {
	raw := "```json\n{\"intent_bucket\": \"educational\", \"propensity_score\": 10}\n```"
	var p payload
	if err := Extract(raw, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Bucket != "educational" {
		t.Fatalf("unexpected bucket: %q", p.Bucket)
	}
}

func TestExtractQuotedJSONString(t *testing.T) {
	// Some models emit the whole object as one quoted JSON string.
	raw := `"{\"intent_bucket\": \"commercial\", \"propensity_score\": 70}"`
	var p payload
	if err := Extract(raw, &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Bucket != "commercial" || p.Score != 70 {
		t.Fatalf("unexpected payload: %+v", p)
	}
}

func TestExtractProseFails(t *testing.T) {
	var p payload
	if err := Extract("the intent here is clearly commercial", &p); err == nil {
		t.Fatal("prose must not parse")
	}
}

func TestMarshalNoEscape(t *testing.T) {
	out, err := MarshalNoEscape(map[string]string{"link": "https://a.example/?x=1&y=<2>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(out)
	if !strings.Contains(s, `?x=1&y=<2>`) {
		t.Fatalf("angle brackets and ampersands must stay literal: %s", s)
	}
	if strings.HasSuffix(s, "\n") {
		t.Fatal("trailing newline must be trimmed")
	}
}
