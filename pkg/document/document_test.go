package document

import (
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"object", `{"a": 1}`, false},
		{"empty object", `{}`, false},
		{"trailing whitespace", "{}\n\n", false},

		{"array", `[1, 2]`, true},
		{"string", `"x"`, true},
		{"null", `null`, true},
		{"malformed", `{"a": `, true},
		{"trailing data", `{} {}`, true},
		{"empty", ``, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if (err != nil) != tt.wantErr {
				t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseNormalizesNesting(t *testing.T) {
	obj, err := Parse([]byte(`{"nodes": [{"id": 1}, [2, 3]], "meta": {"k": "v"}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	nodes := obj.Array("nodes")
	if nodes.Len() != 2 {
		t.Fatalf("nodes.Len() = %d, want 2", nodes.Len())
	}
	first, ok := nodes.Object(0)
	if !ok {
		t.Fatalf("nodes[0] is %T, want Object", nodes.At(0))
	}
	if id, ok := first.Int("id"); !ok || id != 1 {
		t.Errorf("nodes[0].id = %d, %v", id, ok)
	}
	pair := nodes.Array(1)
	if pair.Len() != 2 {
		t.Fatalf("nodes[1] is %T, want a two-item Array", nodes.At(1))
	}
	if n, ok := pair.Int(1); !ok || n != 3 {
		t.Errorf("nodes[1][1] = %d, %v", n, ok)
	}
	if _, ok := obj.Object("meta"); !ok {
		t.Error("meta should be an Object")
	}
}

func TestReaders(t *testing.T) {
	obj, err := Parse([]byte(`{
		"name": "Lobby",
		"count": 12,
		"big": 9007199254740993,
		"ratio": 0.5,
		"flag": true,
		"flagText": "TRUE",
		"nothing": null,
		"list": ["a", "b"],
		"props": {"color": "red", "level": 3}
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := obj.String("name"); got != "Lobby" {
		t.Errorf("String(name) = %q", got)
	}
	if got := obj.String("count"); got != "12" {
		t.Errorf("String(count) = %q", got)
	}
	if got := obj.String("nothing"); got != "" {
		t.Errorf("String(nothing) = %q", got)
	}
	if got := obj.String("missing"); got != "" {
		t.Errorf("String(missing) = %q", got)
	}
	if got := obj.String("list"); got != "" {
		t.Errorf("String(list) = %q, want empty", got)
	}
	if got := obj.Text("list"); got != `["a","b"]` {
		t.Errorf("Text(list) = %q", got)
	}
	if got := obj.Text("big"); got != "9007199254740993" {
		t.Errorf("Text(big) = %q", got)
	}
	if got := obj.Text("nothing"); got != "" {
		t.Errorf("Text(nothing) = %q", got)
	}

	if !obj.Bool("flag") || !obj.Bool("flagText") {
		t.Error("Bool should read true and \"TRUE\"")
	}
	if obj.Bool("missing") || obj.Bool("name") {
		t.Error("Bool should default to false")
	}

	if n, ok := obj.Int("count"); !ok || n != 12 {
		t.Errorf("Int(count) = %d, %v", n, ok)
	}
	if _, ok := obj.Int("ratio"); ok {
		t.Error("Int(ratio) should fail")
	}
	if _, ok := obj.Int("nothing"); ok {
		t.Error("Int(nothing) should fail")
	}

	if !obj.Has("name") || obj.Has("nothing") || obj.Has("missing") {
		t.Error("Has should be true only for non-null values")
	}

	props := obj.StringMap("props")
	if props["color"] != "red" || props["level"] != "3" {
		t.Errorf("StringMap(props) = %v", props)
	}
	if obj.StringMap("missing") != nil {
		t.Error("StringMap(missing) should be nil")
	}
}

func TestWriters(t *testing.T) {
	obj := Object{}
	obj.PutString("empty", "")
	obj.PutString("name", "Lobby")
	obj.PutInt("id", 7)
	obj.PutBool("locked", false)
	obj.PutTimestamp("zero", time.Time{})
	obj.PutStringMap("none", nil)
	obj.PutStringMap("props", map[string]string{"b": "2", "a": "1"})

	if obj.Has("empty") || obj.Has("zero") || obj.Has("none") {
		t.Errorf("unset values should not be written: %v", obj.Keys())
	}

	data, err := Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{
  "id": 7,
  "locked": false,
  "name": "Lobby",
  "props": {
    "a": "1",
    "b": "2"
  }
}
`
	if string(data) != want {
		t.Errorf("Marshal =\n%s\nwant\n%s", data, want)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 45, 123_000_000, time.UTC)
	obj := Object{}
	obj.PutTimestamp("lastUpdate", ts)

	data, err := Marshal(obj)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := back.Timestamp("lastUpdate"); !got.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got, ts)
	}
	if !back.Timestamp("missing").IsZero() {
		t.Error("missing timestamp should be zero")
	}
}

func TestEnsureArray(t *testing.T) {
	obj := Object{}
	arr := obj.EnsureArray("edges")
	arr.Append(NewArray(1, 2))
	if again := obj.EnsureArray("edges"); again != arr || again.Len() != 1 {
		t.Error("EnsureArray should return the existing array")
	}

	obj.Put("scalar", "x")
	if obj.EnsureArray("scalar").Len() != 0 {
		t.Error("EnsureArray should replace a non-array value")
	}

	data, err := Marshal(Object{"empty": obj.EnsureArray("new")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"empty": []`) {
		t.Errorf("empty array should encode as []: %s", data)
	}
}

func TestNilArray(t *testing.T) {
	var obj Object
	if arr := obj.Array("missing"); arr.Len() != 0 {
		t.Error("nil array should have zero length")
	}
}
