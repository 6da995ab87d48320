package index

import (
	"strings"
	"testing"
)

func TestParseFileSkipsBlankLines(t *testing.T) {
	contents := []byte("{\"name\":\"foo\",\"vers\":\"1.0.0\",\"deps\":[],\"cksum\":\"abc\",\"features\":{},\"yanked\":false}\n\n")
	records, err := ParseFile(contents)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Name != "foo" {
		t.Errorf("Name = %q, want foo", records[0].Name)
	}
}

func TestEncodeFileRoundTrip(t *testing.T) {
	records := []Record{
		{Name: "foo", Vers: "1.0.0", Cksum: "abc", Features: map[string][]string{}},
		{Name: "foo", Vers: "1.1.0", Cksum: "def", Features: map[string][]string{}},
	}
	contents, err := EncodeFile(records)
	if err != nil {
		t.Fatalf("EncodeFile: %v", err)
	}
	if got := strings.Count(string(contents), "\n"); got != 2 {
		t.Fatalf("want 2 newline-terminated lines, got %d", got)
	}

	decoded, err := ParseFile(contents)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(decoded) != 2 || decoded[1].Vers != "1.1.0" {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
}

func TestFind(t *testing.T) {
	records := []Record{
		{Name: "foo", Vers: "1.0.0"},
		{Name: "foo", Vers: "2.0.0"},
	}
	if i := Find(records, "2.0.0"); i != 1 {
		t.Errorf("Find = %d, want 1", i)
	}
	if i := Find(records, "3.0.0"); i != -1 {
		t.Errorf("Find = %d, want -1", i)
	}
}
