package inifile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ini")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("write temp ini: %v", err)
	}
	return path
}

func TestParseBasic(t *testing.T) {
	path := writeTemp(t, "[service]\nname=foo\nport=8080\n")
	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Sections) != 1 || f.Sections[0].Name != "service" {
		t.Fatalf("sections = %+v", f.Sections)
	}
	vals := f.Lookup("service", "name")
	if len(vals) != 1 || vals[0].IsNumber || vals[0].Str != "foo" {
		t.Errorf("name lookup = %+v", vals)
	}
	port := f.Lookup("service", "port")
	if len(port) != 1 || !port[0].IsNumber || port[0].Number != 8080 {
		t.Errorf("port lookup = %+v", port)
	}
}

func TestParseDuplicateKeysPreserved(t *testing.T) {
	path := writeTemp(t, "[s]\ntag=a\ntag=b\ntag=c\n")
	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	tags := f.Lookup("s", "tag")
	if len(tags) != 3 {
		t.Fatalf("expected 3 duplicate tag values, got %d: %+v", len(tags), tags)
	}
	for i, want := range []string{"a", "b", "c"} {
		if tags[i].Str != want {
			t.Errorf("tag[%d] = %q, want %q", i, tags[i].Str, want)
		}
	}
}

func TestParseCommentsAndBlankLinesIgnored(t *testing.T) {
	path := writeTemp(t, "[s]\n# a comment\n\nkey=value\n")
	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Sections[0].Entries) != 1 {
		t.Fatalf("entries = %+v, want exactly one (comment and blank lines skipped)", f.Sections[0].Entries)
	}
}

func TestParseLinesBeforeFirstSectionIgnored(t *testing.T) {
	path := writeTemp(t, "key=value\n[s]\nkey2=value2\n")
	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Sections) != 1 || len(f.Sections[0].Entries) != 1 {
		t.Fatalf("sections = %+v", f.Sections)
	}
}

func TestParseMultipleSections(t *testing.T) {
	path := writeTemp(t, "[a]\nx=1\n[b]\ny=2\n")
	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(f.Sections) != 2 || f.Sections[0].Name != "a" || f.Sections[1].Name != "b" {
		t.Fatalf("sections = %+v", f.Sections)
	}
}

func TestEmptyValueIsNumericZero(t *testing.T) {
	path := writeTemp(t, "[s]\nkey=\n")
	f, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	vals := f.Lookup("s", "key")
	if len(vals) != 1 || !vals[0].IsNumber || vals[0].Number != 0 {
		t.Errorf("empty value = %+v, want numeric 0", vals)
	}
}
