package cache

import (
	"os"
	"path/filepath"
	"testing"

	"relint/internal/diag"
	"relint/internal/scan"
	"relint/internal/source"
)

func TestKeyChangesWithInputs(t *testing.T) {
	content := []byte("const x = 1;\n")
	base := Key(content, source.FormatCode, "cfg", []string{"no-var"})
	tests := []struct {
		name string
		got  Digest
	}{
		{"content", Key([]byte("const x = 2;\n"), source.FormatCode, "cfg", []string{"no-var"})},
		{"format", Key(content, source.FormatMarkdown, "cfg", []string{"no-var"})},
		{"config", Key(content, source.FormatCode, "cfg2", []string{"no-var"})},
		{"rules", Key(content, source.FormatCode, "cfg", []string{"no-var", "no-console"})},
	}
	for _, tc := range tests {
		if tc.got == base {
			t.Errorf("%s change did not change the key", tc.name)
		}
	}
	if again := Key(content, source.FormatCode, "cfg", []string{"no-var"}); again != base {
		t.Error("identical inputs produced different keys")
	}
}

func TestEntryRoundTrip(t *testing.T) {
	issues := []diag.Issue{
		{
			Rule:     "no-console",
			Severity: diag.SevWarning,
			Message:  "Unexpected console.log statement.",
			Primary:  source.Span{File: 3, Start: 10, End: 21},
		},
		{
			Rule:     "no-debugger",
			Severity: diag.SevError,
			Message:  "Unexpected 'debugger' statement.",
			Primary:  source.Span{File: 3, Start: 40, End: 48},
		},
	}
	entry := Pack(issues)
	got := entry.Unpack(7)
	if len(got) != len(issues) {
		t.Fatalf("unpacked %d issues, want %d", len(got), len(issues))
	}
	for i, is := range got {
		want := issues[i]
		if is.Rule != want.Rule || is.Severity != want.Severity || is.Message != want.Message {
			t.Errorf("issue %d = %+v, want %+v", i, is, want)
		}
		if is.Primary.File != 7 {
			t.Errorf("issue %d file = %d, want rebound to 7", i, is.Primary.File)
		}
		if is.Primary.Start != want.Primary.Start || is.Primary.End != want.Primary.End {
			t.Errorf("issue %d span = %v, want offsets of %v", i, is.Primary, want.Primary)
		}
		if is.Fix != nil {
			t.Errorf("issue %d carries a fix through the cache", i)
		}
	}
}

func TestDiskPutGet(t *testing.T) {
	c, err := OpenAt(filepath.Join(t.TempDir(), "relint"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	key := HashBytes([]byte("content"))
	entry := Pack([]diag.Issue{{
		Rule:     "no-var",
		Severity: diag.SevWarning,
		Message:  "Unexpected var, use let or const instead.",
		Primary:  source.Span{Start: 0, End: 3},
	}})
	if err := c.Put(key, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, hit, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("stored entry missed")
	}
	if len(got.Issues) != 1 || got.Issues[0].Rule != "no-var" {
		t.Errorf("round-tripped entry = %+v", got)
	}
}

func TestDiskMiss(t *testing.T) {
	c, err := OpenAt(filepath.Join(t.TempDir(), "relint"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	_, hit, err := c.Get(HashBytes([]byte("never stored")))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("unexpected hit for absent key")
	}
}

func TestDiskSchemaMismatchIsMiss(t *testing.T) {
	c, err := OpenAt(filepath.Join(t.TempDir(), "relint"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	key := HashBytes([]byte("content"))
	entry := Pack(nil)
	entry.Schema = schemaVersion + 1
	if err := c.Put(key, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_, hit, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("entry with foreign schema treated as a hit")
	}
}

func TestDiskCorruptPayload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "relint")
	c, err := OpenAt(dir)
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	key := HashBytes([]byte("content"))
	if err := c.Put(key, Pack(nil)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.WriteFile(c.pathFor(key), []byte("not msgpack"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := c.Get(key); err == nil {
		t.Error("corrupt payload returned no error")
	}
}

func TestNilDiskIsAlwaysMiss(t *testing.T) {
	var c *Disk
	if err := c.Put(Digest{}, Pack(nil)); err != nil {
		t.Errorf("nil Put: %v", err)
	}
	_, hit, err := c.Get(Digest{})
	if err != nil || hit {
		t.Errorf("nil Get = (%v, %v)", hit, err)
	}
}

func TestDropAll(t *testing.T) {
	c, err := OpenAt(filepath.Join(t.TempDir(), "relint"))
	if err != nil {
		t.Fatalf("OpenAt: %v", err)
	}
	key := HashBytes([]byte("content"))
	if err := c.Put(key, Pack(nil)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	_, hit, err := c.Get(key)
	if err != nil {
		t.Fatalf("Get after drop: %v", err)
	}
	if hit {
		t.Error("entry survived DropAll")
	}
}

func TestIndexCache(t *testing.T) {
	ic, err := NewIndexCache(2)
	if err != nil {
		t.Fatalf("NewIndexCache: %v", err)
	}
	k1 := IndexKey{Content: HashBytes([]byte("a")), Format: source.FormatCode}
	k2 := IndexKey{Content: HashBytes([]byte("b")), Format: source.FormatCode}
	k3 := IndexKey{Content: HashBytes([]byte("c")), Format: source.FormatCode}
	ic.Put(k1, []scan.Zone{})
	ic.Put(k2, []scan.Zone{})
	if _, ok := ic.Get(k1); !ok {
		t.Error("k1 evicted early")
	}
	ic.Put(k3, []scan.Zone{})
	if _, ok := ic.Get(k2); ok {
		t.Error("k2 should be the evicted entry")
	}
	if _, ok := ic.Get(k1); !ok {
		t.Error("recently used k1 evicted")
	}

	var nilCache *IndexCache
	nilCache.Put(k1, []scan.Zone{})
	if _, ok := nilCache.Get(k1); ok {
		t.Error("nil cache returned a hit")
	}
}

func TestIndexCacheSeparatesFormats(t *testing.T) {
	ic, err := NewIndexCache(4)
	if err != nil {
		t.Fatalf("NewIndexCache: %v", err)
	}
	content := HashBytes([]byte("# title\n"))
	asCode := IndexKey{Content: content, Format: source.FormatCode}
	asMarkdown := IndexKey{Content: content, Format: source.FormatMarkdown}
	ic.Put(asCode, []scan.Zone{{Kind: scan.ZoneCode}})
	if _, ok := ic.Get(asMarkdown); ok {
		t.Error("markdown lookup hit a code partition for the same bytes")
	}
	ic.Put(asMarkdown, []scan.Zone{{Kind: scan.ZoneFencedCode}})
	got, ok := ic.Get(asCode)
	if !ok || len(got) != 1 || got[0].Kind != scan.ZoneCode {
		t.Errorf("code partition clobbered: %v (hit=%v)", got, ok)
	}
}
