package epub

import "testing"

func TestParseNCX(t *testing.T) {
	toc, err := parseNCX([]byte(tocNCX))
	if err != nil {
		t.Fatal(err)
	}
	if len(toc) != 2 {
		t.Fatalf("roots = %d, want 2", len(toc))
	}
	if toc[0].Href != "ch1.xhtml" || toc[1].Href != "ch2.xhtml" {
		t.Errorf("hrefs = %q, %q", toc[0].Href, toc[1].Href)
	}
	if toc[0].Children[0].Href != "ch1.xhtml#sec1" {
		t.Errorf("child href = %q", toc[0].Children[0].Href)
	}
}

func TestParseNCXMalformed(t *testing.T) {
	if _, err := parseNCX([]byte("<ncx><navMap>")); err == nil {
		t.Fatal("expected an error for truncated XML")
	}
}

func TestTocTitleMap(t *testing.T) {
	toc, err := parseNCX([]byte(tocNCX))
	if err != nil {
		t.Fatal(err)
	}

	m := tocTitleMap(toc)
	if m["ch1.xhtml"] != "Opening Moves" {
		t.Errorf("ch1 title = %q, want the first navPoint targeting the file", m["ch1.xhtml"])
	}
	if m["ch2.xhtml"] != "Endgame" {
		t.Errorf("ch2 title = %q", m["ch2.xhtml"])
	}
}

func TestTitleOrDefault(t *testing.T) {
	if got := titleOrDefault("  "); got != "Untitled" {
		t.Errorf("blank title = %q, want Untitled", got)
	}
	if got := titleOrDefault(" Endgame "); got != "Endgame" {
		t.Errorf("title = %q", got)
	}
}
