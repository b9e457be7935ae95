// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package citation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pdiddy/research-vault/pkg/types"
)

func TestToCSLJournal(t *testing.T) {
	item := ToCSL(journalRef())

	if item.ID != "doe2021" {
		t.Errorf("ID = %q, want %q", item.ID, "doe2021")
	}
	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want %q", item.Type, "article-journal")
	}
	if item.ContainerTitle != "J" || item.Volume != "3" || item.Issue != "2" || item.Page != "10-20" {
		t.Errorf("container fields = %+v", item)
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2", len(item.Author))
	}
	if item.Author[0].Family != "Doe" || item.Author[0].Given != "Jane" {
		t.Errorf("Author[0] = %+v, want Doe/Jane", item.Author[0])
	}
	if item.Issued == nil || len(item.Issued.DateParts[0]) != 3 || item.Issued.DateParts[0][1] != 5 {
		t.Errorf("Issued = %+v, want 2021-05-01 date parts", item.Issued)
	}
	if item.Accessed != nil {
		t.Errorf("Accessed should be nil without an access date, got %+v", item.Accessed)
	}
	if item.DOI != "10.1/xyz" {
		t.Errorf("DOI = %q, want %q", item.DOI, "10.1/xyz")
	}
}

func TestToCSLPrecisionAndNames(t *testing.T) {
	item := ToCSL(types.Reference{
		Title:         "論文",
		Authors:       types.AuthorsFromNames("田中 太郎", "Doe, Jane", "Plato"),
		PublishedDate: "2020-03",
		ReferenceType: types.ReferenceReport,
	})

	if item.Type != "report" {
		t.Errorf("Type = %q, want report", item.Type)
	}
	if item.ID != "ref2020" {
		t.Errorf("ID = %q, want ref2020 for a non-Latin surname", item.ID)
	}
	if item.Author[0].Literal != "田中 太郎" {
		t.Errorf("Author[0] = %+v, want literal Japanese name", item.Author[0])
	}
	if item.Author[1].Family != "Doe" || item.Author[1].Given != "Jane" {
		t.Errorf("Author[1] = %+v, want Doe/Jane", item.Author[1])
	}
	if item.Author[2].Literal != "Plato" {
		t.Errorf("Author[2] = %+v, want literal Plato", item.Author[2])
	}
	if got := item.Issued.DateParts[0]; len(got) != 2 || got[0] != 2020 || got[1] != 3 {
		t.Errorf("Issued = %v, want [2020 3]", got)
	}
}

func TestWriteCSL(t *testing.T) {
	refs := []types.Reference{journalRef(), journalRef(), webRef()}

	var buf bytes.Buffer
	if err := WriteCSL(refs, &buf); err != nil {
		t.Fatalf("WriteCSL: %v", err)
	}
	s := buf.String()

	for _, want := range []string{
		"id: doe2021\n",
		"id: doe2021a\n",
		"id: doe\n",
		"type: webpage",
		"container-title: J",
		"DOI: 10.1/xyz",
		"URL: https://example.com/a",
	} {
		if !strings.Contains(s, want) {
			t.Errorf("CSL output missing %q:\n%s", want, s)
		}
	}
}
