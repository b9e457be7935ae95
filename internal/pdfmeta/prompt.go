// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pdfmeta

import (
	"bytes"
	"text/template"
)

// metadataPromptTmpl instructs the model to return the bibliographic
// fields of the attached PDF as one JSON object.
var metadataPromptTmpl = template.Must(template.New("metadata").Parse(`You are a bibliographic metadata extraction system. Read the attached PDF and return its bibliographic data.

Return a JSON object with these fields (use an empty string when a field is unknown):
- title: the document title
- authors: an array of author names in the order printed
- publishedDate: publication date as YYYY, YYYY-MM or YYYY-MM-DD
- publisher: publisher or issuing organization
- journalName: journal or proceedings name
- volume, issue, pages: as printed (pages like "10-20")
- doi: the DOI without a resolver prefix
- isbn: the ISBN if present
- description: a one or two sentence summary
- referenceType: one of "website", "article", "journal", "book", "report"
{{- if .SiteName}}

The PDF was downloaded from {{.SiteName}}.
{{- end}}

Do not include any text outside the JSON object.

Example response:
{"title": "Attention Is All You Need", "authors": ["Ashish Vaswani", "Noam Shazeer"], "publishedDate": "2017-06-12", "publisher": "", "journalName": "Advances in Neural Information Processing Systems", "volume": "30", "issue": "", "pages": "5998-6008", "doi": "", "isbn": "", "description": "Introduces the Transformer architecture.", "referenceType": "article"}
`))

// renderPrompt executes the metadata prompt for one document.
func renderPrompt(siteName string) (string, error) {
	var buf bytes.Buffer
	if err := metadataPromptTmpl.Execute(&buf, struct{ SiteName string }{SiteName: siteName}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
