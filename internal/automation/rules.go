package automation

import (
	"regexp"
	"strings"
)

var finishedStatuses = []string{"Finalizada", "Fabricada"}

// isFinished reports whether the portal considers the plate done.
func isFinished(status string) bool {
	for _, s := range finishedStatuses {
		if strings.Contains(status, s) {
			return true
		}
	}
	return false
}

// PhotoDecision says whether a row's attachments page must be inspected and,
// when not, what HasPhotos should be. Only paid rows still in production need
// a visit; finished rows count as having photos.
func PhotoDecision(status string, paid bool) (inspect bool, hasPhotos bool) {
	if isFinished(status) {
		return false, true
	}
	if paid {
		return true, false
	}
	return false, false
}

// PhotosFromContent reads an attachments page. Explicit "no files" markers
// win over view/download links; anything else counts as no photos.
func PhotosFromContent(html string) bool {
	if strings.Contains(html, "Nenhum arquivo") || strings.Contains(html, "Sem anexos") {
		return false
	}
	return strings.Contains(html, "Visualizar") || strings.Contains(html, "Download")
}

var cpfPattern = regexp.MustCompile(`\d{3}\.\d{3}\.\d{3}-\d{2}`)

// FindTaxID returns the first formatted CPF in text.
func FindTaxID(text string) string {
	return cpfPattern.FindString(text)
}

// minPipelineColumns is the column count of a complete portal row.
const minPipelineColumns = 12

const (
	colID     = 1
	colPlate  = 2
	colOwner  = 7
	colStatus = 10
	colPaid   = 11
)

// RowFromCells builds a row from the cell texts; short rows are skipped.
func RowFromCells(cells []string, paid bool) (PipelineRow, bool) {
	if len(cells) < minPipelineColumns {
		return PipelineRow{}, false
	}
	return PipelineRow{
		ExternalID: strings.TrimSpace(cells[colID]),
		Plate:      strings.TrimSpace(cells[colPlate]),
		OwnerName:  strings.TrimSpace(cells[colOwner]),
		Status:     strings.TrimSpace(cells[colStatus]),
		IsPaid:     paid,
	}, true
}
