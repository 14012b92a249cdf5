package automation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoDecision(t *testing.T) {
	tests := []struct {
		name      string
		status    string
		paid      bool
		inspect   bool
		hasPhotos bool
	}{
		{name: "finished", status: "Finalizada", paid: true, inspect: false, hasPhotos: true},
		{name: "fabricated_unpaid", status: "Placa Fabricada", paid: false, inspect: false, hasPhotos: true},
		{name: "paid_in_progress", status: "Em análise", paid: true, inspect: true},
		{name: "unpaid_in_progress", status: "Em análise", paid: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inspect, hasPhotos := PhotoDecision(tt.status, tt.paid)
			assert.Equal(t, tt.inspect, inspect)
			assert.Equal(t, tt.hasPhotos, hasPhotos)
		})
	}
}

func TestPhotosFromContent(t *testing.T) {
	assert.False(t, PhotosFromContent("<div>Nenhum arquivo enviado</div><a>Download</a>"))
	assert.False(t, PhotosFromContent("Sem anexos"))
	assert.True(t, PhotosFromContent(`<a class="btn">Visualizar</a>`))
	assert.True(t, PhotosFromContent("Download foto traseira"))
	assert.False(t, PhotosFromContent("<html></html>"))
}

func TestRowFromCells(t *testing.T) {
	cells := []string{"", " 7970 ", "FJG5E18", "", "", "", "", " Maria Souza ", "", "", "Em produção", ""}
	row, ok := RowFromCells(cells, true)
	assert.True(t, ok)
	assert.Equal(t, PipelineRow{ExternalID: "7970", Plate: "FJG5E18", OwnerName: "Maria Souza", Status: "Em produção", IsPaid: true}, row)

	_, ok = RowFromCells(cells[:11], true)
	assert.False(t, ok)
}

func TestFindTaxID(t *testing.T) {
	assert.Equal(t, "123.456.789-00", FindTaxID("Nome: João da Silva CPF: 123.456.789-00"))
	assert.Equal(t, "", FindTaxID("sem documento"))
}
