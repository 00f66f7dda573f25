package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestReadRecords_Windows1252PuntoYComa(t *testing.T) {
	src, err := charmap.Windows1252.NewEncoder().String("name;barcode;rfid_tag;quantity\nTornillo 3/8 cabeza hexagonal;770;TAG-1;5\nArandela número 4;771;TAG-2;\n")
	require.NoError(t, err)

	recs, err := readRecords(bytes.NewBufferString(src), "windows-1252")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Arandela número 4", recs[1]["name"])
	assert.Equal(t, "TAG-1", recs[0]["rfid_tag"])
}

func TestReadRecords_BOMyComa(t *testing.T) {
	recs, err := readRecords(strings.NewReader("\ufeffUsername,Password,RFID_Tag,Roles\nana,secreta,A-1,admin|operator\n"), "utf8")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	in := userRow(recs[0])
	assert.Equal(t, "ana", in.Username)
	assert.Equal(t, "A-1", in.RFIDTag)
	assert.Equal(t, []string{"admin", "operator"}, in.Roles)
}

func TestReadRecords_CodificacionDesconocida(t *testing.T) {
	_, err := readRecords(strings.NewReader("a\n"), "ebcdic")
	assert.Error(t, err)
}

func TestProductRow(t *testing.T) {
	row, err := productRow(map[string]string{"name": "Caja", "rfid_tag": "P-1", "category_id": "3", "quantity": "12", "shelf_id": ""})
	require.NoError(t, err)
	require.NotNil(t, row.Product.CategoryID)
	assert.Equal(t, int64(3), *row.Product.CategoryID)
	assert.Equal(t, int64(12), row.Quantity)
	assert.Nil(t, row.ShelfID)

	_, err = productRow(map[string]string{"name": "Caja", "quantity": "-1"})
	assert.Error(t, err)
	_, err = productRow(map[string]string{"name": "Caja", "category_id": "x"})
	assert.Error(t, err)
}
