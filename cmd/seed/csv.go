package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/almacen-bridge/internal/application/dto"
)

// decoder envuelve r según la codificación del export (utf8, latin1, windows1252).
func decoder(r io.Reader, encoding string) (io.Reader, error) {
	switch strings.ToLower(strings.ReplaceAll(encoding, "-", "")) {
	case "", "utf8":
		return r, nil
	case "latin1", "iso88591":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}
}

// readRecords lee el CSV completo y devuelve las filas indexadas por nombre de columna.
// Acepta ',' o ';' como separador (Excel en español exporta con ';').
func readRecords(r io.Reader, encoding string) ([]map[string]string, error) {
	dr, err := decoder(r, encoding)
	if err != nil {
		return nil, err
	}
	raw, err := io.ReadAll(dr)
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	text := strings.TrimPrefix(string(raw), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	cr.TrimLeadingSpace = true
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, ";") > strings.Count(firstLine, ",") {
		cr.Comma = ';'
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsear CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.ToLower(strings.TrimSpace(h))
	}
	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// userRow convierte una fila (username, password, rfid_tag, roles) en la petición de alta.
// roles separados por '|'.
func userRow(rec map[string]string) dto.CreateUserRequest {
	in := dto.CreateUserRequest{
		Username: rec["username"],
		Password: rec["password"],
		RFIDTag:  rec["rfid_tag"],
	}
	for _, role := range strings.Split(rec["roles"], "|") {
		if role = strings.TrimSpace(role); role != "" {
			in.Roles = append(in.Roles, role)
		}
	}
	return in
}

// productSeed alta de producto más la existencia inicial a cargar.
type productSeed struct {
	Product  dto.CreateProductRequest
	Quantity int64
	ShelfID  *int64
}

// productRow convierte una fila (name, barcode, category_id, rfid_tag, quantity, shelf_id).
func productRow(rec map[string]string) (productSeed, error) {
	seed := productSeed{Product: dto.CreateProductRequest{
		Name:    rec["name"],
		Barcode: rec["barcode"],
		RFIDTag: rec["rfid_tag"],
	}}
	var err error
	if seed.Product.CategoryID, err = optionalID(rec["category_id"]); err != nil {
		return seed, fmt.Errorf("category_id: %w", err)
	}
	if seed.ShelfID, err = optionalID(rec["shelf_id"]); err != nil {
		return seed, fmt.Errorf("shelf_id: %w", err)
	}
	if q := rec["quantity"]; q != "" {
		seed.Quantity, err = strconv.ParseInt(q, 10, 64)
		if err != nil || seed.Quantity < 0 {
			return seed, fmt.Errorf("quantity inválida: %q", q)
		}
	}
	return seed, nil
}

func optionalID(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return nil, fmt.Errorf("id inválido: %q", s)
	}
	return &id, nil
}
