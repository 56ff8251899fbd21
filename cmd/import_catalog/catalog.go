package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow una fila del CSV: category,name,description,price,quantity,quantity_minimum
type catalogRow struct {
	Line            int
	Category        string
	Name            string
	Description     string
	Price           decimal.Decimal
	Quantity        int64
	QuantityMinimum *int64
}

var expectedHeader = []string{"category", "name", "description", "price", "quantity", "quantity_minimum"}

// decodeReader envuelve r para convertir desde el charset indicado a UTF-8.
func decodeReader(r io.Reader, charset string) (io.Reader, error) {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf-8", "utf8":
		return r, nil
	case "iso-8859-1", "iso8859-1", "latin1":
		return transform.NewReader(r, charmap.ISO8859_1.NewDecoder()), nil
	case "windows-1252", "cp1252":
		return transform.NewReader(r, charmap.Windows1252.NewDecoder()), nil
	}
	return nil, fmt.Errorf("charset no soportado: %s", charset)
}

// parseCatalog lee todas las filas. Acepta ',' o ';' como separador (según la cabecera).
// Las filas inválidas se devuelven en errs y no detienen la lectura.
func parseCatalog(r io.Reader) (rows []catalogRow, errs []error, err error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	text := strings.TrimPrefix(string(content), "\ufeff")

	cr := csv.NewReader(strings.NewReader(text))
	if first, _, _ := strings.Cut(text, "\n"); strings.Count(first, ";") > strings.Count(first, ",") {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("leer cabecera: %w", err)
	}
	if err := checkHeader(header); err != nil {
		return nil, nil, err
	}

	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Errorf("línea %d: %w", line, err))
			continue
		}
		if isBlank(rec) {
			continue
		}
		row, err := parseRow(line, rec)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, errs, nil
}

func checkHeader(header []string) error {
	if len(header) < len(expectedHeader) {
		return fmt.Errorf("cabecera esperada: %s", strings.Join(expectedHeader, ","))
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return fmt.Errorf("columna %d: se esperaba %q, llegó %q", i+1, want, header[i])
		}
	}
	return nil
}

func parseRow(line int, rec []string) (catalogRow, error) {
	for len(rec) < len(expectedHeader) {
		rec = append(rec, "")
	}
	row := catalogRow{
		Line:        line,
		Category:    strings.TrimSpace(rec[0]),
		Name:        strings.TrimSpace(rec[1]),
		Description: strings.TrimSpace(rec[2]),
	}
	if row.Category == "" || row.Name == "" {
		return row, fmt.Errorf("línea %d: category y name son obligatorios", line)
	}

	price, err := parseDecimal(rec[3])
	if err != nil {
		return row, fmt.Errorf("línea %d: price inválido %q", line, rec[3])
	}
	row.Price = price

	if q := strings.TrimSpace(rec[4]); q != "" {
		if row.Quantity, err = strconv.ParseInt(q, 10, 64); err != nil {
			return row, fmt.Errorf("línea %d: quantity inválida %q", line, q)
		}
	}
	if m := strings.TrimSpace(rec[5]); m != "" {
		v, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return row, fmt.Errorf("línea %d: quantity_minimum inválida %q", line, m)
		}
		row.QuantityMinimum = &v
	}
	return row, nil
}

// parseDecimal acepta "12.50" y "12,50"; vacío es cero.
func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	}
	return decimal.NewFromString(s)
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
