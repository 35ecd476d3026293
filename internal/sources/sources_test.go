package sources

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func mkZip(name string, content []byte) []byte {
	buf := bytes.NewBuffer(nil)
	zw := zip.NewWriter(buf)
	w, _ := zw.Create(name)
	_, _ = w.Write(content)
	_ = zw.Close()
	return buf.Bytes()
}

func TestReadTableXLSXKeepsText(t *testing.T) {
	blob := mkXLSX([][]any{
		{"DNI", "Nombre"},
		{"00123456", "JUAN PEREZ"},
	})
	rows, err := ReadTable("masivo.xlsx", blob)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "00123456" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestReadTableCSVSemicolon(t *testing.T) {
	rows, err := ReadTable("errores.csv", []byte("linea;observacion\n2;CUENTA INEXISTENTE\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][1] != "CUENTA INEXISTENTE" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestReadTableHTMLDisguisedAsXLS(t *testing.T) {
	html := `<html><body><table><tr><th>DNI</th><th>Situación</th></tr><tr><td> 12345678 </td><td>CUENTA INEXISTENTE</td></tr></table></body></html>`
	rows, err := ReadTable("reporte.xls", []byte(html))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "12345678" || rows[0][1] != "Situación" {
		t.Fatalf("rows=%v", rows)
	}
}

func TestReadTableZip(t *testing.T) {
	inner := mkXLSX([][]any{{"a", "b"}, {"1", "2"}})
	rows, err := ReadTable("ibk.zip", mkZip("reporte/IBK.xlsx", inner))
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("len=%d", len(rows))
	}

	if _, err := ReadTable("vacio.zip", mkZip("leeme.txt", []byte("x"))); err == nil {
		t.Fatal("expected no spreadsheet error")
	}
}

func TestReadTableUnsupported(t *testing.T) {
	if _, err := ReadTable("foto.png", []byte{1, 2}); err == nil {
		t.Fatal("expected unsupported error")
	}
}

func TestDecodeTextLatin1KeepsColumns(t *testing.T) {
	// "PEÑA" in Windows-1252
	raw := []byte{'P', 'E', 0xD1, 'A', ' ', 'X'}
	got := DecodeText(raw)
	if got != "PEÑA X" {
		t.Fatalf("got %q", got)
	}
	if []rune(got)[5] != 'X' {
		t.Fatal("column shifted")
	}
}

func TestSplitLinesKeepsBlankLines(t *testing.T) {
	lines := SplitLines("a\r\n\r\nb\n")
	if len(lines) != 3 || lines[1] != "" || lines[2] != "b" {
		t.Fatalf("lines=%q", lines)
	}
}

func TestLoadReportsBadSourceAndKeepsOthers(t *testing.T) {
	files := []File{
		{Role: RoleLines, Name: "planilla.txt", Content: []byte("uno\ndos\n")},
		{Role: RoleErrorReport, Name: "errores.xlsx", Content: []byte("not a spreadsheet")},
	}
	docs, warnings := Load(files)
	if len(docs.Lines) != 2 {
		t.Fatalf("lines=%v", docs.Lines)
	}
	if docs.ErrorReport != nil {
		t.Fatal("broken error report should not contribute")
	}
	if len(warnings) != 1 || warnings[0].Source != "errores.xlsx" || warnings[0].Stage != "load" {
		t.Fatalf("warnings=%+v", warnings)
	}
}

func TestReadMailRoutesAttachments(t *testing.T) {
	raw := strings.Join([]string{
		"From: banco@example.com",
		"To: operaciones@example.com",
		"Subject: Rechazos del lote",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="LIMITE"`,
		"",
		"--LIMITE",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Adjuntamos el detalle.",
		"--LIMITE",
		`Content-Type: text/plain; name="planilla.txt"`,
		`Content-Disposition: attachment; filename="planilla.txt"`,
		"",
		"linea 1",
		"--LIMITE--",
		"",
	}, "\r\n")

	attachments, err := ReadMail([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if len(attachments) != 1 {
		t.Fatalf("attachments=%d", len(attachments))
	}

	routed := RouteAttachments(attachments, nil, nil)
	if len(routed) != 1 || routed[0].Role != RoleLines || !strings.Contains(string(routed[0].Content), "linea 1") {
		t.Fatalf("routed=%+v", routed)
	}
	if got := RouteAttachments(attachments, []File{{Role: RoleLines}}, nil); len(got) != 0 {
		t.Fatalf("explicit file should win: %+v", got)
	}
}

func TestRouteAttachmentsFillsSheetRolesInOrder(t *testing.T) {
	attachments := []Attachment{
		{Name: "resultado.pdf"},
		{Name: "planilla.xlsx"},
		{Name: "errores.XLSX"},
		{Name: "sobrante.csv"},
	}

	routed := RouteAttachments(attachments, nil, []Role{RoleTable, RoleErrorReport})
	roles := map[string]Role{}
	for _, f := range routed {
		roles[f.Name] = f.Role
	}
	if len(routed) != 3 || roles["resultado.pdf"] != RolePDF || roles["planilla.xlsx"] != RoleTable || roles["errores.XLSX"] != RoleErrorReport {
		t.Fatalf("routed=%+v", roles)
	}

	routed = RouteAttachments(attachments, nil, []Role{RoleErrorReport})
	roles = map[string]Role{}
	for _, f := range routed {
		roles[f.Name] = f.Role
	}
	if roles["planilla.xlsx"] != RoleErrorReport || len(routed) != 2 {
		t.Fatalf("txt variant routing=%+v", roles)
	}

	routed = RouteAttachments(attachments, []File{{Role: RoleTable}}, []Role{RoleTable, RoleErrorReport})
	if len(routed) != 2 || routed[1].Name != "planilla.xlsx" || routed[1].Role != RoleErrorReport {
		t.Fatalf("explicit table routing=%+v", routed)
	}
}

func TestRawStoreKeepsContentOnce(t *testing.T) {
	store := NewRawStore(t.TempDir())
	a, err := store.Keep(File{Role: RoleLines, Name: "planilla.TXT", Content: []byte("uno")})
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Keep(File{Role: RoleLines, Name: "copia.txt", Content: []byte("uno")})
	if err != nil {
		t.Fatal(err)
	}
	if a != b || !strings.HasSuffix(a, ".txt") {
		t.Fatalf("a=%s b=%s", a, b)
	}
}
