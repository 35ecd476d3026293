package storage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"rechazos/internal"
)

func TestSaveRunRoundTrip(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "nested", "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	run := internal.RunRow{
		RunID:       "run-1",
		Variant:     "bbva",
		DefaultCode: "R002",
		Sources:     []string{"pdf:abonos.pdf", "table:masivo.xlsx"},
		Count:       2,
		AmountSum:   decimal.RequireFromString("15.75"),
		Warnings:    []internal.Warning{{Stage: "merge", Source: "error_report", Message: "1 error report rows did not match the source document"}},
		Timings:     map[string]float64{"totalMs": 12},
	}
	records := []internal.TransactionRecord{
		{Identifier: "00123456", Name: "JUAN", Amount: decimal.RequireFromString("10.50"), Reference: "000777", Status: internal.StatusRejected, RejectionCode: "R002", RejectionDescription: "CUENTA INVALIDA", Provenance: internal.ProvenancePDF, SourceLine: 3},
		{Identifier: "87654321", Name: "ANA", Amount: decimal.RequireFromString("5.25"), Reference: "000778", Status: internal.StatusRejected, RejectionCode: "R001", RejectionDescription: "DOCUMENTO ERRADO", Provenance: internal.ProvenanceErrorReport, SourceLine: 7},
	}
	if err := db.SaveRun(run, records); err != nil {
		t.Fatal(err)
	}

	got, err := db.MustRun("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Variant != "bbva" || got.Count != 2 || !got.AmountSum.Equal(run.AmountSum) || len(got.Sources) != 2 || len(got.Warnings) != 1 {
		t.Fatalf("unexpected run: %+v", got)
	}

	stored, err := db.GetRunRecords("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("len=%d", len(stored))
	}
	if stored[0].Identifier != "00123456" || !stored[0].Amount.Equal(decimal.RequireFromString("10.5")) || stored[1].Provenance != internal.ProvenanceErrorReport {
		t.Fatalf("unexpected records: %+v", stored)
	}

	if _, err := db.MustRun("missing"); err == nil {
		t.Fatal("expected run not found")
	}
	if err := db.SaveRun(run, nil); err == nil {
		t.Fatal("expected duplicate run id to fail")
	}
}

func TestSubmissionsAreKeptPerRun(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if err := db.InsertSubmission("run-1", 0, "dial tcp: connection refused"); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertSubmission("run-1", 200, "ok"); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertSubmission("run-2", 500, "boom"); err != nil {
		t.Fatal(err)
	}

	subs, err := db.ListSubmissions("run-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 || subs[0].StatusCode != 0 || subs[1].Body != "ok" {
		t.Fatalf("unexpected submissions: %+v", subs)
	}
}
