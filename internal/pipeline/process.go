package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rechazos/internal"
	"rechazos/internal/classify"
	"rechazos/internal/config"
	"rechazos/internal/sources"
	"rechazos/internal/storage"
	"rechazos/internal/variant"
)

type ProcessingService struct {
	db        *storage.DB
	cfg       config.Config
	registry  *variant.Registry
	submitter *Submitter
	raw       *sources.RawStore
}

func NewProcessingService(db *storage.DB, cfg config.Config, registry *variant.Registry) *ProcessingService {
	s := &ProcessingService{db: db, cfg: cfg, registry: registry, submitter: NewSubmitter(cfg)}
	if cfg.RawDir != "" {
		s.raw = sources.NewRawStore(cfg.RawDir)
	}
	return s
}

type RunResult struct {
	RunID   string
	Variant string
	Result
}

// Run reconciles one batch of documents and stores the outcome. Unreadable
// inputs are reported as warnings on the result, not as errors.
func (s *ProcessingService) Run(variantName string, in sources.Inputs, opts RunOptions) (RunResult, error) {
	start := time.Now()
	v, err := s.registry.Get(variantName)
	if err != nil {
		return RunResult{}, err
	}
	engine, err := NewEngine(v)
	if err != nil {
		return RunResult{}, err
	}
	if opts.DefaultCode == "" {
		opts.DefaultCode = s.cfg.DefaultRejectionCode
	}
	def, err := engine.DefaultCode(opts)
	if err != nil {
		return RunResult{}, err
	}

	if len(in.SheetRoles) == 0 {
		in.SheetRoles = sheetRoles(v)
	}
	files, warnings := sources.ReadFiles(in)
	docs, loadWarnings := sources.Load(files)
	warnings = append(warnings, loadWarnings...)
	loadedAt := time.Now()

	res, err := engine.Reconcile(docs, opts)
	if err != nil {
		return RunResult{}, err
	}
	res.Warnings = append(warnings, res.Warnings...)
	reconciledAt := time.Now()

	names := make([]string, 0, len(files))
	for _, f := range files {
		name := fmt.Sprintf("%s:%s", f.Role, f.Name)
		if s.raw != nil {
			rawPath, err := s.raw.Keep(f)
			if err != nil {
				return RunResult{}, err
			}
			name += "@" + rawPath
		}
		names = append(names, name)
	}

	out := RunResult{RunID: uuid.NewString(), Variant: v.Name, Result: res}
	run := internal.RunRow{
		RunID:       out.RunID,
		Variant:     v.Name,
		DefaultCode: def.Code,
		Sources:     names,
		Count:       res.Count,
		AmountSum:   res.AmountSum,
		Warnings:    res.Warnings,
		Timings: map[string]float64{
			"loadMs":      float64(loadedAt.Sub(start).Milliseconds()),
			"reconcileMs": float64(reconciledAt.Sub(loadedAt).Milliseconds()),
			"totalMs":     float64(time.Since(start).Milliseconds()),
		},
	}
	if err := s.db.SaveRun(run, res.Records); err != nil {
		return RunResult{}, err
	}
	return out, nil
}

// Assembly reloads a stored run and assembles it again against its variant's
// code table.
func (s *ProcessingService) Assembly(runID string) (Assembly, error) {
	run, err := s.db.MustRun(runID)
	if err != nil {
		return Assembly{}, err
	}
	records, err := s.db.GetRunRecords(runID)
	if err != nil {
		return Assembly{}, err
	}
	codes, err := s.codesFor(run.Variant)
	if err != nil {
		return Assembly{}, err
	}
	return Assembler{Codes: codes}.Assemble(OutputColumns, records)
}

// Submit sends a stored run to the payment processor and records the
// response, including transport failures.
func (s *ProcessingService) Submit(ctx context.Context, runID string) (SubmitResponse, error) {
	a, err := s.Assembly(runID)
	if err != nil {
		return SubmitResponse{}, err
	}
	return s.submit(ctx, runID, a)
}

// SubmitEdited submits a record table downloaded from a run and edited by an
// operator. Descriptions are rederived from the edited codes.
func (s *ProcessingService) SubmitEdited(ctx context.Context, variantName string, content []byte) (SubmitResponse, error) {
	records, err := ReadAssemblyXLSX(content)
	if err != nil {
		return SubmitResponse{}, err
	}
	codes, err := s.codesFor(variantName)
	if err != nil {
		return SubmitResponse{}, err
	}
	a, err := Assembler{Codes: codes}.Assemble(OutputColumns, records)
	if err != nil {
		return SubmitResponse{}, err
	}
	return s.submit(ctx, "", a)
}

func (s *ProcessingService) submit(ctx context.Context, runID string, a Assembly) (SubmitResponse, error) {
	if a.Count == 0 {
		return SubmitResponse{}, errors.New("nothing to submit")
	}
	payload, err := SubmissionXLSX(a)
	if err != nil {
		return SubmitResponse{}, err
	}

	resp, submitErr := s.submitter.Submit(ctx, payload)
	if errors.Is(submitErr, ErrNoEndpoint) {
		return resp, submitErr
	}
	if err := s.db.InsertSubmission(runID, resp.StatusCode, resp.Body); err != nil {
		return resp, err
	}
	return resp, submitErr
}

// sheetRoles lists the spreadsheet roles a variant reads, in the order mail
// attachments fill them.
func sheetRoles(v variant.Config) []sources.Role {
	roles := []sources.Role{}
	if v.Selection.Target == variant.TargetTable {
		roles = append(roles, sources.RoleTable)
	}
	if v.ErrorReport != nil {
		roles = append(roles, sources.RoleErrorReport)
	}
	return roles
}

func (s *ProcessingService) codesFor(variantName string) (classify.CodeTable, error) {
	v, err := s.registry.Get(variantName)
	if err != nil {
		return classify.CodeTable{}, err
	}
	return v.CodeTable()
}
