package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"rechazos/internal/config"
)

var ErrNoEndpoint = errors.New("missing SUBMIT_ENDPOINT")

const (
	submitField    = "edt"
	submitFileName = "rechazos.xlsx"
	xlsxMIME       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type SubmitResponse struct {
	StatusCode int
	Body       string
}

func (r SubmitResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Submitter posts submission payloads to the payment processor. There is no
// retry: submitting again is an operator decision.
type Submitter struct {
	endpoint   string
	httpClient *http.Client
}

func NewSubmitter(cfg config.Config) *Submitter {
	return &Submitter{
		endpoint:   cfg.SubmitEndpoint,
		httpClient: &http.Client{Timeout: cfg.SubmitTimeout()},
	}
}

// Submit sends payload as a single multipart file field. Any HTTP status is
// returned as-is; a transport failure gives status 0 with the error text as
// body, together with the error.
func (s *Submitter) Submit(ctx context.Context, payload []byte) (SubmitResponse, error) {
	if strings.TrimSpace(s.endpoint) == "" {
		return SubmitResponse{}, ErrNoEndpoint
	}

	body := bytes.NewBuffer(nil)
	mw := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, submitField, submitFileName))
	header.Set("Content-Type", xlsxMIME)
	part, err := mw.CreatePart(header)
	if err != nil {
		return SubmitResponse{}, err
	}
	if _, err := part.Write(payload); err != nil {
		return SubmitResponse{}, err
	}
	if err := mw.Close(); err != nil {
		return SubmitResponse{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, body)
	if err != nil {
		return SubmitResponse{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return SubmitResponse{StatusCode: 0, Body: err.Error()}, fmt.Errorf("submit: %w", err)
	}
	defer resp.Body.Close()

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return SubmitResponse{StatusCode: resp.StatusCode}, fmt.Errorf("submit: read response: %w", err)
	}
	return SubmitResponse{StatusCode: resp.StatusCode, Body: string(blob)}, nil
}
