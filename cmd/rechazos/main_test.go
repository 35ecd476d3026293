package main

import (
	"errors"
	"strings"
	"testing"

	"rechazos/internal/pipeline"
)

func TestSubmissionOutcome(t *testing.T) {
	readErr := errors.New("submit: read response: unexpected EOF")
	cases := []struct {
		name    string
		resp    pipeline.SubmitResponse
		err     error
		wantErr string
	}{
		{name: "accepted", resp: pipeline.SubmitResponse{StatusCode: 200, Body: "ok"}},
		{name: "rejected", resp: pipeline.SubmitResponse{StatusCode: 422, Body: "codigo invalido"}, wantErr: "status=422"},
		{name: "transport", resp: pipeline.SubmitResponse{Body: "dial tcp: refused"}, err: errors.New("dial tcp: refused"), wantErr: "status=0"},
		{name: "2xx with read error", resp: pipeline.SubmitResponse{StatusCode: 200}, err: readErr, wantErr: "unexpected EOF"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			line, err := submissionOutcome(tc.resp, tc.err)
			if tc.wantErr == "" {
				if err != nil || !strings.HasPrefix(line, "submission accepted") {
					t.Fatalf("line=%q err=%v", line, err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("err=%v want %q", err, tc.wantErr)
			}
			if tc.err != nil && !errors.Is(err, tc.err) {
				t.Fatalf("cause lost: %v", err)
			}
		})
	}
}
