package sources

import (
	"bytes"
	"strings"

	"github.com/jhillyerd/enmime"
)

type Attachment struct {
	Name    string
	Content []byte
}

// ReadMail returns the named attachments of a bank notification e-mail.
func ReadMail(raw []byte) ([]Attachment, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	out := []Attachment{}
	parts := append(append([]*enmime.Part{}, env.Attachments...), env.Inlines...)
	for _, part := range parts {
		name := strings.TrimSpace(part.FileName)
		if name == "" {
			continue
		}
		out = append(out, Attachment{Name: name, Content: part.Content})
	}
	return out, nil
}
