package sources

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"rechazos/internal"
)

type Role string

const (
	RolePDF         Role = "pdf"
	RoleLines       Role = "txt"
	RoleTable       Role = "table"
	RoleErrorReport Role = "errors"
)

type File struct {
	Role    Role
	Name    string
	Content []byte
}

// Inputs are the paths an operator hands in for one run. Mail, when set,
// fills the roles left empty from its attachments.
type Inputs struct {
	PDF         string
	TXT         string
	Table       string
	ErrorReport string
	Mail        string
	// SheetRoles are the roles spreadsheet attachments fill, in attachment
	// order. Empty means a single RoleTable.
	SheetRoles []Role
}

func (in Inputs) IsEmpty() bool {
	return in.PDF == "" && in.TXT == "" && in.Table == "" && in.ErrorReport == "" && in.Mail == ""
}

// ReadFiles reads every input path. Unreadable files become warnings.
func ReadFiles(in Inputs) ([]File, []internal.Warning) {
	files := []File{}
	warnings := []internal.Warning{}

	add := func(role Role, path string) {
		if strings.TrimSpace(path) == "" {
			return
		}
		blob, err := os.ReadFile(path)
		if err != nil {
			warnings = append(warnings, loadWarning(filepath.Base(path), err))
			return
		}
		files = append(files, File{Role: role, Name: filepath.Base(path), Content: blob})
	}
	add(RolePDF, in.PDF)
	add(RoleLines, in.TXT)
	add(RoleTable, in.Table)
	add(RoleErrorReport, in.ErrorReport)

	if strings.TrimSpace(in.Mail) != "" {
		raw, err := os.ReadFile(in.Mail)
		if err != nil {
			warnings = append(warnings, loadWarning(filepath.Base(in.Mail), err))
			return files, warnings
		}
		attachments, err := ReadMail(raw)
		if err != nil {
			warnings = append(warnings, loadWarning(filepath.Base(in.Mail), err))
			return files, warnings
		}
		files = append(files, RouteAttachments(attachments, files, in.SheetRoles)...)
	}

	return files, warnings
}

// RouteAttachments assigns mail attachments to the roles not already taken
// by an explicit file: the first PDF, the first TXT, and spreadsheets or zips
// to sheetRoles in order.
func RouteAttachments(attachments []Attachment, taken []File, sheetRoles []Role) []File {
	if len(sheetRoles) == 0 {
		sheetRoles = []Role{RoleTable}
	}
	used := map[Role]bool{}
	for _, f := range taken {
		used[f.Role] = true
	}

	out := []File{}
	for _, att := range attachments {
		role, ok := roleForName(att.Name, sheetRoles, used)
		if !ok {
			continue
		}
		used[role] = true
		out = append(out, File{Role: role, Name: att.Name, Content: att.Content})
	}
	return out
}

func roleForName(name string, sheetRoles []Role, used map[Role]bool) (Role, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return RolePDF, !used[RolePDF]
	case ".txt":
		return RoleLines, !used[RoleLines]
	case ".xlsx", ".xls", ".csv", ".zip":
		for _, role := range sheetRoles {
			if !used[role] {
				return role, true
			}
		}
	}
	return "", false
}

// Load decodes files into the documents of one run. A file that cannot be
// decoded only drops its own contribution and is reported as a warning.
func Load(files []File) (internal.Documents, []internal.Warning) {
	docs := internal.Documents{}
	warnings := []internal.Warning{}

	for _, f := range files {
		switch f.Role {
		case RolePDF:
			doc, err := ReadPDF(f.Content)
			if err != nil {
				warnings = append(warnings, loadWarning(f.Name, err))
				continue
			}
			docs.PDF = &doc
		case RoleLines:
			docs.Lines = ReadLines(f.Content)
		case RoleTable:
			rows, err := ReadTable(f.Name, f.Content)
			if err != nil {
				warnings = append(warnings, loadWarning(f.Name, err))
				continue
			}
			docs.Table = rows
		case RoleErrorReport:
			rows, err := ReadTable(f.Name, f.Content)
			if err != nil {
				warnings = append(warnings, loadWarning(f.Name, err))
				continue
			}
			docs.ErrorReport = rows
		default:
			warnings = append(warnings, loadWarning(f.Name, fmt.Errorf("unknown role %q", f.Role)))
		}
	}

	return docs, warnings
}

func loadWarning(source string, err error) internal.Warning {
	return internal.Warning{Stage: "load", Source: source, Message: err.Error()}
}
