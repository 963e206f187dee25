// Package sources reads the JSON exports (Outlook, Teams, Loop, and the
// mock email/todo files) that feed both extraction pipelines.
package sources

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"

	"github.com/Vamsi2511999/Superproductive-AI-Agent/internal/models"
)

const (
	OutlookFile = "outlook_emails.json"
	LoopFile    = "loop_tasks.json"
	TeamsFile   = "teams_messages.json"

	MockEmailFile = "emails.json"
	MockTodoFile  = "todo_list.json"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Loader reads source files from one directory. A missing file is an
// empty source; a malformed one is an error.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) Dir() string {
	return l.dir
}

// Sources loads the three workplace exports.
func (l *Loader) Sources() (models.Sources, error) {
	var src models.Sources
	if err := readList(l.path(OutlookFile), &src.Emails); err != nil {
		return src, err
	}
	if err := readList(l.path(LoopFile), &src.Loop); err != nil {
		return src, err
	}
	if err := readList(l.path(TeamsFile), &src.Teams); err != nil {
		return src, err
	}
	return src, nil
}

// Mock loads the email and todo seed files of the database pipeline.
func (l *Loader) Mock() (models.ExtractRequest, error) {
	var req models.ExtractRequest
	if err := readList(l.path(MockTodoFile), &req.Todos); err != nil {
		return req, err
	}
	if err := readList(l.path(MockEmailFile), &req.Emails); err != nil {
		return req, err
	}
	return req, nil
}

// Watched reports whether name is one of the files a reload depends on.
func Watched(name string) bool {
	switch filepath.Base(name) {
	case OutlookFile, LoopFile, TeamsFile, MockEmailFile, MockTodoFile:
		return true
	}
	return false
}

func (l *Loader) path(name string) string {
	return filepath.Join(l.dir, name)
}

func readList[T any](path string, dest *[]T) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}

	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return fmt.Errorf("%s[%d]: %w", filepath.Base(path), i, err)
		}
	}
	*dest = items
	return nil
}
