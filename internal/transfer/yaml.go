// Package transfer moves tasks in and out of the board as YAML documents.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	apptask "github.com/taskboard/taskboard/internal/application/task"
	"github.com/taskboard/taskboard/internal/domain/shared"
	"github.com/taskboard/taskboard/internal/domain/task"
	"github.com/taskboard/taskboard/internal/interfaces/http/middleware"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Record is a single task in a YAML document
type Record struct {
	Title       string `yaml:"title" validate:"required,max=20"`
	Description string `yaml:"description,omitempty"`
	Status      string `yaml:"status,omitempty" validate:"omitempty,taskstatus"`
	DueDate     string `yaml:"due_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Document is the root of a YAML task file
type Document struct {
	Tasks []Record `yaml:"tasks" validate:"dive"`
}

// Creator stores new tasks
type Creator interface {
	Create(ctx context.Context, req apptask.CreateTaskRequest) (*task.Task, error)
}

// Lister returns every task
type Lister interface {
	List(ctx context.Context) ([]task.Task, error)
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		middleware.RegisterValidations(validate)
	})
	return validate
}

// Decode parses and validates a YAML document
func Decode(r io.Reader) (Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, shared.NewValidationError("no tasks found in YAML")
		}
		return doc, fmt.Errorf("YAML parse error: %w", err)
	}
	if len(doc.Tasks) == 0 {
		return doc, shared.NewValidationError("no tasks found in YAML")
	}

	if err := recordValidator().Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fieldPath(fe)+": "+middleware.ValidationMessage(fe))
			}
			return doc, shared.NewValidationError(strings.Join(msgs, "; "))
		}
		return doc, err
	}
	return doc, nil
}

// fieldPath drops the root struct name: "Document.tasks[1].title" -> "tasks[1].title"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Encode writes tasks as a YAML document
func Encode(w io.Writer, tasks []task.Task) error {
	doc := Document{Tasks: make([]Record, len(tasks))}
	for i, t := range tasks {
		doc.Tasks[i] = FromTask(t)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	return enc.Close()
}

// FromTask converts a task into its YAML record
func FromTask(t task.Task) Record {
	r := Record{Title: t.Title, Status: string(t.Status)}
	if t.Description != nil {
		r.Description = *t.Description
	}
	if t.DueDate != nil {
		r.DueDate = t.DueDate.Format(dateLayout)
	}
	return r
}

// CreateRequest builds the create request for r. Empty members are sent as
// absent so that the service applies its defaults.
func (r Record) CreateRequest() apptask.CreateTaskRequest {
	req := apptask.CreateTaskRequest{Title: r.Title}
	if r.Description != "" {
		desc := r.Description
		req.Description = &desc
	}
	if r.Status != "" {
		status := r.Status
		req.Status = &status
	}
	if r.DueDate != "" {
		due := r.DueDate
		req.DueDate = &due
	}
	return req
}

// Import creates every record of doc in order and returns how many were
// stored. It stops at the first failure.
func Import(ctx context.Context, c Creator, doc Document) (int, error) {
	count := 0
	for i, r := range doc.Tasks {
		if _, err := c.Create(ctx, r.CreateRequest()); err != nil {
			return count, fmt.Errorf("import task %d %q: %w", i+1, r.Title, err)
		}
		count++
	}
	return count, nil
}

// Export writes every task returned by l to w
func Export(ctx context.Context, l Lister, w io.Writer) (int, error) {
	tasks, err := l.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}
	if err := Encode(w, tasks); err != nil {
		return 0, err
	}
	return len(tasks), nil
}
