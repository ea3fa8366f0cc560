// Package forms holds the add/edit state of a list in the client.
//
// Each list has two independent machines:
//
//	Viewing -> Editing -> (saved | cancelled) -> Viewing
//	Closed -> AddingNew -> (created | cancelled) -> Closed
//
// Only one record per list is edited at a time. Transitions happen on
// explicit calls only. A draft survives failed validation and failed
// mutations; it is cleared on success. The list never updates records
// locally, fresh data arrives through the live query.
package forms

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"lovenest/validate"
)

var (
	ErrNotEditing = errors.New("no record is being edited")
	ErrNotAdding  = errors.New("no record is being added")
	ErrBusy       = errors.New("a save is already in progress")
	ErrReadOnly   = errors.New("records of this list cannot be edited")
)

type EditState int

const (
	Viewing EditState = iota
	Editing
)

type AddState int

const (
	Closed AddState = iota
	AddingNew
)

// Mutations are the store calls a list commits through. Update may be nil
// for lists whose records are never edited.
type Mutations[D any] struct {
	Create func(ctx context.Context, draft D) (string, error)
	Update func(ctx context.Context, id string, draft D) error
}

type List[D any] struct {
	mu       sync.Mutex
	validate func(D) error
	mut      Mutations[D]

	edit      EditState
	editingID string
	editDraft D

	add      AddState
	addDraft D

	busy    bool
	banner  error
	invalid map[string]string
}

// New creates a list. validate may be nil.
func New[D any](validate func(D) error, mut Mutations[D]) *List[D] {
	return &List[D]{validate: validate, mut: mut}
}

func (l *List[D]) EditState() EditState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.edit
}

func (l *List[D]) AddState() AddState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.add
}

// EditingID is the id of the record being edited, or "".
func (l *List[D]) EditingID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.editingID
}

// StartEdit opens the editor on a copy of current. Starting an edit on
// another record replaces the previous draft.
func (l *List[D]) StartEdit(id string, current D) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.mut.Update == nil {
		return ErrReadOnly
	}
	if l.busy {
		return ErrBusy
	}
	l.edit, l.editingID, l.editDraft = Editing, id, current
	l.invalid = nil
	return nil
}

func (l *List[D]) EditDraft() (D, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.editDraft, l.edit == Editing
}

func (l *List[D]) SetEditDraft(d D) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.edit != Editing {
		return ErrNotEditing
	}
	l.editDraft = d
	return nil
}

func (l *List[D]) CancelEdit() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero D
	l.edit, l.editingID, l.editDraft = Viewing, "", zero
	l.invalid = nil
}

// Save validates the edit draft and commits it. On any failure the list
// stays in Editing with the draft intact.
func (l *List[D]) Save(ctx context.Context) error {
	l.mu.Lock()
	if l.edit != Editing {
		l.mu.Unlock()
		return ErrNotEditing
	}
	if l.busy {
		l.mu.Unlock()
		return ErrBusy
	}
	id, draft := l.editingID, l.editDraft
	if err := l.check(draft); err != nil {
		l.mu.Unlock()
		return err
	}
	l.busy = true
	l.mu.Unlock()

	err := l.mut.Update(ctx, id, draft)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.busy = false
	if err != nil {
		l.banner = fmt.Errorf("save: %w", err)
		return err
	}
	var zero D
	// A newer StartEdit may have replaced the draft meanwhile.
	if l.editingID == id {
		l.edit, l.editingID, l.editDraft = Viewing, "", zero
	}
	l.banner = nil
	return nil
}

// OpenAdd shows the add form with an initial draft.
func (l *List[D]) OpenAdd(initial D) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.busy {
		return ErrBusy
	}
	l.add, l.addDraft = AddingNew, initial
	l.invalid = nil
	return nil
}

func (l *List[D]) AddDraft() (D, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.addDraft, l.add == AddingNew
}

func (l *List[D]) SetAddDraft(d D) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.add != AddingNew {
		return ErrNotAdding
	}
	l.addDraft = d
	return nil
}

func (l *List[D]) CancelAdd() {
	l.mu.Lock()
	defer l.mu.Unlock()
	var zero D
	l.add, l.addDraft = Closed, zero
	l.invalid = nil
}

// Create validates the add draft and commits it, returning the new id.
func (l *List[D]) Create(ctx context.Context) (string, error) {
	l.mu.Lock()
	if l.add != AddingNew {
		l.mu.Unlock()
		return "", ErrNotAdding
	}
	if l.busy {
		l.mu.Unlock()
		return "", ErrBusy
	}
	draft := l.addDraft
	if err := l.check(draft); err != nil {
		l.mu.Unlock()
		return "", err
	}
	l.busy = true
	l.mu.Unlock()

	id, err := l.mut.Create(ctx, draft)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.busy = false
	if err != nil {
		l.banner = fmt.Errorf("create: %w", err)
		return "", err
	}
	var zero D
	l.add, l.addDraft = Closed, zero
	l.banner = nil
	return id, nil
}

// check runs the validator with l.mu held.
func (l *List[D]) check(d D) error {
	l.invalid = nil
	if l.validate == nil {
		return nil
	}
	err := l.validate(d)
	if err == nil {
		return nil
	}
	l.invalid = validate.Fields(err)
	if !errors.Is(err, validate.ErrValidation) {
		return fmt.Errorf("%w: %v", validate.ErrValidation, err)
	}
	return err
}

// FieldErrors are the messages of the last failed validation.
func (l *List[D]) FieldErrors() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invalid
}

// Banner is the last mutation error, shown until dismissed or until the
// next successful commit.
func (l *List[D]) Banner() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.banner
}

// Fail records an error from a mutation that bypasses the drafts, such as
// a toggle or a delete.
func (l *List[D]) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.banner = err
}

func (l *List[D]) DismissBanner() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.banner = nil
}

func (l *List[D]) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.busy
}
