// Package selection tracks the set of note ids chosen for bulk operations.
// The set is advisory UI state: it never commits anything by itself and is
// cleared on logout, on bulk action completion, and on full list reload
// after a destructive batch.
package selection

// View receives selection changes: the visible "N note(s) selected" counter
// and per-row highlighting.
type View interface {
	UpdateSelectedCount(n int)
	HighlightRows(selected map[string]bool)
}

// Tracker maintains the selection set and keeps the view in sync.
type Tracker struct {
	ids  map[string]struct{}
	view View
}

// New constructs an empty tracker bound to the given view. A nil view is
// allowed; the tracker then only maintains the set.
func New(view View) *Tracker {
	return &Tracker{ids: make(map[string]struct{}), view: view}
}

// Toggle flips membership of id and reports whether it is now selected.
func (t *Tracker) Toggle(id string) bool {
	_, selected := t.ids[id]
	if selected {
		delete(t.ids, id)
	} else {
		t.ids[id] = struct{}{}
	}
	t.notify()
	return !selected
}

// Selected reports whether id is in the set.
func (t *Tracker) Selected(id string) bool {
	_, ok := t.ids[id]
	return ok
}

// IDs returns the selected ids in no particular order.
func (t *Tracker) IDs() []string {
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the size of the set; the displayed counter always equals it.
func (t *Tracker) Count() int {
	return len(t.ids)
}

// Clear empties the set, e.g. after a bulk action or at logout.
func (t *Tracker) Clear() {
	t.ids = make(map[string]struct{})
	t.notify()
}

func (t *Tracker) notify() {
	if t.view == nil {
		return
	}
	selected := make(map[string]bool, len(t.ids))
	for id := range t.ids {
		selected[id] = true
	}
	t.view.UpdateSelectedCount(len(t.ids))
	t.view.HighlightRows(selected)
}
