// Package checkoff tracks which checklist items are done within a session
// and applies the toggle semantics: a completion row either exists or it
// doesn't, and values are never edited in place.
package checkoff

import (
	"fmt"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/store"
)

// Tracker mirrors one session's completions keyed by item id. The local view
// only changes after the store accepts the write, so a failed toggle leaves
// the checklist exactly as it was and can simply be retried.
type Tracker struct {
	st         store.Store
	sessionID  uint
	operatorID uint
	byItem     map[uint]models.Completion
}

// NewTracker builds a tracker for a session and loads its completions.
func NewTracker(st store.Store, sessionID, operatorID uint) (*Tracker, error) {
	t := &Tracker{
		st:         st,
		sessionID:  sessionID,
		operatorID: operatorID,
		byItem:     make(map[uint]models.Completion),
	}
	completions, err := st.Completions(store.CompletionFilter{SessionID: sessionID})
	if err != nil {
		return nil, fmt.Errorf("checkoff: load session %d: %w", sessionID, err)
	}
	for _, c := range completions {
		t.byItem[c.ItemID] = c
	}
	return t, nil
}

// Completed reports whether the item has a completion in this session.
func (t *Tracker) Completed(itemID uint) bool {
	_, ok := t.byItem[itemID]
	return ok
}

// Completion returns the item's completion, if any.
func (t *Tracker) Completion(itemID uint) (models.Completion, bool) {
	c, ok := t.byItem[itemID]
	return c, ok
}

// Count returns how many items have a completion.
func (t *Tracker) Count() int {
	return len(t.byItem)
}

// Toggle flips an item's completion. A completed item loses its row, which
// is the only way to un-complete anything. An uncompleted item gains one:
// check items record bare rows, yes/no items record a true flag, number
// items record their expected count.
func (t *Tracker) Toggle(item models.Item) error {
	if c, ok := t.byItem[item.ID]; ok {
		if err := t.st.DeleteCompletion(c.ID); err != nil {
			return fmt.Errorf("checkoff: toggle off item %d: %w", item.ID, err)
		}
		delete(t.byItem, item.ID)
		return nil
	}
	if item.Boolean() {
		return t.create(item, nil)
	}
	n := item.Expected()
	return t.create(item, &n)
}

// RecordNumber records a counted value for a number item. If the item is
// already completed the old row is deleted first; values are never updated
// in place.
func (t *Tracker) RecordNumber(item models.Item, n int) error {
	if n < 0 {
		return fmt.Errorf("checkoff: record %d for item %d: %w", n, item.ID, store.ErrInvalid)
	}
	if c, ok := t.byItem[item.ID]; ok {
		if err := t.st.DeleteCompletion(c.ID); err != nil {
			return fmt.Errorf("checkoff: replace value for item %d: %w", item.ID, err)
		}
		delete(t.byItem, item.ID)
	}
	return t.create(item, &n)
}

// ConfirmExpected completes a number item at its expected count.
func (t *Tracker) ConfirmExpected(item models.Item) error {
	n := item.Expected()
	return t.RecordNumber(item, n)
}

func (t *Tracker) create(item models.Item, number *int) error {
	c := models.Completion{
		ItemID:      item.ID,
		OperatorID:  t.operatorID,
		SessionID:   t.sessionID,
		ValueNumber: number,
	}
	if item.Type == models.ItemTypeYesNo {
		v := true
		c.ValueBool = &v
	}
	if err := t.st.CreateCompletion(&c); err != nil {
		return fmt.Errorf("checkoff: complete item %d: %w", item.ID, err)
	}
	t.byItem[item.ID] = c
	return nil
}
