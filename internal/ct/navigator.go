package ct

import "ct-go/internal/model"

// Navigator implements "open this", "mark done and open the next", and
// "resume from the last opened item anywhere" over an ordered item sequence
// supplied by the caller (after whatever display filtering it applies).
type Navigator struct {
	store    Store
	launcher Launcher
	logger   Logger

	// recordFailedOpens preserves the original behavior when true: a failed
	// launch still counts as an open. When false a failed launch skips the
	// bookkeeping entirely.
	recordFailedOpens bool
}

// NewNavigator creates a Navigator. recordFailedOpens selects whether open
// bookkeeping proceeds when the external launch fails.
func NewNavigator(store Store, launcher Launcher, logger Logger, recordFailedOpens bool) *Navigator {
	return &Navigator{
		store:             store,
		launcher:          launcher,
		logger:            logger,
		recordFailedOpens: recordFailedOpens,
	}
}

// OpenItem launches the item's file and records the open. A launch failure
// is returned as a *LaunchError notice; depending on policy the open is
// still recorded first. Returns ErrItemNotFound for a stale id or an item
// that does not belong to courseID.
func (n *Navigator) OpenItem(courseID, itemID string) error {
	item, err := n.store.GetItem(itemID)
	if err != nil {
		return err
	}
	if item == nil || item.CourseID != courseID {
		return ErrItemNotFound
	}

	launchErr := n.launcher.OpenFile(item.AbsPath)
	if launchErr != nil {
		n.logger.Warn("launch failed", "path", item.AbsPath, "error", launchErr)
		if !n.recordFailedOpens {
			return &LaunchError{Path: item.AbsPath, Err: launchErr}
		}
	}

	if err := n.store.RecordOpen(courseID, itemID); err != nil {
		return err
	}
	n.logger.Debug("item opened", "item", itemID, "course", courseID)

	if launchErr != nil {
		return &LaunchError{Path: item.AbsPath, Err: launchErr}
	}
	return nil
}

// OpenNext marks fromItemID completed and, when it is present in the ordered
// sequence and not its last element, opens the element immediately after it.
// Returns the id of the item opened, or "" when nothing further was opened.
func (n *Navigator) OpenNext(courseID string, ordered []string, fromItemID string) (string, error) {
	if err := n.store.SetCompleted(fromItemID, true); err != nil {
		return "", err
	}

	idx := -1
	for i, id := range ordered {
		if id == fromItemID {
			idx = i
			break
		}
	}
	// Filtered out or already last: the completion mark is all that happens.
	if idx < 0 || idx+1 >= len(ordered) {
		return "", nil
	}

	nextID := ordered[idx+1]
	if err := n.OpenItem(courseID, nextID); err != nil {
		return nextID, err
	}
	return nextID, nil
}

// ResumeGlobal returns the most recently opened item across all courses.
// Returns ErrNoHistory when nothing has ever been opened.
func (n *Navigator) ResumeGlobal() (*model.GlobalLastOpened, error) {
	last, err := n.store.GlobalLastOpened()
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, ErrNoHistory
	}
	return last, nil
}

// Reveal opens the containing folder of an item's file in the host's file
// browser. Failure is a notice, never a catalog change.
func (n *Navigator) Reveal(absPath string) error {
	if err := n.launcher.Reveal(absPath); err != nil {
		n.logger.Warn("reveal failed", "path", absPath, "error", err)
		return &LaunchError{Path: absPath, Err: err}
	}
	return nil
}
