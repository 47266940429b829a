package ct

// SectionController manages the two-tier collapse state for one course's
// sections. The persisted tier mirrors the store; the view tier is what the
// caller displays and may temporarily diverge:
//
//   - Toggle flips one section in both tiers and writes through to the store.
//   - CollapseAll touches only the view tier, so reloading the course
//     restores the remembered layout.
//   - ExpandAll is a hard reset: both tiers cleared and the store rows for
//     the course deleted.
//
// Sections never seen before default to expanded.
type SectionController struct {
	store     Store
	courseID  string
	persisted map[string]bool
	view      map[string]bool
}

// LoadSections reads a course's persisted section state and returns a
// controller whose view state starts equal to it.
func LoadSections(store Store, courseID string) (*SectionController, error) {
	persisted, err := store.SectionStates(courseID)
	if err != nil {
		return nil, err
	}
	view := make(map[string]bool, len(persisted))
	for section, collapsed := range persisted {
		view[section] = collapsed
	}
	return &SectionController{
		store:     store,
		courseID:  courseID,
		persisted: persisted,
		view:      view,
	}, nil
}

// Ensure registers sections discovered after load, defaulting new ones to
// expanded in the persisted tier and to the persisted value in the view tier.
func (c *SectionController) Ensure(sections []string) {
	for _, section := range sections {
		if _, ok := c.persisted[section]; !ok {
			c.persisted[section] = false
		}
		if _, ok := c.view[section]; !ok {
			c.view[section] = c.persisted[section]
		}
	}
}

// Collapsed returns the effective (view) state for a section.
func (c *SectionController) Collapsed(section string) bool {
	if collapsed, ok := c.view[section]; ok {
		return collapsed
	}
	return c.persisted[section]
}

// Toggle flips one section's state. Individual toggles are always durable:
// the new value is written to the view, the persisted map, and the store.
func (c *SectionController) Toggle(section string) error {
	next := !c.Collapsed(section)
	if err := c.store.SetSectionCollapsed(c.courseID, section, next); err != nil {
		return err
	}
	c.view[section] = next
	c.persisted[section] = next
	return nil
}

// CollapseAll collapses every known section in the view tier only. The
// persisted tier and the store are untouched; a reload reverts it.
func (c *SectionController) CollapseAll() {
	for section := range c.view {
		c.view[section] = true
	}
	for section := range c.persisted {
		c.view[section] = true
	}
}

// ExpandAll expands every section and erases the remembered per-section
// state for the course, in the store included.
func (c *SectionController) ExpandAll() error {
	if err := c.store.ClearSectionStates(c.courseID); err != nil {
		return err
	}
	for section := range c.persisted {
		c.persisted[section] = false
	}
	for section := range c.view {
		c.view[section] = false
	}
	return nil
}
