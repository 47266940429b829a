package main

import (
	"fmt"
	"os"
	"time"

	"ct-go/internal/app"
	"ct-go/internal/config"
	"ct-go/internal/ct"
	"ct-go/internal/database"
	"ct-go/internal/model"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates a CTApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "Add", "Rescan").
func newApp(operation string) (*app.CTApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewCTApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "ct",
	Short: "Course catalog and progress tracker",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:  %s\n", cfg.LogDir)
		fmt.Printf("Database: %s (%s)\n", cfg.Database.Type, cfg.Database.DataDir)
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Catalog a course directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Add")
		if err != nil {
			return err
		}
		defer a.Close()

		courseID, err := a.AddCourse(args[0])
		if err != nil {
			return fmt.Errorf("cataloging course: %w", err)
		}

		course, err := a.GetCourse(courseID)
		if err != nil || course == nil {
			fmt.Printf("Cataloged course %s\n", courseID)
			return nil
		}
		fmt.Printf("Cataloged %s\n", course.Name)
		fmt.Printf("ID: %s\n", courseID)
		return nil
	},
}

// list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses, most recently used first",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("search")

		a, err := newApp("List")
		if err != nil {
			return err
		}
		defer a.Close()

		overviews, err := a.Courses(query)
		if err != nil {
			return err
		}

		if len(overviews) == 0 {
			fmt.Println("No courses cataloged.")
			return nil
		}

		for _, ov := range overviews {
			pct := 0.0
			if ov.Progress.TotalCount > 0 {
				pct = 100 * float64(ov.Progress.CompletedCount) / float64(ov.Progress.TotalCount)
			}
			fmt.Printf("%3.0f%%  %3d/%-3d  %9s/%-9s  %s\n",
				pct,
				ov.Progress.CompletedCount, ov.Progress.TotalCount,
				humanBytes(ov.Progress.CompletedBytes), humanBytes(ov.Progress.TotalBytes),
				ov.Course.Name,
			)
			fmt.Printf("      id: %s\n", ov.Course.ID)
			if ov.LastRelPath != "" {
				fmt.Printf("      last: %s\n", ov.LastRelPath)
			}
		}
		return nil
	},
}

// rescan command
var rescanCmd = &cobra.Command{
	Use:   "rescan COURSE",
	Short: "Re-scan a course's directory tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Rescan")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.FindCourse(args[0])
		if err != nil {
			return err
		}
		if err := a.RescanCourse(course.ID); err != nil {
			return fmt.Errorf("rescanning: %w", err)
		}
		fmt.Printf("Rescanned %s\n", course.Name)
		return nil
	},
}

// remove command
var removeCmd = &cobra.Command{
	Use:   "remove COURSE",
	Short: "Remove a course from the catalog (files are untouched)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Remove")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.FindCourse(args[0])
		if err != nil {
			return err
		}
		if err := a.RemoveCourse(course.ID); err != nil {
			return fmt.Errorf("removing course: %w", err)
		}
		fmt.Printf("Removed %s\n", course.Name)
		return nil
	},
}

// items command
var itemsCmd = &cobra.Command{
	Use:   "items COURSE",
	Short: "List a course's items grouped by section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filterName, _ := cmd.Flags().GetString("filter")
		hideDone, _ := cmd.Flags().GetBool("hide-done")

		a, err := newApp("Items")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.FindCourse(args[0])
		if err != nil {
			return err
		}

		items, err := a.Items(course.ID, ct.ItemFilter{NameQuery: filterName, HideCompleted: hideDone})
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No items.")
			return nil
		}

		sections, err := a.Sections(course.ID)
		if err != nil {
			return err
		}
		sections.Ensure(sectionNames(items))

		printItems(items, sections)
		return nil
	},
}

// open command
var openCmd = &cobra.Command{
	Use:   "open ITEM",
	Short: "Open an item with its default application",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Open")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.OpenItem(args[0]); err != nil {
			return fmt.Errorf("opening item: %w", err)
		}
		return nil
	},
}

// done / undone commands
var doneCmd = &cobra.Command{
	Use:   "done ITEM",
	Short: "Mark an item completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Done")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.SetCompleted(args[0], true)
	},
}

var undoneCmd = &cobra.Command{
	Use:   "undone ITEM",
	Short: "Mark an item not completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Undone")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.SetCompleted(args[0], false)
	},
}

// next command
var nextCmd = &cobra.Command{
	Use:   "next ITEM",
	Short: "Mark an item completed and open the next one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Next")
		if err != nil {
			return err
		}
		defer a.Close()

		nextID, err := a.OpenNext(args[0])
		if err != nil {
			return fmt.Errorf("advancing: %w", err)
		}
		if nextID == "" {
			fmt.Println("Nothing further to open.")
		}
		return nil
	},
}

// continue command
var continueCmd = &cobra.Command{
	Use:   "continue COURSE",
	Short: "Reopen a course's last opened item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Continue")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.FindCourse(args[0])
		if err != nil {
			return err
		}
		if err := a.ContinueCourse(course.ID); err != nil {
			return fmt.Errorf("continuing course: %w", err)
		}
		return nil
	},
}

// resume command
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Reopen the most recently opened item across all courses",
	RunE: func(cmd *cobra.Command, args []string) error {
		next, _ := cmd.Flags().GetBool("next")

		a, err := newApp("Resume")
		if err != nil {
			return err
		}
		defer a.Close()

		if next {
			nextID, err := a.ResumeNext()
			if err != nil {
				return fmt.Errorf("resuming: %w", err)
			}
			if nextID == "" {
				fmt.Println("Nothing further to open.")
			}
			return nil
		}

		last, err := a.Resume()
		if err != nil {
			return fmt.Errorf("resuming: %w", err)
		}
		fmt.Printf("Opened %s (%s)\n", last.RelPath, last.CourseName)
		return nil
	},
}

// reveal command
var revealCmd = &cobra.Command{
	Use:   "reveal ID",
	Short: "Open the file manager at an item's or course's location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Reveal")
		if err != nil {
			return err
		}
		defer a.Close()
		return a.Reveal(args[0])
	},
}

// sections command
var sectionsCmd = &cobra.Command{
	Use:   "sections COURSE [toggle NAME | collapse-all | reset]",
	Short: "View or change a course's section collapse state",
	Args:  cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Sections")
		if err != nil {
			return err
		}
		defer a.Close()

		course, err := a.FindCourse(args[0])
		if err != nil {
			return err
		}

		items, err := a.Items(course.ID, ct.ItemFilter{})
		if err != nil {
			return err
		}
		sections, err := a.Sections(course.ID)
		if err != nil {
			return err
		}
		names := sectionNames(items)
		sections.Ensure(names)

		action := ""
		if len(args) > 1 {
			action = args[1]
		}

		switch action {
		case "":
			// fall through to listing
		case "toggle":
			if len(args) < 3 {
				return fmt.Errorf("toggle requires a section name")
			}
			if err := sections.Toggle(args[2]); err != nil {
				return fmt.Errorf("toggling section: %w", err)
			}
		case "collapse-all":
			// One-off collapsed view; nothing is persisted.
			sections.CollapseAll()
		case "reset":
			if err := sections.ExpandAll(); err != nil {
				return fmt.Errorf("resetting sections: %w", err)
			}
		default:
			return fmt.Errorf("unknown action: %s", action)
		}

		for _, name := range names {
			marker := " "
			if sections.Collapsed(name) {
				marker = "-"
			}
			fmt.Printf("%s %s\n", marker, name)
		}
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View scan history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("History")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No scans recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt != nil {
				d := time.Duration(*op.FinishedAt-op.StartedAt) * time.Second
				duration = d.String()
			}
			fmt.Printf("#%d  %s  %-8s  %4d items  %s  %s\n",
				op.ID,
				time.Unix(op.StartedAt, 0).UTC().Format("2006-01-02 15:04:05"),
				op.Status,
				op.ItemCount,
				op.CoursePath,
				duration,
			)
		}
		return nil
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema to the latest version",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}
		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}

		store, err := database.NewStoreFromConfig(cfg.Database, nil, nil)
		if err != nil {
			return fmt.Errorf("opening store: %w", err)
		}
		defer store.Close()

		if err := store.Migrate(); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		fmt.Println("Database schema is up to date.")
		return nil
	},
}

// sectionNames returns the distinct sections of items in encounter order.
// Items arrive already sorted, so this is also display order.
func sectionNames(items []*model.ItemWithProgress) []string {
	var names []string
	seen := map[string]bool{}
	for _, it := range items {
		if !seen[it.Section] {
			seen[it.Section] = true
			names = append(names, it.Section)
		}
	}
	return names
}

// printItems renders items grouped by section. Collapsed sections show a
// one-line summary instead of their items.
func printItems(items []*model.ItemWithProgress, sections *ct.SectionController) {
	for _, name := range sectionNames(items) {
		var group []*model.ItemWithProgress
		done := 0
		for _, it := range items {
			if it.Section != name {
				continue
			}
			group = append(group, it)
			if it.Completed {
				done++
			}
		}

		if sections.Collapsed(name) {
			fmt.Printf("- %s  (%d/%d done)\n", name, done, len(group))
			continue
		}

		fmt.Printf("  %s\n", name)
		for _, it := range group {
			marker := " "
			if it.Completed {
				marker = "x"
			}
			fmt.Printf("    [%s] %-50s %9s  %s\n", marker, it.Name, humanBytes(it.SizeBytes), it.Item.ID)
		}
	}
}

// humanBytes formats a byte count for display.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for x := n / unit; x >= unit; x /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("search", "s", "", "Filter courses by name or path substring")
	rootCmd.AddCommand(rescanCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.Flags().String("filter", "", "Keep only items whose name contains this")
	itemsCmd.Flags().Bool("hide-done", false, "Hide completed items")
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(undoneCmd)
	rootCmd.AddCommand(nextCmd)
	rootCmd.AddCommand(continueCmd)
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.Flags().Bool("next", false, "Complete the last opened item and open its successor")
	rootCmd.AddCommand(revealCmd)
	rootCmd.AddCommand(sectionsCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of scans to show")
	rootCmd.AddCommand(migrateCmd)
}
