package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/store"
	"github.com/ptessari/turnkey/internal/visit"
)

func newVisitCmd() *cobra.Command {
	var (
		configPath string
		operatorID uint
	)

	cmd := &cobra.Command{
		Use:   "visit",
		Short: "Run a cleaning round on a unit",
		Long: `Walks one operator through a unit: pick the unit, work the checklist
room by room, adjust stock quantities, leave notes and close the session.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return visitLoop(cmd, store.New(gormDB), operatorID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	cmd.Flags().UintVarP(&operatorID, "operator", "o", 1, "operator id working the round")
	return cmd
}

// visitLoop drives the interactive workflow over any store. Reads commands
// line by line so it can be scripted in tests.
func visitLoop(cmd *cobra.Command, st store.Store, operatorID uint) error {
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		v := visit.New(st, operatorID)

		unit, ok, err := promptUnit(out, scanner, st)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
		if err := v.SelectUnit(unit); err != nil {
			return err
		}
		if err := v.Begin(); err != nil {
			return fmt.Errorf("begin visit: %w", err)
		}
		fmt.Fprintf(out, "Session %d open for %s\n", v.SessionID(), unit.Name)

		ok, err = checklistLoop(out, scanner, v)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
		if v.Step() == visit.StepSelecting {
			// Operator went back to pick another unit.
			continue
		}

		if ok, err = stockLoop(out, scanner, v); err != nil {
			return err
		} else if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}

		fmt.Fprint(out, "Notes (optional): ")
		if scanner.Scan() {
			v.SetNotes(strings.TrimSpace(scanner.Text()))
		}
		if err := finalizeLoop(out, scanner, v); err != nil {
			return err
		}
		return nil
	}
}

// promptUnit lists active units and reads a unit id. Returns ok=false on
// "quit" or end of input.
func promptUnit(out io.Writer, scanner *bufio.Scanner, st store.Store) (models.Unit, bool, error) {
	properties, err := st.Properties()
	if err != nil {
		return models.Unit{}, false, fmt.Errorf("list properties: %w", err)
	}

	byID := make(map[uint]models.Unit)
	for _, p := range properties {
		units, err := st.Units(p.ID)
		if err != nil {
			return models.Unit{}, false, fmt.Errorf("list units for %s: %w", p.Name, err)
		}
		if len(units) == 0 {
			continue
		}
		fmt.Fprintf(out, "%s\n", p.Name)
		for _, u := range units {
			fmt.Fprintf(out, "  [%d] %s\n", u.ID, u.Name)
			byID[u.ID] = u
		}
	}
	if len(byID) == 0 {
		return models.Unit{}, false, fmt.Errorf("no active units — run tk db init --demo or add units first")
	}

	for {
		fmt.Fprint(out, "Unit id (or quit): ")
		if !scanner.Scan() {
			return models.Unit{}, false, nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "q" {
			return models.Unit{}, false, nil
		}
		id, err := strconv.ParseUint(line, 10, 32)
		if err != nil {
			fmt.Fprintf(out, "Not a unit id: %q\n", line)
			continue
		}
		unit, ok := byID[uint(id)]
		if !ok {
			fmt.Fprintf(out, "No unit with id %d\n", id)
			continue
		}
		return unit, true, nil
	}
}

// checklistLoop works the checklist step. Commands: an item number toggles
// it, "<n> <count>" records a counted value, "done" advances, "back" returns
// to unit selection, "quit" leaves. Returns ok=false on quit or end of input.
func checklistLoop(out io.Writer, scanner *bufio.Scanner, v *visit.Visit) (bool, error) {
	for v.Step() == visit.StepChecklist {
		printChecklist(out, v)
		fmt.Fprint(out, "checklist (n, n count, done, back, quit): ")
		if !scanner.Scan() {
			return false, nil
		}
		line := strings.TrimSpace(scanner.Text())
		tokens := strings.Fields(line)
		switch {
		case line == "quit" || line == "q":
			return false, nil
		case line == "back":
			if err := v.Back(); err != nil {
				return false, err
			}
			return true, nil
		case line == "done":
			if err := v.AdvanceToStock(); err != nil {
				fmt.Fprintf(out, "Cannot advance: %v\n", err)
			}
		case len(tokens) == 1:
			item, ok := checklistItem(out, v, tokens[0])
			if !ok {
				continue
			}
			if err := v.Tracker().Toggle(item); err != nil {
				fmt.Fprintf(out, "Toggle failed: %v\n", err)
			}
		case len(tokens) == 2:
			item, ok := checklistItem(out, v, tokens[0])
			if !ok {
				continue
			}
			n, err := strconv.Atoi(tokens[1])
			if err != nil {
				fmt.Fprintf(out, "Not a count: %q\n", tokens[1])
				continue
			}
			if err := v.Tracker().RecordNumber(item, n); err != nil {
				fmt.Fprintf(out, "Record failed: %v\n", err)
			}
		default:
			fmt.Fprintf(out, "Unknown command: %q\n", line)
		}
	}
	return true, nil
}

// checklistItem resolves a 1-based item number typed by the operator.
func checklistItem(out io.Writer, v *visit.Visit, token string) (models.Item, bool) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > len(v.Checklist()) {
		fmt.Fprintf(out, "No checklist item %q\n", token)
		return models.Item{}, false
	}
	a := v.Checklist()[n-1]
	if a.Item == nil {
		fmt.Fprintf(out, "Item missing for assignment %d\n", a.ID)
		return models.Item{}, false
	}
	return *a.Item, true
}

func printChecklist(out io.Writer, v *visit.Visit) {
	fmt.Fprintf(out, "\nChecklist (%d of %d done)\n", v.Tracker().Count(), len(v.Checklist()))
	room := ""
	for i, a := range v.Checklist() {
		if a.Item == nil {
			continue
		}
		if a.Item.RoomName != room {
			room = a.Item.RoomName
			fmt.Fprintf(out, "-- %s --\n", room)
		}
		mark := " "
		detail := ""
		if c, ok := v.Tracker().Completion(a.ItemID); ok {
			mark = "x"
			if c.ValueNumber != nil {
				detail = fmt.Sprintf(" (counted %d)", *c.ValueNumber)
			}
		}
		if a.Item.Type == models.ItemTypeNumber && a.Item.Expected() > 0 {
			detail += fmt.Sprintf(" [expect %d]", a.Item.Expected())
		}
		fmt.Fprintf(out, "  [%s] %2d. %s%s\n", mark, i+1, a.Item.Title, detail)
	}
}

// stockLoop works the stock step. Commands: "+ n" and "- n" adjust by one,
// "n q" sets an absolute quantity, "done" advances. Returns ok=false on quit
// or end of input.
func stockLoop(out io.Writer, scanner *bufio.Scanner, v *visit.Visit) (bool, error) {
	stockAssignments := v.StockAssignments()
	for v.Step() == visit.StepStock {
		printStock(out, v, stockAssignments)
		fmt.Fprint(out, "stock (+ n, - n, n qty, done, quit): ")
		if !scanner.Scan() {
			return false, nil
		}
		line := strings.TrimSpace(scanner.Text())
		tokens := strings.Fields(line)
		switch {
		case line == "quit" || line == "q":
			return false, nil
		case line == "done":
			if err := v.AdvanceToNotes(); err != nil {
				return false, err
			}
		case len(tokens) == 2 && (tokens[0] == "+" || tokens[0] == "-"):
			a, ok := stockEntry(out, stockAssignments, tokens[1])
			if !ok {
				continue
			}
			if tokens[0] == "+" {
				v.Stock().Increment(a.ID)
			} else {
				v.Stock().Decrement(a.ID)
			}
		case len(tokens) == 2:
			a, ok := stockEntry(out, stockAssignments, tokens[0])
			if !ok {
				continue
			}
			q, err := strconv.Atoi(tokens[1])
			if err != nil {
				fmt.Fprintf(out, "Not a quantity: %q\n", tokens[1])
				continue
			}
			v.Stock().Set(a.ID, q)
		default:
			fmt.Fprintf(out, "Unknown command: %q\n", line)
		}
	}
	return true, nil
}

func stockEntry(out io.Writer, assignments []models.Assignment, token string) (models.Assignment, bool) {
	n, err := strconv.Atoi(token)
	if err != nil || n < 1 || n > len(assignments) {
		fmt.Fprintf(out, "No stock item %q\n", token)
		return models.Assignment{}, false
	}
	return assignments[n-1], true
}

func printStock(out io.Writer, v *visit.Visit, assignments []models.Assignment) {
	if len(assignments) == 0 {
		fmt.Fprintln(out, "\nNo stock tracked for this unit.")
		return
	}
	fmt.Fprintln(out, "\nStock")
	for i, a := range assignments {
		title := fmt.Sprintf("assignment %d", a.ID)
		if a.Item != nil {
			title = a.Item.Title
		}
		low := ""
		if v.Stock().LowStock(a.ID) {
			low = "  LOW"
		}
		fmt.Fprintf(out, "  %2d. %-30s %3d (min %d)%s\n", i+1, title, v.Stock().Quantity(a.ID), a.MinQuantity, low)
	}
}

// finalizeLoop commits and closes, offering a retry when either half fails.
// Work already committed is not repeated on retry.
func finalizeLoop(out io.Writer, scanner *bufio.Scanner, v *visit.Visit) error {
	for {
		res := v.Finalize()
		if res.Success() {
			fmt.Fprintf(out, "Visit complete: %d stock update(s) committed, session closed.\n", res.QuantitiesCommitted)
			return nil
		}
		fmt.Fprintf(out, "Finalize incomplete: %v\n", res.Err())
		fmt.Fprint(out, "Retry? (y/n): ")
		if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "y" {
			fmt.Fprintln(out, "Visit left open; finalize again later.")
			return res.Err()
		}
	}
}
