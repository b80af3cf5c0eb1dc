package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/roomorder"
	"github.com/ptessari/turnkey/internal/store"
)

func newLayoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Inspect and rearrange a unit's checklist layout",
		Long: `Shows the room-grouped checklist of a unit and moves rooms or items.
Every move is persisted as one atomic reorder of the flat checklist.`,
	}

	cmd.AddCommand(newLayoutShowCmd())
	cmd.AddCommand(newLayoutMoveRoomCmd())
	cmd.AddCommand(newLayoutMoveItemCmd())
	return cmd
}

func newLayoutShowCmd() *cobra.Command {
	var (
		configPath string
		unitID     uint
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a unit's room-grouped checklist",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			return showLayout(cmd.OutOrStdout(), store.New(gormDB), unitID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	cmd.Flags().UintVarP(&unitID, "unit", "u", 0, "unit id")
	cmd.MarkFlagRequired("unit")
	return cmd
}

func newLayoutMoveRoomCmd() *cobra.Command {
	var (
		configPath string
		unitID     uint
		from, to   int
	)

	cmd := &cobra.Command{
		Use:   "move-room",
		Short: "Move a room to a new position in the walk order",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			st := store.New(gormDB)
			if err := moveRoom(st, unitID, from, to); err != nil {
				return err
			}
			return showLayout(cmd.OutOrStdout(), st, unitID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	cmd.Flags().UintVarP(&unitID, "unit", "u", 0, "unit id")
	cmd.Flags().IntVar(&from, "from", 0, "current room position (0-based)")
	cmd.Flags().IntVar(&to, "to", 0, "target room position (0-based)")
	cmd.MarkFlagRequired("unit")
	return cmd
}

func newLayoutMoveItemCmd() *cobra.Command {
	var (
		configPath string
		unitID     uint
		room       int
		from, to   int
	)

	cmd := &cobra.Command{
		Use:   "move-item",
		Short: "Move an item within its room",
		Long:  "Moves one checklist item to a new position inside its room. Items never change rooms.",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, gormDB, err := connectFromConfig(configPath)
			if err != nil {
				return err
			}
			st := store.New(gormDB)
			if err := moveItem(st, unitID, room, from, to); err != nil {
				return err
			}
			return showLayout(cmd.OutOrStdout(), st, unitID)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "turnkey.yaml", "path to Turnkey config file")
	cmd.Flags().UintVarP(&unitID, "unit", "u", 0, "unit id")
	cmd.Flags().IntVar(&room, "room", 0, "room position (0-based)")
	cmd.Flags().IntVar(&from, "from", 0, "current item position within the room (0-based)")
	cmd.Flags().IntVar(&to, "to", 0, "target item position within the room (0-based)")
	cmd.MarkFlagRequired("unit")
	return cmd
}

func showLayout(out io.Writer, st store.Store, unitID uint) error {
	assignments, err := st.Assignments(unitID, models.KindChecklist)
	if err != nil {
		return fmt.Errorf("load checklist for unit %d: %w", unitID, err)
	}
	if len(assignments) == 0 {
		fmt.Fprintf(out, "Unit %d has no checklist.\n", unitID)
		return nil
	}

	titles := make(map[uint]string, len(assignments))
	for _, a := range assignments {
		if a.Item != nil {
			titles[a.ID] = a.Item.Title
		}
	}

	layout := roomorder.Derive(assignments)
	for ri, room := range layout.Rooms {
		fmt.Fprintf(out, "[%d] %s\n", ri, room.Name)
		for ii, id := range room.AssignmentIDs {
			fmt.Fprintf(out, "    [%d] %s\n", ii, titles[id])
		}
	}
	return nil
}

func moveRoom(st store.Store, unitID uint, from, to int) error {
	assignments, err := st.Assignments(unitID, models.KindChecklist)
	if err != nil {
		return fmt.Errorf("load checklist for unit %d: %w", unitID, err)
	}
	layout := roomorder.Derive(assignments)
	moved, err := roomorder.MoveRoom(layout, from, to)
	if err != nil {
		return err
	}
	return roomorder.Recompute(st, unitID, moved, assignments)
}

func moveItem(st store.Store, unitID uint, room, from, to int) error {
	assignments, err := st.Assignments(unitID, models.KindChecklist)
	if err != nil {
		return fmt.Errorf("load checklist for unit %d: %w", unitID, err)
	}
	layout := roomorder.Derive(assignments)
	moved, err := roomorder.MoveItem(layout, room, from, to)
	if err != nil {
		return err
	}
	return roomorder.Recompute(st, unitID, moved, assignments)
}
