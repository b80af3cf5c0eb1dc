// Package roomorder turns a unit's checklist assignments into a room-grouped
// layout and flattens layouts back into a single dense order column.
package roomorder

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/store"
)

// preferredRooms is the house style for walking a unit: wet rooms first,
// common rooms after, catch-all last. Rooms not listed here sort after
// these, alphabetically.
var preferredRooms = []string{
	"Bagno",
	"Camera da Letto",
	"Soggiorno",
	"Cucina",
	"Ingresso",
	"generale",
}

// NormalizeRoomName title-cases each word of a raw room label so that
// "camera da letto", "CAMERA DA LETTO" and "Camera Da Letto" all collapse to
// the same key. Blank labels map to the catch-all room.
func NormalizeRoomName(raw string) string {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "generale"
	}
	for i, w := range fields {
		r := []rune(w)
		fields[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(fields, " ")
}

// roomRank orders rooms by the preferred list, case-insensitively; unknown
// rooms all share a rank past the end of the list.
func roomRank(name string) int {
	for i, p := range preferredRooms {
		if strings.EqualFold(name, p) {
			return i
		}
	}
	return len(preferredRooms)
}

// Room is one named group of checklist assignments in walk order.
type Room struct {
	Name          string
	AssignmentIDs []uint
}

// Layout is the room-grouped view of a unit's checklist. Layouts are values:
// MoveRoom and MoveItem return fresh copies and never mutate their input.
type Layout struct {
	Rooms []Room
}

// clone deep-copies a layout so transforms stay pure.
func (l Layout) clone() Layout {
	rooms := make([]Room, len(l.Rooms))
	for i, r := range l.Rooms {
		ids := make([]uint, len(r.AssignmentIDs))
		copy(ids, r.AssignmentIDs)
		rooms[i] = Room{Name: r.Name, AssignmentIDs: ids}
	}
	return Layout{Rooms: rooms}
}

// Len returns the total number of assignments across all rooms.
func (l Layout) Len() int {
	n := 0
	for _, r := range l.Rooms {
		n += len(r.AssignmentIDs)
	}
	return n
}

// Derive builds a layout from a unit's checklist assignments. Assignments
// group under their item's normalized room name; rooms order by the
// preferred list then alphabetically; items within a room keep their
// persisted order. Assignments without a loaded item land in the catch-all
// room.
func Derive(assignments []models.Assignment) Layout {
	byRoom := make(map[string][]models.Assignment)
	for _, a := range assignments {
		room := "generale"
		if a.Item != nil {
			room = NormalizeRoomName(a.Item.RoomName)
		}
		byRoom[room] = append(byRoom[room], a)
	}

	names := make([]string, 0, len(byRoom))
	for name := range byRoom {
		names = append(names, name)
	}
	sort.SliceStable(names, func(i, j int) bool {
		ri, rj := roomRank(names[i]), roomRank(names[j])
		if ri != rj {
			return ri < rj
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	var rooms []Room
	for _, name := range names {
		group := byRoom[name]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Order != group[j].Order {
				return group[i].Order < group[j].Order
			}
			return group[i].ID < group[j].ID
		})
		ids := make([]uint, len(group))
		for i, a := range group {
			ids[i] = a.ID
		}
		rooms = append(rooms, Room{Name: name, AssignmentIDs: ids})
	}
	return Layout{Rooms: rooms}
}

// MoveRoom returns a copy of the layout with the room at index from moved to
// index to. Out-of-range indexes return the layout unchanged with an error.
func MoveRoom(l Layout, from, to int) (Layout, error) {
	if from < 0 || from >= len(l.Rooms) || to < 0 || to >= len(l.Rooms) {
		return l, fmt.Errorf("roomorder: move room %d to %d: index out of range [0,%d)", from, to, len(l.Rooms))
	}
	out := l.clone()
	room := out.Rooms[from]
	out.Rooms = append(out.Rooms[:from], out.Rooms[from+1:]...)
	out.Rooms = append(out.Rooms[:to], append([]Room{room}, out.Rooms[to:]...)...)
	return out, nil
}

// MoveItem returns a copy of the layout with one assignment moved within its
// room. Items never move across rooms: the room is part of the item, not of
// the layout.
func MoveItem(l Layout, room, from, to int) (Layout, error) {
	if room < 0 || room >= len(l.Rooms) {
		return l, fmt.Errorf("roomorder: move item: room %d out of range [0,%d)", room, len(l.Rooms))
	}
	n := len(l.Rooms[room].AssignmentIDs)
	if from < 0 || from >= n || to < 0 || to >= n {
		return l, fmt.Errorf("roomorder: move item %d to %d in room %q: index out of range [0,%d)", from, to, l.Rooms[room].Name, n)
	}
	out := l.clone()
	ids := out.Rooms[room].AssignmentIDs
	id := ids[from]
	ids = append(ids[:from], ids[from+1:]...)
	ids = append(ids[:to], append([]uint{id}, ids[to:]...)...)
	out.Rooms[room].AssignmentIDs = ids
	return out, nil
}

// Flatten walks the layout depth-first and assigns flat positions 0..N-1.
func Flatten(l Layout) []store.OrderUpdate {
	updates := make([]store.OrderUpdate, 0, l.Len())
	pos := 0
	for _, r := range l.Rooms {
		for _, id := range r.AssignmentIDs {
			updates = append(updates, store.OrderUpdate{AssignmentID: id, Order: pos})
			pos++
		}
	}
	return updates
}

// Diff flattens the layout and drops positions that already match the
// persisted order, so a no-op reorder issues no writes.
func Diff(l Layout, current []models.Assignment) []store.OrderUpdate {
	persisted := make(map[uint]int, len(current))
	for _, a := range current {
		persisted[a.ID] = a.Order
	}
	var updates []store.OrderUpdate
	for _, u := range Flatten(l) {
		if order, ok := persisted[u.AssignmentID]; ok && order == u.Order {
			continue
		}
		updates = append(updates, u)
	}
	return updates
}

// Recompute persists the layout's flat order for a unit in one atomic batch.
func Recompute(st store.Store, unitID uint, l Layout, current []models.Assignment) error {
	updates := Diff(l, current)
	if len(updates) == 0 {
		return nil
	}
	if err := st.Reorder(unitID, updates); err != nil {
		return fmt.Errorf("roomorder: recompute unit %d: %w", unitID, err)
	}
	return nil
}
