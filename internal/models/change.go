package models

import "fmt"

// ChangeEvent reports one population key whose count differs between the two
// most recent snapshots of an item. Events are derived on demand and never
// persisted.
type ChangeEvent struct {
	Item     string `json:"item"`
	Key      string `json:"key"`
	OldValue int    `json:"old_value"`
	NewValue int    `json:"new_value"`
}

func (e ChangeEvent) String() string {
	return fmt.Sprintf("%s: %s %d -> %d", e.Item, e.Key, e.OldValue, e.NewValue)
}
