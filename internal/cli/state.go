package cli

import (
	"encoding/json"
	"os"

	"github.com/mindweave/mindweave/pkg/concept/layout"
)

// displayState is what the CLI remembers between invocations: which map
// commands operate on by default and whether an organize toggle is
// pending. FormatID names the map the pending snapshot belongs to;
// organizing a different map discards the snapshot instead of writing
// it into the wrong record.
type displayState struct {
	CurrentID string        `json:"current_id,omitempty"`
	FormatID  string        `json:"format_id,omitempty"`
	Format    layout.Format `json:"format"`
}

// loadState reads the display state. A missing or unreadable file is a
// fresh state.
func loadState() displayState {
	var st displayState
	path, err := statePath()
	if err != nil {
		return st
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return st
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return displayState{}
	}
	return st
}

func saveState(st displayState) error {
	path, err := statePath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// setCurrentMap records id as the default map and drops any pending
// layout snapshot, which belonged to the previous map.
func setCurrentMap(id string) error {
	st := loadState()
	st.CurrentID = id
	st.Format.Reset()
	st.FormatID = ""
	return saveState(st)
}

// clearCurrentIf resets the display state when a deleted map was the
// current one or owned the pending snapshot.
func clearCurrentIf(id string) error {
	st := loadState()
	changed := false
	if st.CurrentID == id {
		st.CurrentID = ""
		changed = true
	}
	if st.FormatID == id {
		st.Format.Reset()
		st.FormatID = ""
		changed = true
	}
	if !changed {
		return nil
	}
	return saveState(st)
}

// currentMapID resolves the map a command should operate on: the --map
// flag when given, otherwise the remembered current map.
func currentMapID(flagValue string) (string, bool) {
	if flagValue != "" {
		return flagValue, true
	}
	st := loadState()
	return st.CurrentID, st.CurrentID != ""
}
