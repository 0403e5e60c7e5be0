package config

import (
	"fmt"
	"slices"
)

// maxRecent caps State.RecentProjects.
const maxRecent = 20

// State holds lightweight UI state that is persisted between sessions.
// Stored as state.json inside the workspace.
type State struct {
	LastProjectID  string   `json:"last_project_id"`
	LastModel      string   `json:"last_model"`
	RecentProjects []string `json:"recent_projects"`
}

// defaultState returns a State with all fields initialized to safe defaults.
func defaultState() State {
	return State{
		RecentProjects: []string{},
	}
}

// LoadState reads a State from the JSON file at path. If the file does not
// exist, a default (empty) State is returned.
func LoadState(path string) (*State, error) {
	st := defaultState()

	if err := loadFile(path, &st); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}

	if st.RecentProjects == nil {
		st.RecentProjects = []string{}
	}

	return &st, nil
}

// SaveState writes the state to path as indented JSON. Parent directories are
// created if they do not already exist.
func SaveState(state *State, path string) error {
	if state.RecentProjects == nil {
		state.RecentProjects = []string{}
	}

	if err := saveFile(path, state, 0o644); err != nil {
		return fmt.Errorf("state: %w", err)
	}
	return nil
}

// Opened records id as the last opened project and moves it to the front
// of RecentProjects.
func (s *State) Opened(id string) {
	s.LastProjectID = id
	recent := []string{id}
	for _, p := range s.RecentProjects {
		if p != id {
			recent = append(recent, p)
		}
		if len(recent) >= maxRecent {
			break
		}
	}
	s.RecentProjects = recent
}

// Forget removes id from the state, for example after the project was
// deleted.
func (s *State) Forget(id string) {
	if s.LastProjectID == id {
		s.LastProjectID = ""
	}
	s.RecentProjects = slices.DeleteFunc(s.RecentProjects, func(p string) bool { return p == id })
}
