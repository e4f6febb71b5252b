// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

// Yet another (braille) spinner.

package main

// spinner steps through its phases on each call to Next; it is driven by the
// display refresh instead of a ticker of its own.
type spinner struct {
	phases []string
	phase  int
}

func newSpinner() *spinner {
	phases := []string{}
	for _, r := range "⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏" {
		phases = append(phases, string(r))
	}
	return &spinner{phases: phases}
}

// Spinner returns the spinner string for the current phase.
func (s *spinner) Spinner() string {
	return s.phases[s.phase]
}

// Next advances the spinner to its next phase.
func (s *spinner) Next() {
	s.phase = (s.phase + 1) % len(s.phases)
}
