// Package tui provides the interactive project picker.
//
// The picker lists every project holding a slot with its index, status and
// ports, and returns the action the user chose:
//
//	result, err := tui.RunPicker(entries)
//	switch result.Action {
//	case tui.ActionStatus:
//	    // Show result.Entry.Claim
//	case tui.ActionStart, tui.ActionStop, tui.ActionTeardown:
//	    // Run the lifecycle flow in result.Entry.Claim.ProjectRoot
//	case tui.ActionQuit:
//	    // Exit
//	}
//
// When stdin is not a terminal, SimplePicker renders the same list as plain
// text.
package tui
