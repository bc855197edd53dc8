// Package utils provides input validation for API requests.
//
// Validation:
//   - String length and NUL checks
//   - ID, tool ID and category formats
//   - URL, title and script bounds
//   - JSON size and depth limits for history state
//
// Example Usage:
//
//	if err := utils.ValidateID(windowID, "window_id", true); err != nil {
//		return err
//	}
//	if err := utils.ValidateState(req.State); err != nil {
//		return err
//	}
package utils
