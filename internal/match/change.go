package match

// Op names a session operation.
type Op string

const (
	OpIncrement      Op = "increment"
	OpDecrement      Op = "decrement"
	OpResetSide      Op = "reset_side"
	OpResetAll       Op = "reset_all"
	OpQuickSet       Op = "quick_set"
	OpSelectPalette  Op = "select_palette"
	OpTeamName       Op = "team_name"
	OpToggleSettings Op = "toggle_settings"
)

// Change describes one operation. Applied is false when the operation was absorbed
// as a no-op: a decrement at zero, an unknown palette key or a rejected quick-set value.
type Change struct {
	Op      Op     `json:"op"`
	Side    string `json:"side,omitempty"`
	Key     string `json:"key,omitempty"`
	Applied bool   `json:"applied"`
}
