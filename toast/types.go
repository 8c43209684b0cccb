package toast

// Duration is how long the toast stays on screen.
type Duration string

const (
	DurationDefault Duration = ""
	DurationShort   Duration = "short"
	DurationLong    Duration = "long"
)

// Scenario changes how the OS treats the toast (stays on screen, default sound, ...).
type Scenario string

const (
	ScenarioDefault      Scenario = ""
	ScenarioAlarm        Scenario = "alarm"
	ScenarioReminder     Scenario = "reminder"
	ScenarioIncomingCall Scenario = "incomingCall"
	// ScenarioImportant lets the toast break through Focus Assist.
	ScenarioImportant Scenario = "urgent"
)

// ButtonColour is rendered as the hint-buttonStyle of an action.
type ButtonColour string

const (
	ColourDefault ButtonColour = ""
	ColourGreen   ButtonColour = "Success"
	ColourRed     ButtonColour = "Critical"
)

// ImagePlacement is where an image is drawn on the toast.
type ImagePlacement string

const (
	PlacementInline  ImagePlacement = ""
	PlacementHero    ImagePlacement = "hero"
	PlacementAppLogo ImagePlacement = "appLogoOverride"
)
