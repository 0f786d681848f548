package collect

import "github.com/bluehealth/cooccur/internal/model"

// SmokeFactors returns the built-in dimension A used in test mode.
func SmokeFactors() model.Dimension {
	return model.Dimension{Groups: model.NewTermGroups(
		[]string{"Antisocial attitudes"},
		[]string{"Unemployment"},
		[]string{"Impulsivity"},
	)}
}

// SmokeSecondary returns the built-in dimension B used in test mode.
func SmokeSecondary() model.Dimension {
	return model.Dimension{Groups: model.NewTermGroups(
		[]string{"coastal residence"},
		[]string{"contemplation of water"},
	)}
}
