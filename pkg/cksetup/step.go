package cksetup

import "fmt"

// SetupStep is a lifecycle step a script participates in.
type SetupStep int

const (
	StepNone SetupStep = iota
	StepInit
	StepInstall
	StepSettle
)

// String returns the name used in script file names.
func (s SetupStep) String() string {
	switch s {
	case StepNone:
		return "None"
	case StepInit:
		return "Init"
	case StepInstall:
		return "Install"
	case StepSettle:
		return "Settle"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IsValid returns true if the step is a defined value.
func (s SetupStep) IsValid() bool {
	return s >= StepNone && s <= StepSettle
}

// Executable returns the step a script actually runs in.
// Scripts without a step suffix are install scripts.
func (s SetupStep) Executable() SetupStep {
	if s == StepNone {
		return StepInstall
	}
	return s
}

// Phase is one of the six effective execution phases: a step combined with
// the content flag.
type Phase struct {
	Step    SetupStep
	Content bool
}

// Phase values in lifecycle order.
var (
	PhaseInit           = Phase{Step: StepInit}
	PhaseInitContent    = Phase{Step: StepInit, Content: true}
	PhaseInstall        = Phase{Step: StepInstall}
	PhaseInstallContent = Phase{Step: StepInstall, Content: true}
	PhaseSettle         = Phase{Step: StepSettle}
	PhaseSettleContent  = Phase{Step: StepSettle, Content: true}
)

// ExecutableSteps lists the steps that are driven, in order.
var ExecutableSteps = []SetupStep{StepInit, StepInstall, StepSettle}

// String returns "Install", "InstallContent", etc.
func (p Phase) String() string {
	if p.Content {
		return p.Step.String() + "Content"
	}
	return p.Step.String()
}
