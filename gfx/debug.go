// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import "strings"

// Severity grades a driver diagnostic message.
type Severity uint32

// Severities, least severe first.
const (
	SeverityDebug Severity = 1 << iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

// AllSeverities selects every severity.
const AllSeverities = SeverityDebug | SeverityInfo | SeverityWarning | SeverityError

func (s Severity) String() string {
	switch {
	case s&SeverityError != 0:
		return "error"
	case s&SeverityWarning != 0:
		return "warning"
	case s&SeverityInfo != 0:
		return "info"
	default:
		return "debug"
	}
}

// Category classifies a driver diagnostic message.
type Category uint32

// Message categories.
const (
	CategoryGeneral Category = 1 << iota
	CategoryValidation
	CategoryPerformance
)

// AllCategories selects every category.
const AllCategories = CategoryGeneral | CategoryValidation | CategoryPerformance

func (c Category) String() string {
	var names []string
	if c&CategoryGeneral != 0 {
		names = append(names, "general")
	}
	if c&CategoryValidation != 0 {
		names = append(names, "validation")
	}
	if c&CategoryPerformance != 0 {
		names = append(names, "performance")
	}
	return strings.Join(names, "|")
}

// DebugMessage is a diagnostic emitted by the driver or one of its layers.
type DebugMessage struct {
	Severity   Severity
	Categories Category
	Layer      string
	Code       int32
	Text       string
}

// DebugHandler receives diagnostics. It is called on the thread
// that made the driver call which triggered the message.
type DebugHandler func(DebugMessage)

// DebugMessengerCreateInfo selects which messages reach the handler.
type DebugMessengerCreateInfo struct {
	Severities Severity
	Categories Category
	Handler    DebugHandler
}
