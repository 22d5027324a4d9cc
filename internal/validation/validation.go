package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hyperengineering/finquest/internal/types"
)

// Field limits for client-supplied text.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxCategoryLength    = 100
	MaxPeriodLength      = 50
	MaxSelectedStreaks   = 20
	MaxStreakDuration    = 3650
)

// GoalPriorities are the accepted goal priority values. Priority is optional.
var GoalPriorities = []string{"high", "medium", "low"}

// ValidationError represents a single field validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Collector accumulates validation errors without failing on first.
type Collector struct {
	errors []ValidationError
}

// Add appends a validation error to the collector if non-nil.
func (c *Collector) Add(err *ValidationError) {
	if err != nil {
		c.errors = append(c.errors, *err)
	}
}

// HasErrors returns true if the collector has accumulated any errors.
func (c *Collector) HasErrors() bool {
	return len(c.errors) > 0
}

// Errors returns all accumulated validation errors.
func (c *Collector) Errors() []ValidationError {
	return c.errors
}

// ValidateUTF8 returns an error if the value is not valid UTF-8.
func ValidateUTF8(field, value string) *ValidationError {
	if !utf8.ValidString(value) {
		return &ValidationError{
			Field:   field,
			Message: "must be valid UTF-8",
		}
	}
	return nil
}

// ValidateNoNullBytes returns an error if the value contains null bytes.
func ValidateNoNullBytes(field, value string) *ValidationError {
	if strings.Contains(value, "\x00") {
		return &ValidationError{
			Field:   field,
			Message: "must not contain null bytes",
		}
	}
	return nil
}

// ValidateMaxLength returns an error if the value exceeds max runes.
func ValidateMaxLength(field, value string, max int) *ValidationError {
	if utf8.RuneCountInString(value) > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("exceeds maximum length of %d characters", max),
		}
	}
	return nil
}

// ValidateRequired returns an error if the value is empty or whitespace-only.
func ValidateRequired(field, value string) *ValidationError {
	if strings.TrimSpace(value) == "" {
		return &ValidationError{
			Field:   field,
			Message: "is required",
		}
	}
	return nil
}

// ValidateEnum returns an error if the value is not in the allowed list.
func ValidateEnum(field, value string, allowed []string) *ValidationError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
	}
}

// ValidateRange returns an error if the value is outside [min, max].
func ValidateRange(field string, value, min, max float64) *ValidationError {
	if value < min || value > max {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be between %.1f and %.1f", min, max),
		}
	}
	return nil
}

// ValidateNonNegative returns an error if the value is below zero.
func ValidateNonNegative(field string, value float64) *ValidationError {
	if value < 0 {
		return &ValidationError{
			Field:   field,
			Message: "must not be negative",
		}
	}
	return nil
}

// ValidateDate returns an error if the value is not a recognised date.
func ValidateDate(field, value string) *ValidationError {
	if _, err := types.ParseDate(value); err != nil {
		return &ValidationError{
			Field:   field,
			Message: "must be a date (YYYY-MM-DD or RFC 3339)",
		}
	}
	return nil
}

// validateText applies the common text checks to an optional field.
func validateText(c *Collector, field, value string, max int) {
	c.Add(ValidateUTF8(field, value))
	c.Add(ValidateNoNullBytes(field, value))
	c.Add(ValidateMaxLength(field, value, max))
}

// ValidateStartStreak checks the body of a start-streak request.
func ValidateStartStreak(req types.StartStreakRequest) []ValidationError {
	var c Collector
	data := req.StreakData

	c.Add(ValidateRequired("streakData.title", data.Title))
	validateText(&c, "streakData.title", data.Title, MaxTitleLength)
	c.Add(ValidateRequired("streakData.category", data.Category))
	validateText(&c, "streakData.category", data.Category, MaxCategoryLength)
	validateText(&c, "streakData.description", data.Description, MaxDescriptionLength)
	validateText(&c, "streakData.period", data.Period, MaxPeriodLength)
	c.Add(ValidateNonNegative("streakData.savings", data.Savings))
	c.Add(ValidateRange("streakData.duration", float64(data.Duration), 1, MaxStreakDuration))

	return c.Errors()
}

// ValidateStreakRef checks one proposed streak of a create-goal request.
// Duration may be omitted; a default is applied when the streak is created.
func ValidateStreakRef(index int, ref types.StreakRef) []ValidationError {
	var c Collector
	prefix := fmt.Sprintf("selectedStreaks[%d]", index)

	if ref.ID == "" {
		c.Add(ValidateRequired(prefix+".title", ref.Title))
		c.Add(ValidateRequired(prefix+".category", ref.Category))
	}
	validateText(&c, prefix+".title", ref.Title, MaxTitleLength)
	validateText(&c, prefix+".category", ref.Category, MaxCategoryLength)
	c.Add(ValidateNonNegative(prefix+".savings", ref.Savings))
	if ref.Duration < 0 {
		c.Add(&ValidationError{Field: prefix + ".duration", Message: "must not be negative"})
	}

	return c.Errors()
}

// ValidateCreateGoal checks the body of a create-goal request.
func ValidateCreateGoal(req types.CreateGoalRequest) []ValidationError {
	var c Collector
	data := req.GoalData

	c.Add(ValidateRequired("goalData.title", data.Title))
	validateText(&c, "goalData.title", data.Title, MaxTitleLength)
	validateText(&c, "goalData.description", data.Description, MaxDescriptionLength)
	validateText(&c, "goalData.category", data.Category, MaxCategoryLength)
	c.Add(ValidateNonNegative("goalData.target_amount", data.TargetAmount))
	c.Add(ValidateDate("goalData.target_date", data.TargetDate))
	if data.Priority != "" {
		c.Add(ValidateEnum("goalData.priority", data.Priority, GoalPriorities))
	}

	if len(req.SelectedStreaks) > MaxSelectedStreaks {
		c.Add(&ValidationError{
			Field:   "selectedStreaks",
			Message: fmt.Sprintf("exceeds maximum of %d streaks", MaxSelectedStreaks),
		})
		return c.Errors()
	}
	for i, ref := range req.SelectedStreaks {
		for _, e := range ValidateStreakRef(i, ref) {
			c.Add(&e)
		}
	}

	return c.Errors()
}

// ValidateWhatIf checks the body of a what-if request.
func ValidateWhatIf(req types.WhatIfRequest) []ValidationError {
	var c Collector

	validateText(&c, "recommendation", req.Recommendation, MaxTitleLength)
	c.Add(ValidateRequired("period", req.Period))
	validateText(&c, "period", req.Period, MaxPeriodLength)
	c.Add(ValidateNonNegative("savings", req.Savings))

	return c.Errors()
}
