// Package businessflow contains the core business logic for AI email generation workflows
package businessflow

import (
	"errors"
	"fmt"

	"github.com/amirphl/mailwright/models"
)

// Business flow error constants
var (
	// Not found (never distinguishes "missing" from "owned by another organization")
	ErrCampaignNotFound = errors.New("campaign not found")
	ErrJobNotFound      = errors.New("generation job not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrVariantNotFound  = errors.New("variant not found")
	ErrJobNotCompleted  = errors.New("generation job is not completed")

	// Invalid state
	ErrInvalidJobState = errors.New("invalid job state")

	// Validation
	ErrInvalidJobType        = errors.New("invalid job type")
	ErrInvalidIdentifier     = errors.New("invalid identifier")
	ErrEmailContentRequired  = errors.New("either template_id or email_content is required")
	ErrInvalidVariantID      = errors.New("variant_id must be a positive integer")
	ErrOptimizationGoalEmpty = errors.New("at least one optimization goal is required")

	// Worker side
	ErrParseFailure    = errors.New("could not parse AI response")
	ErrUpstreamFailure = errors.New("text generation failed")
	ErrTimeLimit       = errors.New("task exceeded time limit")
	ErrDispatchFailed  = errors.New("failed to dispatch job")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

// InvalidStateError reports an operation that the job's current status forbids
type InvalidStateError struct {
	Current   models.JobStatus
	Attempted models.JobStatus
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("cannot move job from %s to %s", e.Current, e.Attempted)
}

// Is lets errors.Is match ErrInvalidJobState
func (e *InvalidStateError) Is(target error) bool {
	return target == ErrInvalidJobState
}

func NewInvalidStateError(current, attempted models.JobStatus) *InvalidStateError {
	return &InvalidStateError{Current: current, Attempted: attempted}
}

// AsInvalidState extracts the InvalidStateError from err
func AsInvalidState(err error) (*InvalidStateError, bool) {
	var ise *InvalidStateError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}

// BusinessCode returns the code of the outermost BusinessError in err's chain
func BusinessCode(err error) string {
	var be *BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsJobNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound)
}

func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

func IsVariantNotFound(err error) bool {
	return errors.Is(err, ErrVariantNotFound)
}

func IsJobNotCompleted(err error) bool {
	return errors.Is(err, ErrJobNotCompleted)
}

// IsNotFound reports any tenant-scoped lookup failure
func IsNotFound(err error) bool {
	return IsCampaignNotFound(err) || IsJobNotFound(err) || IsTemplateNotFound(err) ||
		IsVariantNotFound(err) || IsJobNotCompleted(err)
}

func IsInvalidJobState(err error) bool {
	return errors.Is(err, ErrInvalidJobState)
}

func IsInvalidJobType(err error) bool {
	return errors.Is(err, ErrInvalidJobType)
}

func IsInvalidIdentifier(err error) bool {
	return errors.Is(err, ErrInvalidIdentifier)
}

func IsEmailContentRequired(err error) bool {
	return errors.Is(err, ErrEmailContentRequired)
}

func IsInvalidVariantID(err error) bool {
	return errors.Is(err, ErrInvalidVariantID)
}

func IsOptimizationGoalEmpty(err error) bool {
	return errors.Is(err, ErrOptimizationGoalEmpty)
}

// IsValidation reports a request rejected before any job was created
func IsValidation(err error) bool {
	return IsInvalidJobType(err) || IsInvalidIdentifier(err) || IsEmailContentRequired(err) ||
		IsInvalidVariantID(err) || IsOptimizationGoalEmpty(err)
}

func IsParseFailure(err error) bool {
	return errors.Is(err, ErrParseFailure)
}

func IsUpstreamFailure(err error) bool {
	return errors.Is(err, ErrUpstreamFailure)
}

// upstreamError marks a text generation client error. Its text is the client's
// error verbatim so the job's error_message names the real cause.
type upstreamError struct {
	err error
}

func (e *upstreamError) Error() string {
	return e.err.Error()
}

func (e *upstreamError) Unwrap() []error {
	return []error{ErrUpstreamFailure, e.err}
}

// NewUpstreamFailure wraps a text generation client error in ErrUpstreamFailure
func NewUpstreamFailure(err error) error {
	if err == nil {
		return nil
	}
	return &upstreamError{err: err}
}

// FailureCause names the class of a job failure for metrics
func FailureCause(err error) string {
	switch {
	case IsTimeLimit(err):
		return "time_limit"
	case IsUpstreamFailure(err):
		return "upstream"
	case IsParseFailure(err):
		return "parse"
	default:
		return "internal"
	}
}

func IsTimeLimit(err error) bool {
	return errors.Is(err, ErrTimeLimit)
}
