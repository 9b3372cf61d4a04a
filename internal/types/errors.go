package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind drives which remediation a failed run offers.
type ErrorKind string

const (
	KindAuth    ErrorKind = "auth"
	KindQuota   ErrorKind = "quota"
	KindGeneral ErrorKind = "general"
)

// ErrorSource names the vendor family that caused a failure.
type ErrorSource string

const (
	SourceNone          ErrorSource = ""
	SourceTranscription ErrorSource = "transcription"
	SourceInsights      ErrorSource = "insights"
)

// Provider identifiers. ProviderTranscription doubles as the key store name
// for the transcription credential.
const (
	ProviderTranscription = "transcription"
	ProviderGemini        = "gemini"
	ProviderOpenAI        = "openai"
	ProviderClaude        = "claude"
)

// InsightProviders lists the selectable generative-AI vendors, default first.
var InsightProviders = []string{ProviderGemini, ProviderOpenAI, ProviderClaude}

var ErrRunInProgress = errors.New("a transcription run is already in progress")

var quotaSignals = []string{
	"quota", "limit", "exceeded", "rate limit", "too many requests",
	"insufficient", "billing", "credits",
}

// ClassifyVendorError maps a non-2xx vendor response onto auth, quota or general.
func ClassifyVendorError(status int, body string) ErrorKind {
	lower := strings.ToLower(body)
	if status == 401 || strings.Contains(lower, "unauthorized") || strings.Contains(lower, "invalid api key") {
		return KindAuth
	}
	if status == 402 || status == 429 {
		return KindQuota
	}
	for _, s := range quotaSignals {
		if strings.Contains(lower, s) {
			return KindQuota
		}
	}
	return KindGeneral
}

// NetworkError is a transport failure before any HTTP response arrived.
type NetworkError struct {
	Source   ErrorSource
	Provider string
	Op       string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Provider, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// VendorError is a non-2xx response from a vendor.
type VendorError struct {
	Source   ErrorSource
	Provider string
	Op       string
	Kind     ErrorKind
	Status   int
	Body     string
}

func (e *VendorError) Error() string {
	return fmt.Sprintf("%s %s: %d - %s", e.Provider, e.Op, e.Status, e.Body)
}

// NewVendorError classifies the response and tags it with its source.
func NewVendorError(source ErrorSource, provider, op string, status int, body string) *VendorError {
	return &VendorError{
		Source:   source,
		Provider: provider,
		Op:       op,
		Kind:     ClassifyVendorError(status, body),
		Status:   status,
		Body:     body,
	}
}

// JobFailedError is a transcription job that reached the error status.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return "Transcription failed"
	}
	return e.Message
}

// TimeoutError is returned only when a poll deadline or attempt cap was configured.
type TimeoutError struct {
	JobID    string
	Attempts int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("transcription %s did not complete after %d status checks", e.JobID, e.Attempts)
}

// ParseError is malformed JSON from the insights vendor.
type ParseError struct {
	Provider string
	Raw      string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s returned an invalid response: %v", e.Provider, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IncompleteResultError means required insight fields were empty after parsing.
type IncompleteResultError struct {
	Provider string
	Missing  []string
}

func (e *IncompleteResultError) Error() string {
	return fmt.Sprintf("%s did not return complete analysis (missing %s)", e.Provider, strings.Join(e.Missing, ", "))
}

// ValidationError rejects a run before any vendor is contacted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// KindOf reports the remediation kind of err. Anything that is not a
// classified vendor response is general.
func KindOf(err error) ErrorKind {
	var ve *VendorError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return KindGeneral
}

// SourceOf reports which vendor family err belongs to.
func SourceOf(err error) ErrorSource {
	var (
		ve *VendorError
		ne *NetworkError
		jf *JobFailedError
		te *TimeoutError
		pe *ParseError
		ie *IncompleteResultError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Source
	case errors.As(err, &ne):
		return ne.Source
	case errors.As(err, &jf), errors.As(err, &te):
		return SourceTranscription
	case errors.As(err, &pe), errors.As(err, &ie):
		return SourceInsights
	}
	return SourceNone
}

// ProviderOf reports the vendor name carried by err, if any.
func ProviderOf(err error) string {
	var (
		ve *VendorError
		ne *NetworkError
		pe *ParseError
		ie *IncompleteResultError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Provider
	case errors.As(err, &ne):
		return ne.Provider
	case errors.As(err, &pe):
		return pe.Provider
	case errors.As(err, &ie):
		return ie.Provider
	}
	var jf *JobFailedError
	var te *TimeoutError
	if errors.As(err, &jf) || errors.As(err, &te) {
		return "assemblyai"
	}
	return ""
}

// DisplayName is the human name used in user-facing messages.
func DisplayName(provider string) string {
	switch provider {
	case "assemblyai", ProviderTranscription:
		return "AssemblyAI"
	case ProviderGemini:
		return "Gemini API"
	case ProviderOpenAI:
		return "OpenAI API"
	case ProviderClaude:
		return "Claude API"
	}
	return provider
}

// UserMessage renders the single message shown for a failed run.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var (
		ve *VendorError
		ne *NetworkError
		pe *ParseError
		ie *IncompleteResultError
		va *ValidationError
	)
	switch {
	case errors.Is(err, ErrRunInProgress):
		return "A transcription is already running. Please wait for it to finish."
	case errors.As(err, &va):
		return va.Reason
	case errors.As(err, &ve):
		name := DisplayName(ve.Provider)
		switch ve.Kind {
		case KindQuota:
			if ve.Source == SourceTranscription {
				return name + " free tier limit reached. Please upgrade your plan or wait for your quota to reset."
			}
			return name + " free tier limit reached. Please check your quota or upgrade your plan."
		case KindAuth:
			return fmt.Sprintf("Invalid %s key. Please check your key and try again.", name)
		}
		return fmt.Sprintf("%s error during %s: %d - %s", name, ve.Op, ve.Status, ve.Body)
	case errors.As(err, &ne):
		if ne.Source == SourceInsights {
			return fmt.Sprintf("Failed to connect to %s. Please check your internet connection and try again.", DisplayName(ne.Provider))
		}
		return fmt.Sprintf("Network error during %s. Please check your connection.", ne.Op)
	case errors.As(err, &pe):
		return fmt.Sprintf("Failed to analyze transcript. %s returned an invalid response. Please try again.", DisplayName(pe.Provider))
	case errors.As(err, &ie):
		return fmt.Sprintf("%s did not return complete analysis. Please try again.", DisplayName(ie.Provider))
	}
	return err.Error()
}
