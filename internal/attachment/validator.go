package attachment

import (
	"fmt"
	"strings"
)

// Rule identifies which acceptance rule a candidate batch violated.
type Rule string

const (
	RuleCount Rule = "count"
	RuleSize  Rule = "size"
	RuleType  Rule = "type"
)

// ValidationError reports a policy violation for an upload batch. It is
// returned before any bytes are stored, so a rejected batch has no side
// effects.
type ValidationError struct {
	Rule     Rule
	FileName string // offending file, empty for batch-level rules
	Message  string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Policy is the attachment acceptance policy. It is built from config at
// startup and injected, never hard-coded.
type Policy struct {
	MaxCount          int
	MaxFileSize       int64
	AllowedExtensions []string
}

// Validator checks candidate upload batches against a Policy.
type Validator struct {
	policy  Policy
	allowed map[string]struct{}
}

// NewValidator creates a Validator for the given policy. Extension matching
// is case-insensitive.
func NewValidator(policy Policy) *Validator {
	allowed := make(map[string]struct{}, len(policy.AllowedExtensions))
	for _, ext := range policy.AllowedExtensions {
		allowed[strings.ToLower(ext)] = struct{}{}
	}
	return &Validator{policy: policy, allowed: allowed}
}

// Validate checks a candidate batch against the policy, given how many
// attachments the target article already has. Empty candidates are skipped
// and count toward nothing. A nil or all-empty batch passes. Validation is
// pure: no storage is touched.
func (v *Validator) Validate(files []File, existingCount int) error {
	if len(files) == 0 {
		return nil
	}

	newCount := 0
	for _, f := range files {
		if !f.IsEmpty() {
			newCount++
		}
	}

	if existingCount+newCount > v.policy.MaxCount {
		return &ValidationError{
			Rule: RuleCount,
			Message: fmt.Sprintf("at most %d files can be attached to an article (existing: %d, new: %d)",
				v.policy.MaxCount, existingCount, newCount),
		}
	}

	for _, f := range files {
		if f.IsEmpty() {
			continue
		}
		if f.Size > v.policy.MaxFileSize {
			return &ValidationError{
				Rule:     RuleSize,
				FileName: f.Name,
				Message:  fmt.Sprintf("file exceeds the %d byte size limit: %s", v.policy.MaxFileSize, f.Name),
			}
		}
		if !v.hasAllowedExtension(f.Name) {
			return &ValidationError{
				Rule:     RuleType,
				FileName: f.Name,
				Message:  fmt.Sprintf("unsupported file type: %s", f.Name),
			}
		}
	}

	return nil
}

func (v *Validator) hasAllowedExtension(name string) bool {
	ext := fileExtension(name)
	if ext == "" {
		return false
	}
	_, ok := v.allowed[strings.ToLower(ext)]
	return ok
}

// fileExtension returns the extension of name without the dot, or "" when
// the name has none.
func fileExtension(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx == -1 || idx == len(name)-1 {
		return ""
	}
	return name[idx+1:]
}
