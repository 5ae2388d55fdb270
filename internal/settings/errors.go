package settings

import (
	"errors"
	"fmt"
)

// ErrIndexOutOfRange matches every IndexError.
var ErrIndexOutOfRange = errors.New("index out of bounds")

// ErrMalformed wraps settings content that cannot be decoded.
var ErrMalformed = errors.New("malformed settings document")

// List names a collection inside the settings document.
type List string

const (
	ExecutionPlans List = "execution_plans"
	ChromeProfiles List = "chrome_profiles"
	CustomApps     List = "custom_apps"
)

// ParseList accepts the document key of a collection.
func ParseList(value string) (List, error) {
	switch List(value) {
	case ExecutionPlans, ChromeProfiles, CustomApps:
		return List(value), nil
	default:
		return "", fmt.Errorf("unknown settings list %q", value)
	}
}

func (l List) label() string {
	switch l {
	case ExecutionPlans:
		return "execution plan"
	case ChromeProfiles:
		return "chrome profile"
	case CustomApps:
		return "custom app"
	default:
		return string(l)
	}
}

// IndexError reports an update or removal past the end of a list.
type IndexError struct {
	List  List
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s index out of bounds", e.List.label())
}

func (e *IndexError) Is(target error) bool {
	return target == ErrIndexOutOfRange
}
