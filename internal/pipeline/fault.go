package pipeline

import "fmt"

type Kind int

const (
	KindMissingCredentials Kind = iota + 1
	KindInvalidRepositoryURL
	KindRepositoryAccess
	KindGeneration
)

func (k Kind) String() string {
	switch k {
	case KindMissingCredentials:
		return "MissingCredentials"
	case KindInvalidRepositoryURL:
		return "InvalidRepositoryUrl"
	case KindRepositoryAccess:
		return "RepositoryAccessFault"
	case KindGeneration:
		return "GenerationFault"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Fault is a request failure with a kind that callers can switch on.
// Err keeps the underlying cause for logs; users only see UserMessage.
type Fault struct {
	Kind  Kind
	State State
	Err   error
}

func newFault(kind Kind, state State, err error) *Fault {
	return &Fault{Kind: kind, State: state, Err: err}
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %v", f.Kind, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

// UserMessage is the generic text shown in the error banner.
func (f *Fault) UserMessage() string {
	switch f.Kind {
	case KindMissingCredentials:
		return "Please enter both your model API key and your repository access token."
	case KindInvalidRepositoryURL:
		return "Invalid repository URL. Use the form https://github.com/owner/repo."
	case KindRepositoryAccess:
		return "Error accessing repository."
	case KindGeneration:
		return "The README could not be generated. Please try again."
	default:
		return "Something went wrong."
	}
}
