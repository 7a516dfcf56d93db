package engine

import "fmt"

// Engine applies the rules of one profile. It holds no match state and is
// safe for concurrent use.
type Engine struct {
	profile Profile
}

// New validates the profile and returns an engine bound to it
func New(profile Profile) (*Engine, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &Engine{profile: profile}, nil
}

// ForProfile returns an engine for a built-in profile name
func ForProfile(name string) (*Engine, error) {
	profile, err := ProfileByName(name)
	if err != nil {
		return nil, err
	}
	return New(profile)
}

func (e *Engine) Profile() Profile {
	return e.profile
}

// checkProfile guards against evaluating a snapshot under the wrong rules
func (e *Engine) checkProfile(s Snapshot) error {
	if s.Profile != "" && s.Profile != e.profile.Name {
		return fmt.Errorf("%w: snapshot uses %q, engine uses %q", ErrInvalidProfile, s.Profile, e.profile.Name)
	}
	if s.BoardSize != e.profile.BoardSize {
		return fmt.Errorf("%w: board size %d, profile expects %d", ErrInvalidProfile, s.BoardSize, e.profile.BoardSize)
	}
	return nil
}
