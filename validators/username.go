package validators

import (
	"errors"
	"regexp"
)

var (
	ErrUsernameEmpty   = errors.New("no username provided")
	ErrUsernameTooLong = errors.New("username is too long")
	ErrUsernameInvalid = errors.New("username may only contain letters, digits, dots, dashes and underscores")

	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
)

func UsernameValidator(u string) error {
	if u == "" {
		return ErrUsernameEmpty
	}

	if len(u) > 32 {
		return ErrUsernameTooLong
	}

	if !usernameRe.MatchString(u) {
		return ErrUsernameInvalid
	}

	return nil
}
