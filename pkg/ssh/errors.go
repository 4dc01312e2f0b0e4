package ssh

import (
	"errors"
)

var ErrPrivKeyFileNotFound = errors.New("Private key file was not found")
var ErrPrivateKeyParse = errors.New("Private key file could not be parsed")
var ErrEmptyPrivKeyPath = errors.New("Private key path is empty")
