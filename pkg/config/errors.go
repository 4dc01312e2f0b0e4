package config

import (
	"errors"
	"fmt"
)

type InvalidAddressFormat struct {
	address string
}

func (i InvalidAddressFormat) Error() string {
	return fmt.Sprintf("Invalid address format, expected ssh address format '[user@]address[:][port]' but got %s",
		i.address)
}

var ErrInvalidHost = errors.New("Empty host address")
var ErrInvalidPortNum = errors.New("Empty port number")
var ErrInvalidUser = errors.New("Empty username")
var ErrInvalidHostName = errors.New("Empty host name")
var ErrInvalidPrivateKeyPath = errors.New("Empty private key path")
