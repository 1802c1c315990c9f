// Package logging builds the zap logger shared by the service and the CLIs.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New returns a development logger when debug is set and a JSON
// production logger otherwise.
func New(debug bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if debug {
		l, err = zap.NewDevelopment()
	} else {
		l, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("can't initialize zap logger: %w", err)
	}
	return l.Sugar(), nil
}
