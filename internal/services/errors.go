package services

import (
	"errors"

	"stoik/internal/domain"
	"stoik/internal/repos"
)

// storeErr maps a missing document to nf and anything else to StoreUnavailable.
func storeErr(err error, nf error) error {
	if errors.Is(err, repos.ErrNotFound) {
		return nf
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.StoreUnavailable(err)
}

// txErr keeps domain errors from a transaction and wraps everything else.
func txErr(err error) error {
	if err == nil {
		return nil
	}
	return storeErr(err, domain.StoreUnavailable(err))
}
